package flow

// DefaultLabel is the text shown in a node when no label is configured
const DefaultLabel = "TEST NODE"

// Point is a pair of screen coordinates. Units are whatever the host uses:
// CSS pixels in the browser, cells in the terminal.
type Point struct {
	X int
	Y int
}

// Add returns p translated by q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the delta from q to p
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Node holds the coordinate state of one draggable node
type Node struct {
	ID    int
	Label string

	// Position is the committed location, the baseline for the next drag
	Position Point

	// Live is the displayed location. It equals Position unless the node
	// is being dragged.
	Live Point

	// Anchor is the pointer location captured at drag start. It is stale
	// once the drag ends.
	Anchor Point
}

// NewNode creates a node at the given position
func NewNode(id int, label string, x, y int) Node {
	if label == "" {
		label = DefaultLabel
	}
	p := Point{X: x, Y: y}
	return Node{ID: id, Label: label, Position: p, Live: p}
}

// Displayed returns the position the view layer should render
func (n *Node) Displayed() Point {
	return n.Live
}
