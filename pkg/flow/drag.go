package flow

// debugLog is set by the host when debug output is wanted
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// ChangeKind identifies what a controller mutation did
type ChangeKind uint8

const (
	// ChangeGrabbed fires when a node becomes active
	ChangeGrabbed ChangeKind = iota + 1
	// ChangeMoved fires when the active node's live position is recomputed
	ChangeMoved
	// ChangeCommitted fires when a drag ends and the live position is
	// written back as the committed position
	ChangeCommitted
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeGrabbed:
		return "grabbed"
	case ChangeMoved:
		return "moved"
	case ChangeCommitted:
		return "committed"
	default:
		return "unknown"
	}
}

// Change describes a single mutation of a node
type Change struct {
	Kind   ChangeKind
	NodeID int
	// Position is the node's displayed position after the change
	Position Point
}

// Controller is the drag state machine. It has two states: idle, and
// dragging exactly one node. It is not safe for concurrent use; every host
// feeds it events from a single goroutine.
type Controller struct {
	registry  *Registry
	active    int
	hasActive bool

	observers map[uint64]func(Change)
	nextObs   uint64
}

// NewController creates a controller bound to the given registry
func NewController(reg *Registry) *Controller {
	return &Controller{
		registry:  reg,
		observers: make(map[uint64]func(Change)),
	}
}

// Registry returns the registry the controller operates on
func (c *Controller) Registry() *Registry {
	return c.registry
}

// Active returns the id of the node being dragged, if any
func (c *Controller) Active() (int, bool) {
	return c.active, c.hasActive
}

// Subscribe registers fn to be called after every mutation. The returned
// function removes the subscription.
func (c *Controller) Subscribe(fn func(Change)) func() {
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	return func() {
		delete(c.observers, id)
	}
}

func (c *Controller) notify(ch Change) {
	for _, fn := range c.observers {
		fn(ch)
	}
}

// Grab claims the drag for node id with the pointer at (x, y). A drag that
// is already in progress is committed first.
func (c *Controller) Grab(id, x, y int) error {
	node, err := c.registry.Get(id)
	if err != nil {
		return err
	}

	if c.hasActive {
		c.Release()
	}

	node.Anchor = Point{X: x, Y: y}
	c.active = id
	c.hasActive = true

	if debugLog != nil {
		debugLog("[Flow] grab node", id, "at", x, y)
	}
	c.notify(Change{Kind: ChangeGrabbed, NodeID: id, Position: node.Displayed()})
	return nil
}

// Move recomputes the active node's live position from the pointer at
// (x, y). The result depends only on the anchor and the pointer, so
// repeating a move is idempotent. Does nothing when idle.
func (c *Controller) Move(x, y int) {
	if debugLog != nil {
		debugLog("[Flow] pointer move on canvas", x, y)
	}
	if !c.hasActive {
		return
	}

	node := c.registry.MustGet(c.active)
	delta := Point{X: x, Y: y}.Sub(node.Anchor)
	node.Live = node.Position.Add(delta)

	c.notify(Change{Kind: ChangeMoved, NodeID: node.ID, Position: node.Live})
}

// Release commits the active node's live position and ends the drag. Does
// nothing when idle.
func (c *Controller) Release() {
	if !c.hasActive {
		return
	}

	node := c.registry.MustGet(c.active)
	node.Position = node.Live
	c.hasActive = false

	if debugLog != nil {
		debugLog("[Flow] release node", node.ID, "at", node.Position.X, node.Position.Y)
	}
	c.notify(Change{Kind: ChangeCommitted, NodeID: node.ID, Position: node.Position})
}

// Cancel ends a drag whose pointer-up was lost, for example because the
// pointer left the window. The last displayed position is kept.
func (c *Controller) Cancel() {
	if debugLog != nil && c.hasActive {
		debugLog("[Flow] drag cancelled for node", c.active)
	}
	c.Release()
}
