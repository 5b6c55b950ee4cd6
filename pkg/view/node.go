package view

// Cursor is the pointer style shown over a node
type Cursor string

const (
	CursorDefault  Cursor = "default"
	CursorGrab     Cursor = "grab"
	CursorGrabbing Cursor = "grabbing"
)

// NodeView is the presentation state of one node. The cursor is purely
// cosmetic and never feeds back into drag math.
type NodeView struct {
	NodeID int
	cursor Cursor
}

// NewNodeView creates a view for the node with the given id
func NewNodeView(id int) *NodeView {
	return &NodeView{NodeID: id, cursor: CursorDefault}
}

// Cursor returns the current cursor style
func (v *NodeView) Cursor() Cursor {
	return v.cursor
}

// Press marks the node as held
func (v *NodeView) Press() {
	v.cursor = CursorGrabbing
}

// Hover marks the node as under the pointer
func (v *NodeView) Hover() {
	v.cursor = CursorGrab
}

// Release marks the pointer as lifted over the node
func (v *NodeView) Release() {
	v.cursor = CursorGrab
}
