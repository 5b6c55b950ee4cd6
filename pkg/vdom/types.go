package vdom

// VKind represents the type of virtual node
type VKind uint8

const (
	// KindElement represents a DOM element node
	KindElement VKind = iota
	// KindText represents a text node
	KindText
	// KindFragment represents a fragment (multiple children without parent)
	KindFragment
)

// Props represents the attributes of a VNode
type Props map[string]any

// Style is an ordered list of CSS declarations. Order is kept so rendered
// output is stable.
type Style []Decl

// Decl is a single CSS property/value pair
type Decl struct {
	Property string
	Value    string
}

// String renders the declarations as an inline style attribute value
func (s Style) String() string {
	var out []byte
	for i, d := range s {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, d.Property...)
		out = append(out, ':')
		out = append(out, d.Value...)
		out = append(out, ';')
	}
	return string(out)
}

// VNode represents a virtual DOM node
type VNode struct {
	Kind  VKind
	Tag   string
	Props Props
	Kids  []VNode
	// Key identifies a node among its siblings, e.g. a canvas node id
	Key  string
	Text string
}

// NewElement creates a new element VNode
func NewElement(tag string, props Props, children ...*VNode) *VNode {
	kids := make([]VNode, 0, len(children))
	for _, child := range children {
		if child != nil {
			kids = append(kids, *child)
		}
	}

	node := &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: props,
		Kids:  kids,
	}
	if key, ok := props["key"].(string); ok {
		node.Key = key
	}
	return node
}

// NewText creates a new text VNode
func NewText(text string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: text,
	}
}

// NewFragment creates a new fragment VNode
func NewFragment(children ...*VNode) *VNode {
	kids := make([]VNode, 0, len(children))
	for _, child := range children {
		if child != nil {
			kids = append(kids, *child)
		}
	}

	return &VNode{
		Kind: KindFragment,
		Kids: kids,
	}
}

// Find returns the first node in the tree, depth first, whose key matches
func (v *VNode) Find(key string) *VNode {
	if v == nil {
		return nil
	}
	if v.Key == key && key != "" {
		return v
	}
	for i := range v.Kids {
		if found := v.Kids[i].Find(key); found != nil {
			return found
		}
	}
	return nil
}
