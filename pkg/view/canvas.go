package view

import (
	"fmt"
	"strconv"

	"github.com/recera/flowcanvas/pkg/flow"
	"github.com/recera/flowcanvas/pkg/renderer/html"
	"github.com/recera/flowcanvas/pkg/vdom"
)

// Theme holds the colors used to draw the canvas
type Theme struct {
	Background string
	Accent     string
	Text       string
}

// DefaultTheme matches the stone/indigo palette of the original widget
func DefaultTheme() Theme {
	return Theme{
		Background: "#1c1917",
		Accent:     "#6366f1",
		Text:       "#f8fafc",
	}
}

// Canvas owns the node views for one registry and renders them
type Canvas struct {
	theme Theme
	views map[int]*NodeView
}

// NewCanvas creates a canvas renderer
func NewCanvas(theme Theme) *Canvas {
	return &Canvas{
		theme: theme,
		views: make(map[int]*NodeView),
	}
}

// View returns the view for a node, creating it on first use
func (c *Canvas) View(id int) *NodeView {
	v, ok := c.views[id]
	if !ok {
		v = NewNodeView(id)
		c.views[id] = v
	}
	return v
}

// Reset drops all view state, e.g. after the registry is reseeded
func (c *Canvas) Reset() {
	c.views = make(map[int]*NodeView)
}

// Render builds the full-viewport container with one positioned element per
// node
func (c *Canvas) Render(reg *flow.Registry) *vdom.VNode {
	nodes := reg.List()
	kids := make([]*vdom.VNode, 0, len(nodes))
	for _, n := range nodes {
		kids = append(kids, c.renderNode(n))
	}

	return vdom.NewElement("div", vdom.Props{
		"id":               "flow-canvas",
		"data-flow-canvas": "",
		"style": vdom.Style{
			{Property: "position", Value: "relative"},
			{Property: "width", Value: "100vw"},
			{Property: "height", Value: "100vh"},
			{Property: "overflow", Value: "hidden"},
			{Property: "background", Value: c.theme.Background},
		},
	}, kids...)
}

func (c *Canvas) renderNode(n *flow.Node) *vdom.VNode {
	pos := n.Displayed()
	id := strconv.Itoa(n.ID)

	return vdom.NewElement("div", vdom.Props{
		"key":          id,
		"class":        "flow-node",
		"data-node-id": id,
		"style": vdom.Style{
			{Property: "left", Value: fmt.Sprintf("%dpx", pos.X)},
			{Property: "top", Value: fmt.Sprintf("%dpx", pos.Y)},
			{Property: "cursor", Value: string(c.View(n.ID).Cursor())},
		},
	}, vdom.NewText(n.Label))
}

// Page renders the complete HTML document for the browser host
func (c *Canvas) Page(title string, reg *flow.Registry) (string, error) {
	doc := vdom.NewElement("html", vdom.Props{"lang": "en"},
		vdom.NewElement("head", nil,
			vdom.NewElement("meta", vdom.Props{"charset": "utf-8"}),
			vdom.NewElement("title", nil, vdom.NewText(title)),
			vdom.NewElement("style", nil, vdom.NewText(c.stylesheet())),
		),
		vdom.NewElement("body", nil,
			c.Render(reg),
			vdom.NewElement("script", nil, vdom.NewText(clientScript)),
		),
	)

	body, err := html.RenderToString(doc)
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return "<!DOCTYPE html>" + body, nil
}

func (c *Canvas) stylesheet() string {
	return fmt.Sprintf(`html, body { margin: 0; padding: 0; }
.flow-node {
  position: absolute;
  width: fit-content;
  padding: 0.5rem 1.5rem;
  border-radius: 0.375rem;
  font-family: sans-serif;
  font-weight: 600;
  color: %s;
  background: %s;
  box-shadow: 0 10px 15px -3px %s80;
  user-select: none;
}`, c.theme.Text, c.theme.Accent, c.theme.Accent)
}
