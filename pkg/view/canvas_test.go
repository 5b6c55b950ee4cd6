package view

import (
	"strings"
	"testing"

	"github.com/recera/flowcanvas/pkg/flow"
	"github.com/recera/flowcanvas/pkg/renderer/html"
)

func TestNodeView_CursorTransitions(t *testing.T) {
	v := NewNodeView(0)
	steps := []struct {
		action func()
		want   Cursor
	}{
		{func() {}, CursorDefault},
		{v.Hover, CursorGrab},
		{v.Press, CursorGrabbing},
		{v.Release, CursorGrab},
	}

	for i, step := range steps {
		step.action()
		if got := v.Cursor(); got != step.want {
			t.Errorf("step %d: cursor = %q, want %q", i, got, step.want)
		}
	}
}

func TestCanvas_RenderPositionsNodes(t *testing.T) {
	reg, err := flow.NewRegistry(flow.NewNode(0, "", 0, 0), flow.NewNode(3, "other", 12, 8))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	ctrl := flow.NewController(reg)
	_ = ctrl.Grab(0, 100, 100)
	ctrl.Move(150, 80)

	c := NewCanvas(DefaultTheme())
	c.View(0).Press()
	tree := c.Render(reg)

	if len(tree.Kids) != 2 {
		t.Fatalf("expected 2 node elements, got %d", len(tree.Kids))
	}

	out, err := html.RenderToString(tree.Find("0"))
	if err != nil {
		t.Fatalf("RenderToString: %v", err)
	}
	want := `<div class="flow-node" data-node-id="0" style="left:50px; top:-20px; cursor:grabbing;">TEST NODE</div>`
	if out != want {
		t.Errorf("node 0 rendered as\n%s\nwant\n%s", out, want)
	}

	other, _ := html.RenderToString(tree.Find("3"))
	if !strings.Contains(other, "left:12px; top:8px; cursor:default;") {
		t.Errorf("node 3 not at its committed position: %s", other)
	}
}

func TestCanvas_Page(t *testing.T) {
	reg, _ := flow.NewRegistry(flow.DefaultSeed()...)
	page, err := NewCanvas(DefaultTheme()).Page("Flow & Co", reg)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Flow &amp; Co</title>",
		`id="flow-canvas"`,
		`data-node-id="0"`,
		"/flow/live/",
		"background: #6366f1",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestCanvas_PageCancelsLostPointer(t *testing.T) {
	reg, _ := flow.NewRegistry(flow.DefaultSeed()...)
	page, err := NewCanvas(DefaultTheme()).Page("t", reg)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}

	for _, want := range []string{
		`document.documentElement.addEventListener("mouseleave", cancel)`,
		`if (!e.relatedTarget) cancel();`,
		`window.addEventListener("pointercancel", cancel)`,
		`window.addEventListener("blur", cancel)`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page script missing %q", want)
		}
	}
	if strings.Contains(page, `document.addEventListener("mouseleave"`) {
		t.Error("mouseleave must be bound to the root element, not the document")
	}
}

func TestCanvas_Reset(t *testing.T) {
	c := NewCanvas(DefaultTheme())
	c.View(1).Press()
	c.Reset()
	if got := c.View(1).Cursor(); got != CursorDefault {
		t.Errorf("cursor after reset = %q, want default", got)
	}
}
