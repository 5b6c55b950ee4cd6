package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/recera/flowcanvas/pkg/flow"
	"github.com/recera/flowcanvas/pkg/view"
)

// statusLines is the number of rows below the canvas
const statusLines = 2

// Model is the terminal canvas. Mouse events drive the same drag controller
// the browser host uses; coordinates are terminal cells.
type Model struct {
	// Window dimensions
	width  int
	height int

	seed       []flow.Node
	registry   *flow.Registry
	controller *flow.Controller
	canvas     *view.Canvas
	styles     styles

	help    help.Model
	hovered int

	quitting bool
	status   string
}

// NewModel creates a terminal canvas seeded with the given nodes
func NewModel(seed []flow.Node, theme view.Theme) (Model, error) {
	reg, err := flow.NewRegistry(seed...)
	if err != nil {
		return Model{}, err
	}

	return Model{
		seed:       seed,
		registry:   reg,
		controller: flow.NewController(reg),
		canvas:     view.NewCanvas(theme),
		styles:     newStyles(theme),
		help:       help.New(),
		hovered:    -1,
	}, nil
}

// Registry returns the nodes on the canvas
func (m Model) Registry() *flow.Registry {
	return m.registry
}

// Controller returns the drag controller
func (m Model) Controller() *flow.Controller {
	return m.controller
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Quit):
			m.quitting = true
			// Leaving mid-drag keeps the last displayed position
			m.releaseActive()
			m.controller.Cancel()
			return m, tea.Quit

		case key.Matches(msg, DefaultKeyMap.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil

		case key.Matches(msg, DefaultKeyMap.Reset):
			if _, dragging := m.controller.Active(); dragging {
				m.status = "release the node before resetting"
				return m, nil
			}
			if err := m.registry.Initialize(m.seed); err != nil {
				m.status = err.Error()
				return m, nil
			}
			m.canvas.Reset()
			m.status = "layout reset"
			return m, nil
		}

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case tea.BlurMsg:
		m.releaseActive()
		m.controller.Cancel()
		return m, nil
	}

	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m
		}
		id, ok := m.hitTest(msg.X, msg.Y)
		if !ok {
			return m
		}
		m.status = ""
		m.releaseActive()
		m.canvas.View(id).Press()
		if err := m.controller.Grab(id, msg.X, msg.Y); err != nil {
			m.status = err.Error()
		}

	case tea.MouseActionMotion:
		m.status = ""
		if _, dragging := m.controller.Active(); dragging {
			m.controller.Move(msg.X, msg.Y)
			return m
		}
		m.hovered = -1
		if id, ok := m.hitTest(msg.X, msg.Y); ok {
			m.canvas.View(id).Hover()
			m.hovered = id
		}

	case tea.MouseActionRelease:
		m.releaseActive()
		m.controller.Release()
	}

	return m
}

func (m Model) releaseActive() {
	if id, ok := m.controller.Active(); ok {
		m.canvas.View(id).Release()
	}
}

// hitTest returns the topmost node whose box covers the cell
func (m Model) hitTest(x, y int) (int, bool) {
	nodes := m.registry.List()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		pos := n.Displayed()
		w, h := boxSize(n.Label)
		if x >= pos.X && x < pos.X+w && y >= pos.Y && y < pos.Y+h {
			return n.ID, true
		}
	}
	return 0, false
}

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	rows := m.height - statusLines
	if rows < 1 {
		rows = 1
	}
	return m.renderCanvas(m.width, rows) + "\n" + m.renderStatus() + "\n" + m.help.View(DefaultKeyMap)
}

func (m Model) renderStatus() string {
	if m.status != "" {
		return m.styles.status.Render(m.status)
	}

	if id, ok := m.controller.Active(); ok {
		n := m.registry.MustGet(id)
		pos := n.Displayed()
		return m.styles.status.Render(fmt.Sprintf("dragging node %d at (%d,%d) · cursor %s",
			id, pos.X, pos.Y, m.canvas.View(id).Cursor()))
	}

	if m.hovered >= 0 {
		if n, err := m.registry.Get(m.hovered); err == nil {
			pos := n.Displayed()
			return m.styles.status.Render(fmt.Sprintf("node %d at (%d,%d) · cursor %s",
				n.ID, pos.X, pos.Y, m.canvas.View(n.ID).Cursor()))
		}
	}

	return m.styles.status.Render(fmt.Sprintf("%d nodes · drag with the mouse", m.registry.Len()))
}

// Run starts the terminal canvas
func Run(seed []flow.Node, theme view.Theme) error {
	if !isatty() {
		return fmt.Errorf("not running in a terminal")
	}

	model, err := NewModel(seed, theme)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func isatty() bool {
	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
