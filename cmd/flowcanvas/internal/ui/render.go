package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/recera/flowcanvas/pkg/view"
)

// padX is the horizontal padding inside a node box
const padX = 2

// cellWidth measures runes the way lipgloss measures labels. Box drawing
// glyphs are ambiguous width and must stay one cell regardless of locale.
var cellWidth = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

type styles struct {
	background lipgloss.Style
	node       lipgloss.Style
	status     lipgloss.Style
	border     lipgloss.Border
}

func newStyles(theme view.Theme) styles {
	return styles{
		background: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.Background)),
		node: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(theme.Text)).
			Background(lipgloss.Color(theme.Accent)),
		status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8")),
		border: lipgloss.RoundedBorder(),
	}
}

// boxSize returns the width and height in cells of a node with the label
func boxSize(label string) (int, int) {
	return lipgloss.Width(label) + 2*padX + 2, 3
}

// cell is one terminal cell; styled marks node cells. A wide rune fills its
// own cell and the next one, which is marked cont and never printed.
type cell struct {
	r      rune
	styled bool
	cont   bool
}

// renderCanvas draws every node onto a width x height grid. Later nodes are
// drawn over earlier ones and boxes are clipped at the edges.
func (m Model) renderCanvas(width, height int) string {
	grid := make([][]cell, height)
	for y := range grid {
		grid[y] = make([]cell, width)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' '}
		}
	}

	for _, n := range m.registry.List() {
		pos := n.Displayed()
		for dy, line := range m.boxLines(n.Label) {
			y := pos.Y + dy
			if y < 0 || y >= height {
				continue
			}
			dx := 0
			for _, r := range line {
				w := cellWidth.RuneWidth(r)
				if w > 0 {
					putRune(grid[y], pos.X+dx, r, w)
				}
				dx += w
			}
		}
	}

	var b strings.Builder
	for y, row := range grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		// Emit runs of equally styled cells with one style each
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].styled == row[start].styled {
				continue
			}
			run := make([]rune, 0, x-start)
			for _, c := range row[start:x] {
				if !c.cont {
					run = append(run, c.r)
				}
			}
			if row[start].styled {
				b.WriteString(m.styles.node.Render(string(run)))
			} else {
				b.WriteString(m.styles.background.Render(string(run)))
			}
			start = x
		}
	}
	return b.String()
}

// putRune writes a w-cell rune at x. Cells off the row are dropped, and a
// wide rune that is cut by an edge or by another box becomes spaces.
func putRune(row []cell, x int, r rune, w int) {
	set := func(i int, c cell) {
		if i < 0 || i >= len(row) {
			return
		}
		// Overwriting half of a wide rune blanks the other half
		if row[i].cont && !c.cont && i > 0 {
			row[i-1] = cell{r: ' ', styled: row[i-1].styled}
		}
		if i+1 < len(row) && row[i+1].cont {
			row[i+1] = cell{r: ' ', styled: row[i+1].styled}
		}
		row[i] = c
	}

	if x < 0 || x+w > len(row) {
		for i := 0; i < w; i++ {
			set(x+i, cell{r: ' ', styled: true})
		}
		return
	}
	set(x, cell{r: r, styled: true})
	for i := 1; i < w; i++ {
		set(x+i, cell{styled: true, cont: true})
	}
}

// boxLines returns the three rows of a rounded node box
func (m Model) boxLines(label string) [][]rune {
	w, _ := boxSize(label)
	inner := w - 2
	bd := m.styles.border

	pad := strings.Repeat(" ", padX)
	return [][]rune{
		[]rune(bd.TopLeft + strings.Repeat(bd.Top, inner) + bd.TopRight),
		[]rune(bd.Left + pad + label + pad + bd.Right),
		[]rune(bd.BottomLeft + strings.Repeat(bd.Bottom, inner) + bd.BottomRight),
	}
}
