// Package term runs the spiral on a terminal grid with bubbletea.
//
// Cells are roughly twice as tall as they are wide, so the orchestrator works
// in a space where one row spans cellAspect units; that keeps spirals round.
package term

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/iburimskiy/spiral-haiku/internal/burst"
	"github.com/iburimskiy/spiral-haiku/internal/scene"
)

const (
	cellAspect = 2.0
	frameRate  = time.Second / 30
	// entities fainter than this render dim
	faintBelow = 0.35
	linkGlyph  = '·'
)

type tickMsg time.Time

type cell struct {
	r     rune
	color color.RGBA
	faint bool
}

type Model struct {
	orch   *burst.Orchestrator
	width  int
	height int
	now    time.Time
	status string

	// writeClipboard is clipboard.WriteAll; tests swap it out.
	writeClipboard func(string) error

	poemStyle   lipgloss.Style
	statusStyle lipgloss.Style
}

func New(orch *burst.Orchestrator) Model {
	return Model{
		orch:           orch,
		now:            time.Now(),
		writeClipboard: clipboard.WriteAll,
		poemStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff99")).Bold(true),
		statusStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("#555577")),
	}
}

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.orch.Resize(float64(m.width), float64(m.height)*cellAspect)
	case tea.MouseMsg:
		now := time.Now()
		switch msg.Type {
		case tea.MouseMotion:
			m.orch.Move(now)
		case tea.MouseLeft:
			if _, ok := m.orch.Click(float64(msg.X), float64(msg.Y)*cellAspect, now); ok {
				m.status = ""
			}
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "c":
			m.status = m.copyPoem()
		}
	case tickMsg:
		m.now = time.Time(msg)
		m.orch.Tick(m.now)
		m.orch.SetPoemBounds(m.poemBounds())
		return m, tick()
	}
	return m, nil
}

func (m Model) copyPoem() string {
	p := m.orch.Poem()
	if p.Text == "" {
		return "no poem yet"
	}
	if err := m.writeClipboard(p.Text); err != nil {
		return "copy failed: " + err.Error()
	}
	return "poem copied"
}

// poemTop is the top row of the poem block, or -1 without a poem.
func (m Model) poemTop() int {
	lines := m.poemLines()
	if len(lines) == 0 {
		return -1
	}
	return m.height - 2 - len(lines)
}

func (m Model) poemLines() []string {
	p := m.orch.Poem().Text
	if p == "" {
		return nil
	}
	return strings.Split(p, "\n")
}

// poemBounds is the poem block in orchestrator space.
func (m Model) poemBounds() image.Rectangle {
	top := m.poemTop()
	if top < 0 {
		return image.Rectangle{}
	}
	lines := m.poemLines()
	widest := 0
	for _, l := range lines {
		widest = max(widest, runewidth.StringWidth(l))
	}
	left := (m.width - widest) / 2
	return image.Rect(left, int(float64(top)*cellAspect), left+widest, int(float64(top+len(lines))*cellAspect))
}

func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	grid := make([][]cell, m.height)
	for y := range grid {
		grid[y] = make([]cell, m.width)
	}
	put := func(x, y float64, c cell) {
		col := int(math.Round(x))
		row := int(math.Round(y / cellAspect))
		if row < 0 || row >= m.height || col < 0 || col >= m.width {
			return
		}
		grid[row][col] = c
	}

	live := m.orch.Scene().Live()
	for _, e := range live {
		if e.Kind != scene.KindConnection {
			continue
		}
		a := e.Alpha(m.now)
		if a <= 0 {
			continue
		}
		c := cell{r: linkGlyph, color: e.Color, faint: a < faintBelow}
		steps := int(math.Hypot(e.B.X-e.A.X, (e.B.Y-e.A.Y)/cellAspect)) + 1
		for i := 0; i <= steps; i++ {
			f := float64(i) / float64(steps)
			put(e.A.X+(e.B.X-e.A.X)*f, e.A.Y+(e.B.Y-e.A.Y)*f, c)
		}
	}
	for _, e := range live {
		if e.Kind != scene.KindNote {
			continue
		}
		if a := e.Alpha(m.now); a > 0 {
			put(e.A.X, e.A.Y, cell{r: e.Glyph, color: e.Color, faint: a < faintBelow})
		}
	}

	rows := make([]string, m.height)
	for y, line := range grid {
		rows[y] = renderRow(line)
	}

	if top := m.poemTop(); top >= 0 {
		for i, l := range m.poemLines() {
			row := top + i
			if row < 0 || row >= m.height {
				continue
			}
			pad := max(0, (m.width-runewidth.StringWidth(l))/2)
			rows[row] = strings.Repeat(" ", pad) + m.poemStyle.Render(l)
		}
	}

	status := "mode: " + m.orch.Mode().String() + "  click: burst  c: copy  q: quit"
	if n := m.orch.Scene().Evicted(); n > 0 {
		status += fmt.Sprintf("  evicted: %d", n)
	}
	if m.status != "" {
		status += "  | " + m.status
	}
	rows[m.height-1] = m.statusStyle.Render(runewidth.Truncate(status, m.width, ""))
	return strings.Join(rows, "\n")
}

// renderRow styles runs of identical cells together.
func renderRow(line []cell) string {
	var b strings.Builder
	for i := 0; i < len(line); {
		j := i + 1
		for j < len(line) && line[j].color == line[i].color && line[j].faint == line[i].faint && (line[j].r == 0) == (line[i].r == 0) {
			j++
		}
		var run strings.Builder
		for _, c := range line[i:j] {
			if c.r == 0 {
				run.WriteByte(' ')
			} else {
				run.WriteRune(c.r)
			}
		}
		if line[i].r == 0 {
			b.WriteString(run.String())
		} else {
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(hex(line[i].color))).Faint(line[i].faint)
			b.WriteString(style.Render(run.String()))
		}
		i = j
	}
	return b.String()
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
