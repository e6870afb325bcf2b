package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/gravsim/internal/life"
)

// LifeModel shows a Game of Life grid, one terminal cell per cell. Mouse
// clicks and the cursor queue cell changes for the next generation.
type LifeModel struct {
	sim              *life.Sim
	running          bool
	cursorX, cursorY int
}

// lifeHeader is the number of lines above the grid.
const lifeHeader = 1

func NewLifeModel(s *life.Sim) LifeModel {
	return LifeModel{sim: s, running: true, cursorX: s.Width() / 2, cursorY: s.Height() / 2}
}

func (m LifeModel) Init() tea.Cmd { return tick() }

func (m LifeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case ".":
			if !m.running {
				m.sim.Step()
			}
		case "left", "h":
			m.cursorX = (m.cursorX - 1 + m.sim.Width()) % m.sim.Width()
		case "right", "l":
			m.cursorX = (m.cursorX + 1) % m.sim.Width()
		case "up", "k":
			m.cursorY = (m.cursorY - 1 + m.sim.Height()) % m.sim.Height()
		case "down", "j":
			m.cursorY = (m.cursorY + 1) % m.sim.Height()
		case "enter", "x":
			_ = m.sim.AddClick(m.cursorX, m.cursorY, life.Live)
		case "backspace", "d":
			_ = m.sim.AddClick(m.cursorX, m.cursorY, life.Dead)
		case "t":
			NextTheme()
		}
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			break
		}
		state := life.Live
		if msg.Button == tea.MouseButtonRight {
			state = life.Dead
		}
		// Out of grid clicks are rejected by AddClick.
		_ = m.sim.AddClick(msg.X, msg.Y-lifeHeader, state)
	case TickMsg:
		if m.running {
			m.sim.Step()
		}
		return m, tick()
	}
	return m, nil
}

func (m LifeModel) View() string {
	var b strings.Builder
	header := fmt.Sprintf("life  gen %d  alive %d", m.sim.Generation(), m.sim.Alive())
	b.WriteString(statusStyle(m.running).Render(header) + "\n")

	cursor := lipgloss.NewStyle().Background(CurrentTheme.Accent)
	dead := dimStyle.Render("·")
	m.sim.WithGrid(func(g *life.Grid) {
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				i := y*g.Width + x
				cell := dead
				if g.Cells[i] == life.Live {
					cell = lipgloss.NewStyle().Foreground(hexColor(g.Shade[i])).Render("█")
				}
				if x == m.cursorX && y == m.cursorY {
					cell = cursor.Render(cell)
				}
				b.WriteString(cell)
			}
			b.WriteByte('\n')
		}
	})
	b.WriteString(helpStyle.Render("space pause  . step  arrows move  enter/x live  d dead  click to draw  q quit"))
	return b.String()
}
