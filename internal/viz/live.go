package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	frameRate       = 30
	maxStepsFrame   = 64
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model steps an engine on every tick and draws the read generation.
type Model struct {
	engine        *sim.Engine
	title         string
	canvas        *Canvas
	cam           *Camera
	extent        float64
	running       bool
	stepsPerFrame int
	axes          bool
	showHelp      bool
	energy        []float64
	scratch       []r3.Vec
}

// NewModel views e with the camera framed on a ball of radius extent.
func NewModel(e *sim.Engine, title string, extent float64) Model {
	if extent <= 0 {
		extent = 1
	}
	return Model{
		engine:        e,
		title:         title,
		canvas:        NewCanvas(width-38, height),
		cam:           NewCamera(),
		extent:        extent,
		running:       true,
		stepsPerFrame: 1,
		energy:        make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case ".":
			if !m.running {
				m.step(1)
			}
		case "left", "h":
			m.cam.Rotate(-0.1, 0)
		case "right", "l":
			m.cam.Rotate(0.1, 0)
		case "up", "k":
			m.cam.Rotate(0, -0.1)
		case "down", "j":
			m.cam.Rotate(0, 0.1)
		case "+", "=":
			m.cam.ZoomIn()
		case "-", "_":
			m.cam.ZoomOut()
		case "[":
			m.stepsPerFrame = max(1, m.stepsPerFrame/2)
		case "]":
			m.stepsPerFrame = min(maxStepsFrame, m.stepsPerFrame*2)
		case "t":
			NextTheme()
		case "a":
			m.axes = !m.axes
		case "?":
			m.showHelp = !m.showHelp
		}
		m.draw()
	case tea.WindowSizeMsg:
		w := max(msg.Width-38, 10)
		h := max(msg.Height-2, 5)
		m.canvas = NewCanvas(w, h)
		m.draw()
	case TickMsg:
		m.cam.Settle()
		if m.running {
			m.step(m.stepsPerFrame)
		}
		m.draw()
		return m, tick()
	}
	return m, nil
}

func (m *Model) step(n int) {
	for range n {
		m.engine.Step()
	}
	m.scratch = m.engine.Velocities().CopyTo(m.scratch)
	m.energy = append(m.energy, physics.KineticEnergy(m.scratch))
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[len(m.energy)-historyCapacity:]
	}
}

func (m *Model) draw() {
	m.canvas.Clear()
	w, h := m.canvas.Dots()
	view := m.cam.View()

	if m.axes {
		ox, oy, _, _ := m.cam.Project(view, r3.Vec{}, w, h, m.extent)
		for _, axis := range []r3.Vec{{X: m.extent}, {Y: m.extent}, {Z: m.extent}} {
			ax, ay, _, _ := m.cam.Project(view, axis, w, h, m.extent)
			m.canvas.DrawLine(ox, oy, ax, ay)
		}
	}

	m.engine.WithPositions(func(v dynamo.View) {
		for _, p := range v.All() {
			if x, y, _, ok := m.cam.Project(view, p, w, h, m.extent); ok {
				m.canvas.Set(x, y)
			}
		}
	})
}

func (m Model) View() string {
	body := lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Render(strings.TrimRight(m.canvas.String(), "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, body, m.stats())
}

func (m Model) stats() string {
	e := m.engine
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Foreground(CurrentTheme.Accent).Render(m.title) + "\n")
	b.WriteString(statusStyle(m.running).Render(status) + "\n\n")
	b.WriteString(row("bodies", fmt.Sprintf("%d", e.N())) + "\n")
	b.WriteString(row("force", e.Force().Name()) + "\n")
	b.WriteString(row("integrator", e.Integrator().Name()) + "\n")
	b.WriteString(row("time", fmt.Sprintf("%.2f", e.Time())) + "\n")
	b.WriteString(row("steps", fmt.Sprintf("%d", e.Steps())) + "\n")
	b.WriteString(row("per frame", fmt.Sprintf("%d", m.stepsPerFrame)) + "\n")
	b.WriteString(row("zoom", fmt.Sprintf("%.2f", m.cam.Zoom)) + "\n")
	if n := len(m.energy); n > 0 {
		b.WriteString(row("kinetic", fmt.Sprintf("%.4e", m.energy[n-1])) + "\n")
	}
	b.WriteString("\n" + Sparkline(m.energy, 30) + "\n")

	if m.showHelp {
		b.WriteString(helpStyle.Render("space pause  . step\narrows rotate  +/- zoom\n[ ] speed  a axes\nt theme  q quit"))
	} else {
		b.WriteString(helpStyle.Render("? help"))
	}
	return panelStyle.Render(b.String())
}
