package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
)

var presetInfo = map[string]string{
	"galaxy":  "rotating disc",
	"cluster": "octree gravity",
	"gas":     "lennard-jones",
	"binary":  "two bodies",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	arrowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	pinkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// param is one editable numeric field of a config.
type param struct {
	name string
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

var params = []param{
	{"bodies", func(c *config.Config) float64 { return float64(c.Bodies) }, func(c *config.Config, v float64) { c.Bodies = max(1, int(v)) }},
	{"step_size", func(c *config.Config) float64 { return c.StepSize }, func(c *config.Config, v float64) { c.StepSize = v }},
	{"g", func(c *config.Config) float64 { return c.Force.G }, func(c *config.Config, v float64) { c.Force.G = v }},
	{"damping", func(c *config.Config) float64 { return c.Force.Damping }, func(c *config.Config, v float64) { c.Force.Damping = v }},
	{"theta", func(c *config.Config) float64 { return c.Force.Theta }, func(c *config.Config, v float64) { c.Force.Theta = v }},
	{"speed", func(c *config.Config) float64 { return c.Distribution.Speed }, func(c *config.Config, v float64) { c.Distribution.Speed = v }},
}

type App struct {
	state, cursor int
	presets       []string
	cfg           *config.Config
	reg           *experiment.Registry
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	liveModel     Model
}

func NewInteractiveApp() *App {
	return &App{
		state:   stateMenu,
		presets: config.ListPresets(),
		reg:     experiment.NewRegistry(),
	}
}

func (m App) Init() tea.Cmd { return nil }

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m App) handleKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m App) menuKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.cfg = config.GetPreset(m.presets[m.cursor])
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m App) configKey(msg tea.KeyMsg) (App, tea.Cmd) {
	p := params[m.paramCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				p.set(m.cfg, v)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-e") {
				m.editBuf += s
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(params)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, strconv.FormatFloat(p.get(m.cfg), 'g', -1, 64)
	case "left", "h":
		p.set(m.cfg, p.get(m.cfg)/2)
	case "right", "l":
		p.set(m.cfg, p.get(m.cfg)*2)
	case "i":
		names := m.reg.ListIntegrators()
		for i, n := range names {
			if n == m.cfg.Integrator {
				m.cfg.Integrator = names[(i+1)%len(names)]
				break
			}
		}
	case "s":
		cmd := m.start()
		return m, cmd
	}
	return m, nil
}

func (m *App) start() tea.Cmd {
	if err := m.cfg.Validate(); err != nil {
		m.err = err
		return nil
	}
	exp := experiment.New(m.cfg.Experiment())
	if err := exp.Setup(m.reg, nil); err != nil {
		m.err = err
		return nil
	}
	m.liveModel = NewModel(exp.Engine(), m.presets[m.cursor], m.cfg.Distribution.Radius.Max)
	m.state = stateSim
	return m.liveModel.Init()
}

func (m App) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + idleStyle.Render(" "+pairs[i+1]+"  "))
	}
	return "\n    " + b.String() + "\n"
}

func (m App) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render("GRAVSIM") + "\n    " + subStyle.Render("n-body simulation engine") + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", arrowStyle.Render("▸"), activeStyle.Render(fmt.Sprintf("%-12s", name)), pinkStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", idleStyle.Render(fmt.Sprintf("%-12s", name)), dimStyle.Render(desc)))
		}
	}
	b.WriteString(hints("j/k", "navigate", "enter", "select", "q", "quit"))
	return b.String()
}

func (m App) viewConfig() string {
	var b strings.Builder
	name := m.presets[m.cursor]
	b.WriteString("\n\n    " + titleStyle.Render(strings.ToUpper(name)) + "\n    " +
		subStyle.Render(fmt.Sprintf("%s · %s · %s", m.cfg.Distribution.Kind, m.cfg.Force.Kind, m.cfg.Integrator)) + "\n    " +
		subStyle.Render("─────────────────────────") + "\n\n")
	for i, p := range params {
		val := fmt.Sprintf("%10.4g", p.get(m.cfg))
		if m.editing && i == m.paramCursor {
			val = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", arrowStyle.Render("▸"), activeStyle.Render(fmt.Sprintf("%-10s", p.name)), pinkStyle.Bold(true).Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s\n", idleStyle.Render(fmt.Sprintf("%-10s", p.name)), dimStyle.Render(val)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Render(m.err.Error()) + "\n")
	}
	b.WriteString(hints("j/k", "select", "h/l", "halve/double", "i", "integrator", "s", "start", "esc", "back"))
	return b.String()
}

func RunInteractive() error {
	_, err := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen()).Run()
	return err
}

// RunLive opens the live view of an already built engine.
func RunLive(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func RunLife(m LifeModel) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
