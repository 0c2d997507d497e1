package viz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/sim"
)

var presetInfo = map[string]string{
	"default":     "two equal bodies, slow spin",
	"binary":      "circular mutual orbit",
	"eccentric":   "bound elliptical orbit",
	"heavy-light": "planet around a star",
	"coincident":  "shared start point, clamped",
}

const (
	stateMenu = iota
	stateSim
)

// Menu lists the presets and starts a live view of the chosen one.
type Menu struct {
	state   int
	cursor  int
	presets []string
	opts    []Option
	err     error
	live    Model
}

func NewMenu(opts ...Option) Menu {
	return Menu{presets: config.ListPresets(), opts: opts}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		newLive, cmd := m.live.Update(msg)
		m.live = newLive.(Model)
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
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
		return m.start()
	}
	return m, nil
}

func (m Menu) start() (Menu, tea.Cmd) {
	name := m.presets[m.cursor]
	cfg := config.GetPreset(name)
	a, b, err := cfg.Build()
	if err != nil {
		m.err = err
		return m, nil
	}
	s, err := sim.New(cfg.SimConfig(), a, b)
	if err != nil {
		m.err = err
		return m, nil
	}

	opts := append([]Option{WithTitle(name)}, m.opts...)
	m.live = NewModel(s, opts...)
	m.state = stateSim
	return m, m.live.Init()
}

// Selected returns the highlighted preset.
func (m Menu) Selected() string { return m.presets[m.cursor] }

func (m Menu) View() string {
	if m.state == stateSim {
		return m.live.View()
	}

	var b strings.Builder
	sub := lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	b.WriteString("\n\n    " + GradientText("GRAVSIM", "#00ffff", "#ff88ff") + "\n    " + sub.Render("two-body gravity") + "\n    " + sub.Render("─────────────────────────") + "\n\n")

	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n",
				lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true).Render("▸"),
				lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true).Render(fmt.Sprintf("%-12s", name)),
				lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff")).Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n",
				lipgloss.NewStyle().Foreground(lipgloss.Color("#555566")).Render(fmt.Sprintf("  %-12s", name)),
				lipgloss.NewStyle().Foreground(lipgloss.Color("#444455")).Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusError.Render(m.err.Error()) + "\n")
	}

	key := lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	b.WriteString("\n    " + key.Render("j/k") + sub.Render(" navigate  ") + key.Render("enter") + sub.Render(" select  ") + key.Render("q") + sub.Render(" quit") + "\n")
	return b.String()
}

// RunInteractive shows the preset menu and then the chosen simulation.
func RunInteractive(ctx context.Context, opts ...Option) error {
	p := tea.NewProgram(NewMenu(opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
