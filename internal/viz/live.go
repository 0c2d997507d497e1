package viz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/render"
	"github.com/san-kum/gravsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	width           = 64
	height          = 24
	historyCapacity = 600
	zoomStep        = 1.25
)

type TickMsg time.Time

// Model drives a simulation from bubbletea ticks and draws it on a braille
// canvas next to a stats panel.
type Model struct {
	sim           *sim.Simulation
	title         string
	canvas        *Canvas
	zoom          float64
	fps           int
	stepsPerFrame int
	running       bool
	frame         int
	err           error
	energyHistory []float64
	sepHistory    []float64
}

type Option func(*Model)

func WithFPS(fps int) Option {
	return func(m *Model) {
		if fps > 0 {
			m.fps = fps
		}
	}
}

// WithStepsPerFrame sets how many ticks run between redraws.
func WithStepsPerFrame(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.stepsPerFrame = n
		}
	}
}

func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

func NewModel(s *sim.Simulation, opts ...Option) Model {
	m := Model{
		sim:           s,
		title:         "2d gravity",
		canvas:        NewCanvas(width, height),
		zoom:          1,
		fps:           60,
		stepsPerFrame: 1,
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
		sepHistory:    make([]float64, 0, historyCapacity),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.draw()
	return m
}

// Paused reports whether ticking is suspended.
func (m Model) Paused() bool { return !m.running }

func (m Model) Zoom() float64 { return m.zoom }

// Err returns the error that stopped the simulation, if any.
func (m Model) Err() error { return m.err }

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.zoom *= zoomStep
		case "-", "_":
			m.zoom /= zoomStep
		}
		m.draw()
	case tea.WindowSizeMsg:
		w := max(msg.Width-50, 16)
		h := max(msg.Height-4, 8)
		if w != m.canvas.Width || h != m.canvas.Height {
			m.canvas = NewCanvas(w, h)
		}
		m.draw()
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		m.frame++
		m.draw()
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	for i := 0; i < m.stepsPerFrame; i++ {
		if err := m.sim.Tick(); err != nil {
			m.err = err
			m.running = false
			return
		}
	}
	m.energyHistory = appendBounded(m.energyHistory, m.sim.Energy())
	a, b := m.sim.Bodies()
	m.sepHistory = appendBounded(m.sepHistory, physics.Separation(a, b))
}

// appendBounded keeps the newest historyCapacity finite values.
func appendBounded(history []float64, v float64) []float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return history
	}
	history = append(history, v)
	if len(history) > historyCapacity {
		history = history[1:]
	}
	return history
}

func (m *Model) reset() {
	m.sim.Reset()
	m.err = nil
	m.energyHistory = m.energyHistory[:0]
	m.sepHistory = m.sepHistory[:0]
}

// draw paints every sprite of the current frame, trails first.
func (m *Model) draw() {
	m.canvas.Clear()
	pw, ph := m.canvas.PixelSize()
	vp := render.Viewport{Width: pw, Height: ph, Zoom: m.zoom}

	a, b := m.sim.Bodies()
	for _, sp := range render.Frame(a, b) {
		x, y := vp.ToScreen(sp.Center)
		m.canvas.FillCircle(x, y, vp.Radius(sp.Radius), ParseColor(sp.Color), sp.Alpha)
	}
}

func (m Model) View() string {
	a, b := m.sim.Bodies()

	var s strings.Builder
	s.WriteString(headerStyle.Render(GradientText(strings.ToUpper(m.title), a.Color, b.Color)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(StatusError.Render("STOPPED") + "\n" + Subtle.Render(m.err.Error()) + "\n\n")
	case m.running:
		s.WriteString(StatusRunning.Render(AnimatedSpinner(m.frame)+" RUNNING") + "\n\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.sim.Time()))
	row("Step", fmt.Sprintf("%d", m.sim.Steps()))
	row("Separation", fmt.Sprintf("%.4f", physics.Separation(a, b)))
	row("Energy", fmt.Sprintf("%.4e", m.sim.Energy()))
	row("Momentum", fmt.Sprintf("%.4e", r2.Norm(physics.Momentum(a, b))))
	row("Ang. mom.", fmt.Sprintf("%.4e", physics.AngularMomentum(a, b)))
	row("Zoom", fmt.Sprintf("%.2fx", m.zoom))
	row("Trail", ProgressBar(float64(a.Trail.Len())/float64(a.Trail.Cap()), 16))
	s.WriteString(labelStyle.Render("Sep.") + SparklineChart(m.sepHistory, 24) + "\n")

	s.WriteString(helpStyle.Render(Separator(26) + "\nSP:Pause R:Reset Q:Quit\n+/-:Zoom"))

	canvasView := canvasStyle.Render(m.canvas.Render())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panelStyle.Render(s.String()))
}

// Run shows s in the terminal until the user quits or ctx is cancelled.
func Run(ctx context.Context, s *sim.Simulation, opts ...Option) error {
	p := tea.NewProgram(NewModel(s, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
