package gui

import (
	"context"
	"errors"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/render"
	"github.com/san-kum/gravsim/internal/sim"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600
	DefaultTitle  = "2D Gravity Simulation"

	maxTelemetry = 200
)

var ErrWindow = errors.New("gui: window could not be initialised")

var (
	ColBg      = rl.Black
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
)

// Window is a raylib frontend for [sim.Simulation.Loop].
type Window struct {
	viewport  render.Viewport
	paused    bool
	telemetry []float64
}

// Open creates the window. Only one window may be open at a time.
func Open(width, height int, title string) (*Window, error) {
	rl.SetConfigFlags(rl.FlagMsaa4xHint)
	rl.InitWindow(int32(width), int32(height), title)
	if !rl.IsWindowReady() {
		return nil, ErrWindow
	}
	rl.SetTargetFPS(60)

	return &Window{
		viewport:  render.NewViewport(width, height),
		telemetry: make([]float64, 0, maxTelemetry),
	}, nil
}

func (w *Window) Close() {
	rl.CloseWindow()
}

func (w *Window) Paused() bool { return w.paused }

// Continue reports false once the user closes the window or presses Esc.
func (w *Window) Continue() bool {
	return !rl.WindowShouldClose()
}

// Render handles input and draws one frame of s.
func (w *Window) Render(s *sim.Simulation) {
	w.handleInput(s)

	if e := s.Energy(); !w.paused && finite(e) {
		w.telemetry = append(w.telemetry, e)
		if len(w.telemetry) > maxTelemetry {
			w.telemetry = w.telemetry[1:]
		}
	}

	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	a, b := s.Bodies()
	drawSprites(render.Frame(a, b), w.viewport)
	w.drawHUD(s)

	rl.EndDrawing()
}

func (w *Window) handleInput(s *sim.Simulation) {
	if rl.IsKeyPressed(rl.KeySpace) {
		w.paused = !w.paused
	}
	if rl.IsKeyPressed(rl.KeyR) {
		s.Reset()
		w.telemetry = w.telemetry[:0]
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		w.viewport.Zoom *= 1 + 0.1*float64(wheel)
	}
}

func (w *Window) drawHUD(s *sim.Simulation) {
	a, b := s.Bodies()
	drawText("gravsim", 20, 20, 20, ColSelect)

	status, col := "RUNNING", ColSelect
	if w.paused {
		status, col = "PAUSED", ColTextDim
	}
	drawText(status, int32(w.viewport.Width)-100, 20, 16, col)

	drawText(fmt.Sprintf("t = %.2f   step %d", s.Time(), s.Steps()), 20, 50, 14, ColText)
	drawText(fmt.Sprintf("r = %.4f", physics.Separation(a, b)), 20, 70, 14, ColText)

	drawTelemetry(w.telemetry, 20, int32(w.viewport.Height)-110, 300, 50)
	drawText("[SPACE] PAUSE  [R] RESET  [ESC] QUIT", 20, int32(w.viewport.Height)-30, 14, ColTextDim)
	drawText(fmt.Sprintf("%d FPS", rl.GetFPS()), int32(w.viewport.Width)-80, int32(w.viewport.Height)-30, 14, ColTextDim)
}

// Run opens the default window and drives s until the window closes or ctx
// is cancelled.
func Run(ctx context.Context, s *sim.Simulation) error {
	w, err := Open(DefaultWidth, DefaultHeight, DefaultTitle)
	if err != nil {
		return err
	}
	defer w.Close()
	return s.Loop(ctx, w)
}
