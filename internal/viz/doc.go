// Package viz draws a running two-body simulation in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view of one [sim.Simulation]
//   - [Menu]: preset picker that opens a [Model]
//   - [Canvas]: Braille-based pixel canvas with per-cell colour
//
// Trails use the same sprites as every other frontend. A dot's colour is the
// body colour blended towards [Background] by the sprite alpha, so older
// trail points look dimmer.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	+/-   - Zoom in/out
//	Q     - Quit
package viz
