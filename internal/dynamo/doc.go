// Package dynamo provides the core data model for the two-body simulation.
//
// The package defines the types shared by the stepper, the simulation loop
// and every frontend:
//
//   - [Body]: a point mass with position, velocity, rendering radius and trail
//   - [Config]: gravitational constant, time step and trail capacity
//   - [State]: flat snapshot of both bodies used for storage and analysis
//   - [Metric]: observes the initial state and every step of a headless run
//   - [Result]: output of a headless run
//
// # Example
//
//	a, _ := dynamo.NewBody("a", 5e6, 0.05, r2.Vec{X: -0.5}, r2.Vec{Y: 0.01})
//	b, _ := dynamo.NewBody("b", 5e6, 0.05, r2.Vec{X: 0.5}, r2.Vec{Y: -0.01})
//	s, _ := sim.New(dynamo.DefaultConfig(), a, b)
//	result, _ := s.Run(ctx, 1000, 10)
//
// # Thread Safety
//
// Bodies are owned by a single simulation and are NOT safe for concurrent
// use. Frontends read them on the goroutine that steps them.
package dynamo
