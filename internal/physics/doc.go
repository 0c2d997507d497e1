// Package physics advances two gravitating bodies through time.
//
// [Stepper.Step] applies symmetric Newtonian gravity and integrates with
// semi-implicit Euler: velocities are updated first and the new velocities
// move the positions within the same step.
//
//	st := physics.NewStepper(dynamo.DefaultG)
//	if err := st.Step(a, b, 0.01); err != nil {
//	    // bodies coincide and no minimum distance is configured
//	}
//
// # Coincident Bodies
//
// With MinDistance zero the force is undefined when both bodies share a
// position; Step returns [dynamo.ErrCoincident] and leaves the bodies
// untouched. With MinDistance positive the separation used for the force is
// clamped, so accelerations stay finite.
//
// # Conserved Quantities
//
// [Energy], [Momentum] and [AngularMomentum] are provided for monitoring
// drift. Momentum is conserved exactly up to rounding, because the two
// accelerations are equal and opposite after scaling by mass.
package physics
