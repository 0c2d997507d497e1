// Package analysis characterises recorded two-body runs.
//
// The package works on sampled [dynamo.State] series as written by a
// headless run:
//
//   - [PowerSpectrum], [DominantFrequency]: spectral content of a series
//   - [OrbitalPeriod]: period of the separation signal via FFT
//   - [PeriapsisTimes]: closest-approach crossings, a second period estimate
//   - [Apsides]: minimum and maximum separation and the implied eccentricity
//   - [OrbitToASCII]: the relative orbit drawn as text
//
// # Example
//
//	states, times, _ := store.LoadStates(runID)
//	period, _ := analysis.OrbitalPeriod(states, times)
package analysis
