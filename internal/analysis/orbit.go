package analysis

import (
	"errors"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

var ErrNoPeriapsis = errors.New("analysis: fewer than two periapsis passages")

func SeparationSeries(states []dynamo.State) []float64 {
	out := make([]float64, len(states))
	for i, s := range states {
		out[i] = s.Separation()
	}
	return out
}

// RelativeOrbit returns the position of the second body relative to the first.
func RelativeOrbit(states []dynamo.State) []r2.Vec {
	out := make([]r2.Vec, len(states))
	for i, s := range states {
		posA, _, posB, _ := s.Bodies()
		out[i] = r2.Sub(posB, posA)
	}
	return out
}

// Apsides returns the closest and farthest separation and the eccentricity
// (max-min)/(max+min) of the relative orbit.
func Apsides(states []dynamo.State) (periapsis, apoapsis, eccentricity float64) {
	if len(states) == 0 {
		return 0, 0, 0
	}
	periapsis, apoapsis = math.Inf(1), 0
	for _, r := range SeparationSeries(states) {
		periapsis = math.Min(periapsis, r)
		apoapsis = math.Max(apoapsis, r)
	}
	if apoapsis+periapsis > 0 {
		eccentricity = (apoapsis - periapsis) / (apoapsis + periapsis)
	}
	return periapsis, apoapsis, eccentricity
}

// OrbitalPeriod estimates the period from the dominant frequency of the
// separation. Samples are assumed evenly spaced.
func OrbitalPeriod(states []dynamo.State, times []float64) (float64, error) {
	if len(states) < 4 || len(times) != len(states) {
		return 0, ErrTooShort
	}
	dt := (times[len(times)-1] - times[0]) / float64(len(times)-1)
	freq, err := DominantFrequency(SeparationSeries(states), dt)
	if err != nil {
		return 0, err
	}
	return 1 / freq, nil
}

// PeriapsisTimes returns the times of local separation minima, refined by
// fitting a parabola through the neighbouring samples.
func PeriapsisTimes(states []dynamo.State, times []float64) []float64 {
	r := SeparationSeries(states)
	var out []float64
	for i := 1; i+1 < len(r); i++ {
		if r[i] < r[i-1] && r[i] <= r[i+1] {
			h := times[i+1] - times[i]
			denom := r[i-1] - 2*r[i] + r[i+1]
			offset := 0.0
			if denom != 0 {
				offset = 0.5 * (r[i-1] - r[i+1]) / denom * h
			}
			out = append(out, times[i]+offset)
		}
	}
	return out
}

// MeanInterval returns the average spacing of consecutive periapsis passages.
func MeanInterval(passages []float64) (float64, error) {
	if len(passages) < 2 {
		return 0, ErrNoPeriapsis
	}
	return (passages[len(passages)-1] - passages[0]) / float64(len(passages)-1), nil
}
