package thermal

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidParameter marks simulation parameters rejected before any
	// computation takes place.
	ErrInvalidParameter = errors.New("invalid simulation parameter")

	// ErrNumericOverflow marks an integration aborted because an
	// intermediate value stopped being finite.
	ErrNumericOverflow = errors.New("numeric overflow during integration")
)

// TracePoint is one sample of the temperature trajectory.
type TracePoint struct {
	TimeOffset  float64 // seconds since integration start
	Temperature float64 // °C
}

// Result is the output of a single-shot integration.
type Result struct {
	FinalTemperature float64
	Trace            []TracePoint // nil unless requested
	Steps            int
}

// Interval describes one segment of a chained simulation.
type Interval struct {
	Index    int
	Duration float64 // seconds
}

// Intervals builds n equal interval descriptors of the given duration each.
func Intervals(n int, duration float64) []Interval {
	out := make([]Interval, n)
	for i := range out {
		out[i] = Interval{Index: i, Duration: duration}
	}
	return out
}

// Integrate advances the cable temperature from t=0 to t=duration with a
// classical fixed-step RK4 scheme. The step count is ceil(duration/step);
// when duration is not an exact multiple of step the last sub-step shrinks
// to the remainder so the result lands exactly at t=duration.
//
// When withTrace is set the full trajectory is returned, starting with the
// initial temperature at offset 0.
func Integrate(initial float64, cond Conditions, duration, step float64, withTrace bool) (*Result, error) {
	if err := validate(initial, cond, duration, step); err != nil {
		return nil, err
	}

	steps := int(math.Ceil(duration / step))
	temp := initial

	var trace []TracePoint
	if withTrace {
		trace = make([]TracePoint, 0, steps+1)
		trace = append(trace, TracePoint{TimeOffset: 0, Temperature: initial})
	}

	t := 0.0
	for s := 0; s < steps; s++ {
		// Absolute offsets keep the grid free of float drift and pin the
		// final sample to exactly t=duration.
		next := math.Min(float64(s+1)*step, duration)
		h := next - t

		k1 := Derivative(temp, cond)
		k2 := Derivative(temp+h/2*k1, cond)
		k3 := Derivative(temp+h/2*k2, cond)
		k4 := Derivative(temp+h*k3, cond)
		temp += h / 6 * (k1 + 2*k2 + 2*k3 + k4)
		t = next

		if math.IsNaN(temp) || math.IsInf(temp, 0) {
			return nil, fmt.Errorf("%w: temperature not finite at t=%gs", ErrNumericOverflow, t)
		}
		if withTrace {
			trace = append(trace, TracePoint{TimeOffset: t, Temperature: temp})
		}
	}

	return &Result{FinalTemperature: temp, Trace: trace, Steps: steps}, nil
}

// Chain folds the single-shot integrator over a sequence of intervals: each
// interval's final temperature seeds the next one. It returns the final
// temperature of every interval in order.
//
// Chaining is not equivalent to one long run except in the limit of
// infinitesimal step size, because every segment restarts from a freshly
// rounded initial condition; both modes are deliberately exposed.
func Chain(initial float64, cond Conditions, intervals []Interval, step float64) ([]float64, error) {
	if len(intervals) == 0 {
		return nil, fmt.Errorf("%w: at least one interval required", ErrInvalidParameter)
	}

	finals := make([]float64, 0, len(intervals))
	temp := initial
	for _, iv := range intervals {
		res, err := Integrate(temp, cond, iv.Duration, step, false)
		if err != nil {
			return nil, fmt.Errorf("interval %d: %w", iv.Index, err)
		}
		temp = res.FinalTemperature
		finals = append(finals, temp)
	}
	return finals, nil
}

func validate(initial float64, cond Conditions, duration, step float64) error {
	switch {
	case duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0):
		return fmt.Errorf("%w: duration must be > 0, got %g", ErrInvalidParameter, duration)
	case step <= 0 || math.IsNaN(step):
		return fmt.Errorf("%w: step must be > 0, got %g", ErrInvalidParameter, step)
	case step > duration:
		return fmt.Errorf("%w: step %g exceeds duration %g", ErrInvalidParameter, step, duration)
	case cond.WindSpeed < 0 || math.IsNaN(cond.WindSpeed):
		return fmt.Errorf("%w: wind speed must be >= 0, got %g", ErrInvalidParameter, cond.WindSpeed)
	case cond.CurrentIntensity < 0 || math.IsNaN(cond.CurrentIntensity):
		return fmt.Errorf("%w: current intensity must be >= 0, got %g", ErrInvalidParameter, cond.CurrentIntensity)
	case math.IsNaN(initial) || math.IsInf(initial, 0):
		return fmt.Errorf("%w: initial temperature must be finite", ErrInvalidParameter)
	case math.IsNaN(cond.AmbientTemperature) || math.IsInf(cond.AmbientTemperature, 0):
		return fmt.Errorf("%w: ambient temperature must be finite", ErrInvalidParameter)
	}
	return nil
}
