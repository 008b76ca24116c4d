package thermal

import "math"

// Conditions holds the ambient environment of a cable during a simulation.
// They stay constant for the whole integration window.
type Conditions struct {
	AmbientTemperature float64 // °C
	WindSpeed          float64 // m/s
	CurrentIntensity   float64 // A
}

// WindTerm returns the dimensionless cooling coefficient contributed by wind.
func WindTerm(windSpeed float64) float64 {
	return (windSpeed*windSpeed/1600)*0.4 + 0.1
}

// CurrentTerm returns the temperature rise (°C) above ambient contributed by
// the electrical current at equilibrium.
func CurrentTerm(currentIntensity float64) float64 {
	return (math.Pow(currentIntensity, 1.4) / 73785) * 130
}

// Derivative returns the instantaneous rate of change of cable temperature
// (°C/s). The model is a linear relaxation toward the equilibrium temperature
// ambient + CurrentTerm, with a rate governed by WindTerm/60.
//
// The function is pure and performs no validation; callers are responsible
// for rejecting physically invalid inputs.
func Derivative(cableTemp float64, cond Conditions) float64 {
	return -(1.0 / 60.0) * WindTerm(cond.WindSpeed) *
		(cableTemp - cond.AmbientTemperature - CurrentTerm(cond.CurrentIntensity))
}

// Equilibrium returns the temperature the cable converges to as the
// integration duration grows without bound.
func Equilibrium(cond Conditions) float64 {
	return cond.AmbientTemperature + CurrentTerm(cond.CurrentIntensity)
}
