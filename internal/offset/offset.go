package offset

import (
	"fmt"
	"math"
)

// Params holds the tunable physical assumptions of the model.
type Params struct {
	// PerformanceRatio scales solar and hydro output linearly.
	PerformanceRatio float64
	// WheelWidthM is the assumed river width the discharge is spread over.
	WheelWidthM float64
}

// DefaultParams returns the documented default assumptions.
func DefaultParams() Params {
	return Params{
		PerformanceRatio: DefaultPerformanceRatio,
		WheelWidthM:      DefaultWheelWidthM,
	}
}

// Validate reports whether the parameters are physically meaningful.
func (p Params) Validate() error {
	if !(p.PerformanceRatio > 0 && p.PerformanceRatio <= 1) {
		return fmt.Errorf("%w: performance ratio %v not in (0, 1]", ErrInvalidParams, p.PerformanceRatio)
	}
	if !(p.WheelWidthM > 0) || math.IsInf(p.WheelWidthM, 0) {
		return fmt.Errorf("%w: wheel width %v must be positive", ErrInvalidParams, p.WheelWidthM)
	}
	return nil
}

// Solar returns the kg CO2/day offset by one panel for the given hours of sunlight.
func (p Params) Solar(sunHours float64) (float64, error) {
	if err := checkInput("sun hours", sunHours); err != nil {
		return 0, err
	}
	powerKWh := round(sunHours * PanelWatts * p.PerformanceRatio / 1000)
	return round(powerKWh * GridEmissionFactor), nil
}

// Hydro returns the kg CO2/day offset by a 1 m water wheel for a river discharge in m³/s.
func (p Params) Hydro(flowRate float64) (float64, error) {
	if err := checkInput("water flow rate", flowRate); err != nil {
		return 0, err
	}
	effectiveFlow := flowRate / p.WheelWidthM
	powerW := round(NetHead * effectiveFlow * Gravity * p.PerformanceRatio)
	kWhPerDay := powerW * HoursPerDay / 1000
	return round(kWhPerDay * GridEmissionFactor), nil
}

// Tree returns the kg CO2/day absorbed by numTrees trees.
func Tree(numTrees int) (float64, error) {
	if numTrees < 0 {
		return 0, fmt.Errorf("%w: number of trees %d is negative", ErrInvalidInput, numTrees)
	}
	return round(float64(numTrees) * TreeDailyOffset), nil
}

// Solar computes the solar offset with DefaultParams.
func Solar(sunHours float64) (float64, error) {
	return DefaultParams().Solar(sunHours)
}

// Hydro computes the hydro offset with DefaultParams.
func Hydro(flowRate float64) (float64, error) {
	return DefaultParams().Hydro(flowRate)
}

// ComputeRates validates the reading and returns the daily offset of every method.
// Rates are always derived from the reading passed in; nothing is cached.
func (p Params) ComputeRates(r EnvironmentalReading) (Rates, error) {
	solar, err := p.Solar(r.SunHours)
	if err != nil {
		return nil, err
	}
	tree, err := Tree(r.NumTrees)
	if err != nil {
		return nil, err
	}
	hydro, err := p.Hydro(r.WaterFlowRate)
	if err != nil {
		return nil, err
	}
	return Rates{
		MethodTree:  tree,
		MethodSolar: solar,
		MethodHydro: hydro,
	}, nil
}

// ComputeRates computes all rates with DefaultParams.
func ComputeRates(r EnvironmentalReading) (Rates, error) {
	return DefaultParams().ComputeRates(r)
}

func checkInput(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s is not a finite number", ErrInvalidInput, name)
	}
	if v < 0 {
		return fmt.Errorf("%w: %s %v is negative", ErrInvalidInput, name, v)
	}
	return nil
}

func round(v float64) float64 {
	scale := math.Pow(10, decimals)
	return math.Round(v*scale) / scale
}
