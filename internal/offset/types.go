package offset

// Method identifies a compensation method.
type Method string

const (
	MethodTree  Method = "tree"
	MethodSolar Method = "solar"
	MethodHydro Method = "hydro"
)

// Methods returns every compensation method in display order.
func Methods() []Method {
	return []Method{MethodTree, MethodSolar, MethodHydro}
}

// Label returns a human-readable name for the method.
func (m Method) Label() string {
	switch m {
	case MethodTree:
		return "Trees"
	case MethodSolar:
		return "One Solar Panel (1.767 x 1.041)"
	case MethodHydro:
		return "Hydro"
	default:
		return string(m)
	}
}

// EnvironmentalReading is an immutable snapshot of the inputs for one computation pass.
type EnvironmentalReading struct {
	SunHours      float64 `json:"sunHours"`      // hours/day of sunlight
	NumTrees      int     `json:"numTrees"`      // planted trees
	WaterFlowRate float64 `json:"waterFlowRate"` // river discharge in m³/s
}

// Rates maps each method to its daily CO2 offset in kg/day.
type Rates map[Method]float64
