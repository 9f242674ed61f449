package environment

import (
	"fmt"
	"time"

	"github.com/i474232898/co2-offset-dashboard/internal/offset"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Location represents a place for which readings are tracked.
// City/Country identify it; Lat/Lon are required by coordinate-based providers.
type Location struct {
	City    string   `json:"city"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return l.City + ":" + l.Country
}

// Snapshot is the aggregated environmental view at a point in time.
// Optional fields are nil when no provider reported them.
type Snapshot struct {
	Location    Location  `json:"location"`
	Timestamp   time.Time `json:"timestamp"` // always UTC
	SunHours    *float64  `json:"sunHours,omitempty"`
	FlowRateM3S *float64  `json:"flowRateM3s,omitempty"`
	CloudPct    *float64  `json:"cloudPercent,omitempty"`
	Condition   Condition `json:"condition"`

	// Providers contributing to this snapshot.
	Providers []ProviderContribution `json:"providers,omitempty"`
}

// ProviderContribution describes data coming from a single provider used in aggregation.
type ProviderContribution struct {
	ProviderName string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`
}

// Reading converts the snapshot into an offset model input for numTrees trees.
func (s Snapshot) Reading(numTrees int) (offset.EnvironmentalReading, error) {
	if s.SunHours == nil {
		return offset.EnvironmentalReading{}, fmt.Errorf("%w: no sunshine data for %s", ErrIncompleteReading, s.Location.Key())
	}
	if s.FlowRateM3S == nil {
		return offset.EnvironmentalReading{}, fmt.Errorf("%w: no river flow data for %s", ErrIncompleteReading, s.Location.Key())
	}
	return offset.EnvironmentalReading{
		SunHours:      *s.SunHours,
		NumTrees:      numTrees,
		WaterFlowRate: *s.FlowRateM3S,
	}, nil
}
