package environment

import "time"

// mean accumulates an optional field across readings.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}

// AggregateReadings combines provider readings into a single Snapshot.
// Each numeric field is averaged over the providers that reported it; the
// condition is selected by majority, ignoring unknown.
func AggregateReadings(loc Location, readings []ProviderReading) Snapshot {
	if len(readings) == 0 {
		return Snapshot{
			Location:  loc,
			Timestamp: time.Now().UTC(),
			Condition: ConditionUnknown,
		}
	}

	var sun, flow, cloud mean

	conditionCounts := make(map[Condition]int)
	providers := make([]ProviderContribution, 0, len(readings))
	var newestTS time.Time

	for _, r := range readings {
		sun.add(r.SunHours)
		flow.add(r.FlowRateM3S)
		cloud.add(r.CloudPct)

		if r.Condition != "" && r.Condition != ConditionUnknown {
			conditionCounts[r.Condition]++
		}

		if r.Timestamp.After(newestTS) {
			newestTS = r.Timestamp
		}

		providers = append(providers, ProviderContribution{
			ProviderName: r.ProviderName,
			Timestamp:    r.Timestamp,
		})
	}

	// Pick majority condition; ties resolve to the first reported.
	bestCond := ConditionUnknown
	bestCount := 0
	for _, r := range readings {
		if count := conditionCounts[r.Condition]; count > bestCount {
			bestCount = count
			bestCond = r.Condition
		}
	}

	if newestTS.IsZero() {
		newestTS = time.Now().UTC()
	}

	return Snapshot{
		Location:    loc,
		Timestamp:   newestTS,
		SunHours:    sun.value(),
		FlowRateM3S: flow.value(),
		CloudPct:    cloud.value(),
		Condition:   bestCond,
		Providers:   providers,
	}
}
