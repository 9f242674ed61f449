package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/co2-offset-dashboard/internal/compensation"
	"github.com/i474232898/co2-offset-dashboard/internal/offset"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.FetchInterval)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 96, cfg.StoreMaxHistory)
	assert.Equal(t, 10, cfg.DefaultTrees)
	assert.Equal(t, "2135", cfg.HydroStation)
	assert.Equal(t, offset.DefaultParams(), cfg.Offset)
	assert.Equal(t, compensation.DefaultPacing(), cfg.Pacing)
	require.NotNil(t, cfg.Location.Lat)
	assert.Equal(t, "Bern", cfg.Location.City)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PERFORMANCE_RATIO", "0.75")
	t.Setenv("WHEEL_WIDTH_M", "25")
	t.Setenv("PACING_EXPONENT", "1.7")
	t.Setenv("PACING_SHORT_INTERVAL", "100ms")
	t.Setenv("LOCATION_CITY", "Basel")
	t.Setenv("LOCATION_LAT", "47.56")
	t.Setenv("LOCATION_LON", "7.59")
	t.Setenv("DEFAULT_TREES", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.75, cfg.Offset.PerformanceRatio)
	assert.Equal(t, 25.0, cfg.Offset.WheelWidthM)
	assert.Equal(t, 1.7, cfg.Pacing.Exponent)
	assert.Equal(t, 100*time.Millisecond, cfg.Pacing.ShortInterval)
	assert.Equal(t, 47.56, *cfg.Location.Lat)
	assert.Equal(t, 3, cfg.DefaultTrees)
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"FETCH_INTERVAL":    "soon",
		"PERFORMANCE_RATIO": "2",
		"PACING_EXPONENT":   "0.9",
		"LOCATION_LAT":      "47.1",
		"DEFAULT_TREES":     "-4",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
