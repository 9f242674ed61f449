package compensation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/co2-offset-dashboard/internal/offset"
)

func TestDurationDays(t *testing.T) {
	days, err := DurationDays(100, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 200.0, days)

	_, err = DurationDays(100, 0)
	assert.ErrorIs(t, err, ErrUndefinedDuration)

	_, err = DurationDays(100, -1)
	assert.ErrorIs(t, err, ErrUndefinedDuration)

	_, err = DurationDays(100, math.NaN())
	assert.ErrorIs(t, err, ErrUndefinedDuration)
}

func TestTickInterval(t *testing.T) {
	p := DefaultPacing()

	assert.Equal(t, p.ShortInterval, p.TickInterval(500))
	assert.Equal(t, p.ShortInterval, p.TickInterval(720))

	prev := p.TickInterval(721)
	for _, days := range []float64{2000, 4000, 10000, 50000} {
		got := p.TickInterval(days)
		assert.Less(t, got, prev, "horizon %v", days)
		assert.Positive(t, got)
		prev = got
	}
}

func TestTickIntervalExponents(t *testing.T) {
	for _, exp := range []float64{1.6, 1.65, 1.7} {
		p := DefaultPacing()
		p.Exponent = exp
		require.NoError(t, p.Validate())

		want := time.Duration(2000 / math.Pow(2000, exp) * float64(time.Second))
		assert.Equal(t, want, p.TickInterval(2000), "exponent %v", exp)
	}
}

func TestPacingValidate(t *testing.T) {
	p := DefaultPacing()
	p.Exponent = 1
	assert.ErrorIs(t, p.Validate(), ErrInvalidPacing)

	p = DefaultPacing()
	p.ShortInterval = 0
	assert.ErrorIs(t, p.Validate(), ErrInvalidPacing)
}

func TestBuild(t *testing.T) {
	rates := offset.Rates{
		offset.MethodTree:  0.5,
		offset.MethodSolar: 2,
		offset.MethodHydro: 0.25,
	}

	s, err := Build(100, rates, DefaultPacing())
	require.NoError(t, err)

	require.Len(t, s.Durations, 3)
	days := map[offset.Method]float64{}
	for _, d := range s.Durations {
		assert.True(t, d.Available)
		days[d.Method] = d.Days
	}
	assert.Equal(t, 200.0, days[offset.MethodTree])
	assert.Equal(t, 50.0, days[offset.MethodSolar])
	assert.Equal(t, 400.0, days[offset.MethodHydro])
	assert.Equal(t, 400.0, s.MaxDays)
	assert.Equal(t, DefaultPacing().ShortInterval, s.TickInterval)
	assert.Equal(t, StatePending, s.State())
	assert.Empty(t, s.Skipped())
}

func TestBuildNothingToCompensate(t *testing.T) {
	s, err := Build(0, offset.Rates{offset.MethodTree: 1}, DefaultPacing())
	assert.ErrorIs(t, err, ErrNothingToCompensate)
	assert.Nil(t, s)
}

func TestBuildInvalidEmission(t *testing.T) {
	_, err := Build(-5, offset.Rates{offset.MethodTree: 1}, DefaultPacing())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildNoMethodAvailable(t *testing.T) {
	_, err := Build(10, offset.Rates{}, DefaultPacing())
	assert.ErrorIs(t, err, ErrNoMethodAvailable)
}

func TestBuildLongHorizonCompressesPacing(t *testing.T) {
	s, err := Build(2000, offset.Rates{offset.MethodTree: 1, offset.MethodSolar: 4, offset.MethodHydro: 2}, DefaultPacing())
	require.NoError(t, err)
	assert.Equal(t, 2000.0, s.MaxDays)
	assert.Less(t, s.TickInterval, DefaultPacing().ShortInterval)
}

// Sun 8h, one tree, 50 m³/s, 100 kg.
func TestScenarioAllMethods(t *testing.T) {
	rates, err := offset.ComputeRates(offset.EnvironmentalReading{SunHours: 8, NumTrees: 1, WaterFlowRate: 50})
	require.NoError(t, err)

	s, err := Build(100, rates, DefaultPacing())
	require.NoError(t, err)

	largest := 0.0
	for _, d := range s.Durations {
		require.True(t, d.Available, "method %s", d.Method)
		assert.False(t, math.IsInf(d.Days, 0))
		assert.Positive(t, d.Days)
		assert.InDelta(t, 100/rates[d.Method], d.Days, 1e-9)
		largest = math.Max(largest, d.Days)
	}
	assert.Equal(t, largest, s.MaxDays)
}

// No water flow: hydro is skipped, trees and solar animate to completion.
func TestScenarioHydroUnavailable(t *testing.T) {
	rates, err := offset.ComputeRates(offset.EnvironmentalReading{SunHours: 8, NumTrees: 1, WaterFlowRate: 0})
	require.NoError(t, err)
	require.Zero(t, rates[offset.MethodHydro])

	s, err := Build(1, rates, DefaultPacing())
	require.NoError(t, err)

	skipped := s.Skipped()
	require.Len(t, skipped, 1)
	assert.Equal(t, offset.MethodHydro, skipped[0].Method)
	assert.Contains(t, skipped[0].Reason, ErrUndefinedDuration.Error())

	var p Progress
	ticks := 0
	for !p.Done {
		p = s.Advance()
		ticks++
		require.LessOrEqual(t, ticks, 1000)
	}

	assert.Equal(t, StateCompleted, p.State)
	assert.Equal(t, int(math.Ceil(s.MaxDays)), ticks)
	assert.Equal(t, s.MaxDays, p.ElapsedDays)
	assert.Equal(t, 100, p.Percent[offset.MethodTree])
	assert.Equal(t, 100, p.Percent[offset.MethodSolar])
	_, hasHydro := p.Percent[offset.MethodHydro]
	assert.False(t, hasHydro)
}

func TestScenarioCancelMidAnimation(t *testing.T) {
	rates := offset.Rates{offset.MethodTree: 0.0274, offset.MethodSolar: 0.07268, offset.MethodHydro: 0.00695}
	s, err := Build(10, rates, DefaultPacing())
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		s.Advance()
	}
	require.True(t, s.Cancel())

	frozen := s.Snapshot()
	assert.True(t, frozen.Done)
	assert.Equal(t, StateCancelled, frozen.State)
	assert.ErrorIs(t, frozen.Err(), ErrCancelled)
	for m, pct := range frozen.Percent {
		assert.Less(t, pct, 100, "method %s", m)
	}
	assert.Equal(t, 14, frozen.Percent[offset.MethodTree])
	assert.Equal(t, 36, frozen.Percent[offset.MethodSolar])

	after := s.Advance()
	assert.True(t, after.Done)
	assert.Equal(t, frozen, after)
	assert.False(t, s.Cancel())
}

func TestAdvanceStateTransitions(t *testing.T) {
	s, err := Build(3, offset.Rates{offset.MethodTree: 1}, DefaultPacing())
	require.NoError(t, err)

	p := s.Advance()
	assert.Equal(t, StateRunning, p.State)
	assert.Equal(t, 1, p.Tick)
	assert.Equal(t, 33, p.Percent[offset.MethodTree])
	assert.Equal(t, "0 months 1 days", p.Elapsed)

	s.Advance()
	p = s.Advance()
	assert.Equal(t, StateCompleted, p.State)
	assert.NoError(t, p.Err())
	assert.True(t, p.Done)
	assert.Equal(t, 100, p.Percent[offset.MethodTree])

	again := s.Advance()
	assert.Equal(t, 3, again.Tick)
	assert.False(t, s.Cancel())
}

func TestMethodsFinishIndependently(t *testing.T) {
	s, err := Build(10, offset.Rates{offset.MethodTree: 1, offset.MethodSolar: 5}, DefaultPacing())
	require.NoError(t, err)

	var p Progress
	for i := 0; i < 2; i++ {
		p = s.Advance()
	}
	assert.Equal(t, 100, p.Percent[offset.MethodSolar])
	assert.Equal(t, 20, p.Percent[offset.MethodTree])
	assert.False(t, p.Done)
}

func TestFormatDays(t *testing.T) {
	tests := []struct {
		days float64
		want string
	}{
		{0, "0 months 0 days"},
		{29, "0 months 29 days"},
		{45, "1 months 15 days"},
		{365.5, "12 months 6 days"},
		{-3, "0 months 0 days"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDays(tt.days))
	}
}

func TestClaimSingleDriver(t *testing.T) {
	s, err := Build(10, offset.Rates{offset.MethodTree: 1}, DefaultPacing())
	require.NoError(t, err)
	assert.False(t, s.Claimed())

	p, err := s.Step()
	require.NoError(t, err)
	assert.Equal(t, 1, p.Tick)

	require.NoError(t, s.Claim())
	assert.True(t, s.Claimed())
	assert.Equal(t, StateRunning, s.State())
	assert.ErrorIs(t, s.Claim(), ErrAlreadyDriven)

	p, err = s.Step()
	assert.ErrorIs(t, err, ErrAlreadyDriven)
	assert.Equal(t, 1, p.Tick)

	assert.Equal(t, 2, s.Advance().Tick)
}

func TestClaimMovesPendingToRunning(t *testing.T) {
	s, err := Build(10, offset.Rates{offset.MethodTree: 1}, DefaultPacing())
	require.NoError(t, err)

	require.NoError(t, s.Claim())
	p := s.Snapshot()
	assert.Equal(t, StateRunning, p.State)
	assert.Zero(t, p.Tick)
	assert.False(t, p.Done)
}
