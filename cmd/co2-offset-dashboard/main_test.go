package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/co2-offset-dashboard/internal/compensation"
	"github.com/i474232898/co2-offset-dashboard/internal/offset"
)

func TestRootRegistersCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "import", "simulate"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestSimulateFlagValidation(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"missing environment flags", []string{"simulate", "--emission", "5"}, "required flag"},
		{"missing emission", []string{"simulate", "--sun-hours", "5", "--water-flow", "10"}, "--emission or --product"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := newRootCmd()
			root.SetArgs(tc.args)
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})

			err := root.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestSimulatePlain(t *testing.T) {
	t.Setenv("PACING_SHORT_INTERVAL", "1ms")
	t.Setenv("DB_PATH", t.TempDir()+"/catalog.db")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs([]string{"simulate", "--plain", "--emission", "1", "--trees", "10", "--sun-hours", "5", "--water-flow", "100"})
	root.SetOut(&out)

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), offset.MethodTree.Label())
	assert.Contains(t, out.String(), "tree 100%")
	assert.Contains(t, out.String(), "completed after")
}

func TestSimulateNothingToCompensate(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs([]string{"simulate", "--plain", "--emission", "0", "--sun-hours", "5", "--water-flow", "100"})
	root.SetOut(&out)

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "no CO2 emission to compensate")
}

func TestProgressLine(t *testing.T) {
	line := progressLine(compensation.Progress{
		Elapsed: "1 months 2 days",
		Percent: map[offset.Method]int{offset.MethodTree: 40, offset.MethodHydro: 3},
	})
	assert.Contains(t, line, "1 months 2 days")
	assert.Contains(t, line, "tree  40%")
	assert.Contains(t, line, "hydro   3%")
	assert.NotContains(t, line, "solar")
}
