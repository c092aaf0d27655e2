package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rematch "github.com/SimonDaKappa/go-rematch"
)

// gather returns the metric families of o by name.
func gather(t *testing.T, o *Observer) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := o.Registry().Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}
	return byName
}

// counterValue returns the value of the counter labelled with typeName.
func counterValue(mf *dto.MetricFamily, typeName string) float64 {
	if mf == nil {
		return 0
	}
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "type" && lp.GetValue() == typeName {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestObserver(t *testing.T) {
	t.Run("counts notifications", func(t *testing.T) {
		o := NewObserver(Config{})
		id := rematch.PatternID{Type: "Test", Variant: "B"}

		o.PatternCompiled(id, time.Millisecond, nil)
		o.PatternCompiled(rematch.PatternID{Type: "Bad"}, time.Millisecond, errors.New("boom"))
		o.PatternReused(id)
		o.PatternReused(id)

		families := gather(t, o)
		compiles := families["rematch_pattern_compiles_total"]
		assert.Equal(t, 1.0, counterValue(compiles, "Test"))
		assert.Equal(t, 1.0, counterValue(compiles, "Bad"))
		assert.Equal(t, 1.0, counterValue(families["rematch_pattern_compile_errors_total"], "Bad"))
		assert.Equal(t, 0.0, counterValue(families["rematch_pattern_compile_errors_total"], "Test"))
		assert.Equal(t, 2.0, counterValue(families["rematch_pattern_reuses_total"], "Test"))

		duration := families["rematch_pattern_compile_duration_seconds"]
		require.NotNil(t, duration)
		require.Len(t, duration.GetMetric(), 2)
		assert.Equal(t, uint64(1), duration.GetMetric()[0].GetHistogram().GetSampleCount())
	})

	t.Run("prefix", func(t *testing.T) {
		o := NewObserver(Config{Prefix: "logs"})
		o.PatternReused(rematch.PatternID{Type: "T"})

		families := gather(t, o)
		assert.Contains(t, families, "logs_pattern_reuses_total")
	})

	t.Run("wired to a registry", func(t *testing.T) {
		o := NewObserver(Config{})
		reg := rematch.NewPatternRegistry(rematch.PatternRegistryOpts{Observer: o})
		pattern := rematch.Patterns("Pair", "", `(\d+)`)[0]

		for i := 0; i < 3; i++ {
			_, err := reg.GetOrBuild(pattern)
			require.NoError(t, err)
		}

		families := gather(t, o)
		assert.Equal(t, 1.0, counterValue(families["rematch_pattern_compiles_total"], "Pair"))
		assert.Equal(t, 2.0, counterValue(families["rematch_pattern_reuses_total"], "Pair"))
	})
}

func TestObserver_WriteTextfile(t *testing.T) {
	o := NewObserver(Config{})
	o.PatternCompiled(rematch.PatternID{Type: "Test"}, time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "rematch.prom")
	require.NoError(t, o.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `rematch_pattern_compiles_total{type="Test"} 1`)
}
