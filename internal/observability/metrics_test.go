package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRollAndImpact(t *testing.T) {
	m := NewMetricsForTesting()

	m.ObserveRoll("STONE")
	m.ObserveRoll("STONE")
	m.ObserveRoll("IRON")
	m.ObserveImpact("crater", 478)
	m.ObserveImpact("airburst", 0.02)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MeteorsRolled.WithLabelValues("STONE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MeteorsRolled.WithLabelValues("IRON")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImpactsComputed.WithLabelValues("crater")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImpactsComputed.WithLabelValues("airburst")))
}

func TestCollectorsRegisterCleanly(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsForTesting()

	for _, c := range m.collectors() {
		require.NoError(t, reg.Register(c))
	}
	assert.Len(t, m.collectors(), 13)
}
