package ptpmetrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 16)
	c.Collect(ch)
	close(ch)
	var total float64
	for m := range ch {
		var pb dto.Metric
		require.NoError(t, m.Write(&pb))
		if pb.Counter != nil {
			total += pb.Counter.GetValue()
		}
	}
	return total
}

func TestNewMetrics_RegistersWithoutError(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))
}

func TestRecordTransaction_IncrementsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordTransaction("GetDeviceInfo", 0x2001, 5*time.Millisecond)
	m.RecordTransaction("GetDeviceInfo", 0x2001, 7*time.Millisecond)
	m.RecordTransaction("DeleteObject", 0x200d, time.Millisecond)

	assert.Equal(t, float64(3), counterValue(t, m.TransactionsTotal))
	assert.Equal(t, float64(2), counterValue(t, m.ResponseCodesTotal.WithLabelValues("GetDeviceInfo", "0x2001")))
	assert.Equal(t, float64(1), counterValue(t, m.ResponseCodesTotal.WithLabelValues("DeleteObject", "0x200d")))
}

func TestRecordBytes_IgnoresNonPositive(t *testing.T) {
	m := NewMetrics()
	m.RecordBytes("in", 1024)
	m.RecordBytes("in", 0)
	m.RecordBytes("out", -5)

	assert.Equal(t, float64(1024), counterValue(t, m.BytesTransferred.WithLabelValues("in")))
	assert.Equal(t, float64(0), counterValue(t, m.BytesTransferred.WithLabelValues("out")))
}

func TestSessionLifecycle_UpdatesStateGauge(t *testing.T) {
	m := NewMetrics()
	m.RecordSessionOpened("bus1/addr2")

	openGauge := m.SessionState.WithLabelValues("bus1/addr2", "open")
	closedGauge := m.SessionState.WithLabelValues("bus1/addr2", "closed")
	assertGauge(t, openGauge, 1)
	assertGauge(t, closedGauge, 0)

	m.RecordSessionBroken("bus1/addr2")
	assertGauge(t, m.SessionState.WithLabelValues("bus1/addr2", "broken"), 1)
	assertGauge(t, openGauge, 0)
	assert.Equal(t, float64(1), counterValue(t, m.SessionsBrokenTotal))
}

func assertGauge(t *testing.T, g prometheus.Gauge, want float64) {
	t.Helper()
	var pb dto.Metric
	require.NoError(t, g.Write(&pb))
	assert.Equal(t, want, pb.Gauge.GetValue())
}
