// Package ptpmetrics tracks performance and operational statistics for
// open PTP sessions, replacing the teacher's hand-rolled atomic-counter
// Metrics type (metrics.go) with real Prometheus instruments — the
// teacher's category list (op counters, byte counters, error counters,
// latency histogram, session lifecycle) survives, only the storage
// mechanism changes.
package ptpmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a per-process collection of PTP transaction instruments.
// Construct with NewMetrics and register the result with a
// prometheus.Registerer (typically prometheus.DefaultRegisterer, or a
// private registry in tests).
type Metrics struct {
	TransactionsTotal   *prometheus.CounterVec
	ResponseCodesTotal  *prometheus.CounterVec
	BytesTransferred    *prometheus.CounterVec
	TransactionDuration *prometheus.HistogramVec
	SessionState        *prometheus.GaugeVec
	SessionsOpenedTotal prometheus.Counter
	SessionsBrokenTotal prometheus.Counter
}

// NewMetrics constructs every instrument. It does not register them;
// call Register (or reg.MustRegister(m.collectors()...) directly).
func NewMetrics() *Metrics {
	return &Metrics{
		TransactionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ptpfs",
			Name:      "transactions_total",
			Help:      "Total PTP transactions issued, by operation name.",
		}, []string{"operation"}),

		ResponseCodesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ptpfs",
			Name:      "response_codes_total",
			Help:      "Total PTP responses received, by operation name and response code.",
		}, []string{"operation", "response_code"}),

		BytesTransferred: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ptpfs",
			Name:      "bytes_transferred_total",
			Help:      "Total bytes moved over the bulk transport, by direction.",
		}, []string{"direction"}),

		TransactionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ptpfs",
			Name:      "transaction_duration_seconds",
			Help:      "Transaction duration from request emission to response receipt, by operation name.",
			Buckets:   []float64{.0001, .001, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		}, []string{"operation"}),

		SessionState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ptpfs",
			Name:      "session_state",
			Help:      "1 if the session identified by device_key is currently in the named state, 0 otherwise.",
		}, []string{"device_key", "state"}),

		SessionsOpenedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ptpfs",
			Name:      "sessions_opened_total",
			Help:      "Total sessions successfully opened.",
		}),

		SessionsBrokenTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ptpfs",
			Name:      "sessions_broken_total",
			Help:      "Total sessions that transitioned to the broken state.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.TransactionsTotal,
		m.ResponseCodesTotal,
		m.BytesTransferred,
		m.TransactionDuration,
		m.SessionState,
		m.SessionsOpenedTotal,
		m.SessionsBrokenTotal,
	}
}

// Register adds every instrument to reg. Safe to call once per
// Metrics/registry pair; a second call against the same registry
// returns prometheus's AlreadyRegisteredError.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordTransaction records one completed transaction: its operation
// name, the peer's response code (formatted as "0xNNNN"), and how long
// it took end to end.
func (m *Metrics) RecordTransaction(operation string, responseCode uint16, duration time.Duration) {
	m.TransactionsTotal.WithLabelValues(operation).Inc()
	m.ResponseCodesTotal.WithLabelValues(operation, formatResponseCode(responseCode)).Inc()
	m.TransactionDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordBytes records payload bytes moved in one direction ("in" or
// "out").
func (m *Metrics) RecordBytes(direction string, n int) {
	if n <= 0 {
		return
	}
	m.BytesTransferred.WithLabelValues(direction).Add(float64(n))
}

// RecordSessionOpened marks deviceKey as open and bumps the
// sessions-opened counter.
func (m *Metrics) RecordSessionOpened(deviceKey string) {
	m.SessionsOpenedTotal.Inc()
	m.setState(deviceKey, "open")
}

// RecordSessionClosed marks deviceKey as closed.
func (m *Metrics) RecordSessionClosed(deviceKey string) {
	m.setState(deviceKey, "closed")
}

// RecordSessionBroken marks deviceKey as broken and bumps the
// sessions-broken counter.
func (m *Metrics) RecordSessionBroken(deviceKey string) {
	m.SessionsBrokenTotal.Inc()
	m.setState(deviceKey, "broken")
}

func (m *Metrics) setState(deviceKey, state string) {
	for _, s := range []string{"open", "closed", "broken"} {
		v := 0.0
		if s == state {
			v = 1.0
		}
		m.SessionState.WithLabelValues(deviceKey, s).Set(v)
	}
}

func formatResponseCode(code uint16) string {
	const hexDigits = "0123456789abcdef"
	buf := [6]byte{'0', 'x', '0', '0', '0', '0'}
	for i := 0; i < 4; i++ {
		buf[5-i] = hexDigits[(code>>(4*i))&0xf]
	}
	return string(buf[:])
}
