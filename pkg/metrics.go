package litex

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vilterp/litex/pkg/lang"
)

type metrics struct {
	registry *prometheus.Registry

	// Counters
	sessionsStarted prometheus.CounterFunc
	statements      *prometheus.CounterVec

	// Gauges
	openSessions  prometheus.GaugeFunc
	storedEntries prometheus.GaugeFunc

	// Latency
	statementLatency *prometheus.SummaryVec
}

var _ lang.Observer = &metrics{}

func newMetrics(engine *Engine) *metrics {
	m := &metrics{
		sessionsStarted: prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "litex_sessions_started",
				Help: "number of sessions started over the lifetime of this process",
			},
			func() float64 {
				engine.mu.Lock()
				defer engine.mu.Unlock()
				return float64(engine.mu.sessionsStarted)
			},
		),
		statements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "litex_statements_total",
				Help: "top-level statements executed, by kind and verdict",
			},
			[]string{"kind", "verdict"},
		),
		openSessions: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "litex_open_sessions",
				Help: "number of sessions currently open",
			},
			func() float64 {
				engine.mu.Lock()
				defer engine.mu.Unlock()
				return float64(len(engine.mu.sessions))
			},
		),
		storedEntries: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "litex_stored_entries",
				Help: "fact entries stored across the root environments of open sessions",
			},
			func() float64 {
				engine.mu.Lock()
				defer engine.mu.Unlock()
				count := 0
				for _, session := range engine.mu.sessions {
					count += session.StoredEntries()
				}
				return float64(count)
			},
		),
		statementLatency: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name:       "litex_statement_latency_ns",
				Help:       "latency to execute a top-level statement, including its checks",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{"kind"},
		),
	}
	m.registry = prometheus.NewPedanticRegistry()
	reg := m.registry

	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(collectors.NewGoCollector())

	reg.MustRegister(m.sessionsStarted)
	reg.MustRegister(m.statements)
	reg.MustRegister(m.openSessions)
	reg.MustRegister(m.storedEntries)
	reg.MustRegister(m.statementLatency)
	return m
}

func (m *metrics) StatementExecuted(kind string, verdict lang.Verdict, elapsed time.Duration) {
	m.statements.WithLabelValues(kind, verdict.String()).Inc()
	m.statementLatency.WithLabelValues(kind).Observe(float64(elapsed.Nanoseconds()))
}
