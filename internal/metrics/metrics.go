// Package metrics - prometheus-метрики бота. Все методы безопасны для nil *Metrics,
// поэтому компоненты можно собирать и без метрик (например, в тестах).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "statusbot"

type Metrics struct {
	ticks        *prometheus.CounterVec
	tickDuration prometheus.Histogram
	lastTick     prometheus.Gauge
	servers      *prometheus.CounterVec
	queries      *prometheus.CounterVec
	messageOps   *prometheus.CounterVec
	records      prometheus.Gauge
	commands     *prometheus.CounterVec
}

// New создаёт коллекторы и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Scheduler ticks by result.",
		}, []string{"result"}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall time of one scheduler tick.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120, 300},
		}),
		lastTick: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_tick_timestamp_seconds",
			Help:      "Unix time of the last finished tick.",
		}),
		servers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "servers_reconciled_total",
			Help:      "Per-server reconciliation outcomes.",
		}, []string{"outcome"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Game server queries by game and result.",
		}, []string{"game", "result"}),
		messageOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "message_ops_total",
			Help:      "Discord message operations by kind and result.",
		}, []string{"op", "result"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "status_records",
			Help:      "Tracked status messages.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Slash command executions by command and result.",
		}, []string{"command", "result"}),
	}
	reg.MustRegister(m.ticks, m.tickDuration, m.lastTick, m.servers, m.queries, m.messageOps, m.records, m.commands)
	return m
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// TickDone: result - ok / aborted / interrupted.
func (m *Metrics) TickDone(res string, d time.Duration, at time.Time) {
	if m == nil {
		return
	}
	m.ticks.WithLabelValues(res).Inc()
	m.tickDuration.Observe(d.Seconds())
	m.lastTick.Set(float64(at.Unix()))
}

func (m *Metrics) ServerDone(outcome string) {
	if m == nil {
		return
	}
	m.servers.WithLabelValues(outcome).Inc()
}

func (m *Metrics) QueryDone(game string, ok bool) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(game, result(ok)).Inc()
}

func (m *Metrics) MessageOp(op string, err error) {
	if m == nil {
		return
	}
	m.messageOps.WithLabelValues(op, result(err == nil)).Inc()
}

func (m *Metrics) SetRecords(n int) {
	if m == nil {
		return
	}
	m.records.Set(float64(n))
}

func (m *Metrics) CommandDone(name string, err error) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(name, result(err == nil)).Inc()
}
