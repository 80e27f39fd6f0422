package server

import (
	"newbank/internal/bank"
	"newbank/internal/command"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 為伺服器的 Prometheus 指標。每個 Server 使用自己的 registry，測試之間互不干擾。
type Metrics struct {
	registry    *prometheus.Registry
	commands    *prometheus.CounterVec
	connections prometheus.Gauge
	accepted    prometheus.Counter
}

func newMetrics(b *bank.Bank) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newbank",
			Name:      "commands_total",
			Help:      "Commands executed, by verb and outcome.",
		}, []string{"verb", "outcome"}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "newbank",
			Name:      "connections_active",
			Help:      "Client connections currently open.",
		}),
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "newbank",
			Name:      "connections_accepted_total",
			Help:      "Client connections accepted since start.",
		}),
	}
	customers := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "newbank",
		Name:      "customers",
		Help:      "Registered customers.",
	}, func() float64 { return float64(b.Customers()) })

	m.registry.MustRegister(m.commands, m.connections, m.accepted, customers)
	return m
}

// observe 實作 command.Observer。
func (m *Metrics) observe(v command.Verb, ok bool) {
	outcome := "fail"
	if ok {
		outcome = "success"
	}
	m.commands.WithLabelValues(v.String(), outcome).Inc()
}

// Registry 回傳底層 registry，供測試或外部匯出使用。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
