// Package metrics exposes Prometheus instruments for the settlement core.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics captures settlement, invoicing, and transfer health signals.
type EngineMetrics struct {
	settlements       *prometheus.CounterVec
	invoicesIssued    *prometheus.CounterVec
	transferDecisions *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

var (
	engineMetricsOnce sync.Once
	engineMetrics     *EngineMetrics
)

// Engine returns the singleton metrics registry.
func Engine() *EngineMetrics {
	engineMetricsOnce.Do(func() {
		engineMetrics = newEngineMetrics(prometheus.DefaultRegisterer)
	})
	return engineMetrics
}

// ResetForTest resets the singleton so tests get fresh instruments.
func ResetForTest() {
	engineMetricsOnce = sync.Once{}
	engineMetrics = nil
}

func newEngineMetrics(registerer prometheus.Registerer) *EngineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &EngineMetrics{
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gshop_settlements_total",
			Help: "Settlement attempts by result.",
		}, []string{"result"}),
		invoicesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gshop_invoices_issued_total",
			Help: "Invoices issued by type.",
		}, []string{"type"}),
		transferDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gshop_transfer_decisions_total",
			Help: "Transfer limit checks by decision and denial reason.",
		}, []string{"decision", "reason"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gshop_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	for _, collector := range []prometheus.Collector{
		m.settlements, m.invoicesIssued, m.transferDecisions, m.httpDuration,
	} {
		if err := registerer.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}
	return m
}

func (m *EngineMetrics) IncSettlement(result string) {
	m.settlements.WithLabelValues(result).Inc()
}

func (m *EngineMetrics) IncInvoiceIssued(invoiceType string) {
	m.invoicesIssued.WithLabelValues(invoiceType).Inc()
}

func (m *EngineMetrics) IncTransferDecision(decision, reason string) {
	if reason == "" {
		reason = "none"
	}
	m.transferDecisions.WithLabelValues(decision, reason).Inc()
}

// GinMiddleware records request latency per route.
func GinMiddleware() gin.HandlerFunc {
	m := Engine()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.httpDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
