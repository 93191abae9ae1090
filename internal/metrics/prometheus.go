package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Collector records ledger operation outcomes. A nil *Collector is valid
// and records nothing.
type Collector struct {
	registry           *prometheus.Registry
	operationsTotal    *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	accountBalance     *prometheus.GaugeVec
	ledgerEntriesTotal *prometheus.CounterVec
	logger             *zap.Logger
}

func NewCollector(logger *zap.Logger) *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		operationsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Total number of ledger operations by outcome",
		}, []string{"operation", "outcome"}),
		operationDuration: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_operation_duration_seconds",
			Help:    "Time taken to run a ledger operation",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		accountBalance: promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
			Name: "ledger_account_balance",
			Help: "Last observed account balance",
		}, []string{"account_number"}),
		ledgerEntriesTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_entries_appended_total",
			Help: "Total number of ledger entries appended by type",
		}, []string{"type"}),
		logger: logger,
	}
}

// RecordOperation counts one finished operation under its outcome kind
func (c *Collector) RecordOperation(operation, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.operationsTotal.WithLabelValues(operation, outcome).Inc()
	c.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (c *Collector) RecordEntry(entryType string) {
	if c == nil {
		return
	}
	c.ledgerEntriesTotal.WithLabelValues(entryType).Inc()
}

// UpdateAccountBalance exports a balance; the gauge is a float so it is
// for dashboards only, never for reconciliation.
func (c *Collector) UpdateAccountBalance(accountNumber string, balance decimal.Decimal) {
	if c == nil {
		return
	}
	c.accountBalance.WithLabelValues(accountNumber).Set(balance.InexactFloat64())
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) StartServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		c.logger.Info("Starting metrics server", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	return server
}

func (c *Collector) Shutdown(ctx context.Context, server *http.Server) error {
	if server == nil {
		return nil
	}
	err := server.Shutdown(ctx)
	c.logger.Info("Metrics server shutdown complete")
	return err
}
