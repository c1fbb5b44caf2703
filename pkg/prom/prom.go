package prom

import (
	"errors"
	"sync"

	xhttp "github.com/kisanpay/kisanpay/pkg/http"
	"github.com/kisanpay/kisanpay/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	SystemLedger  = "ledger"
	SystemBilling = "billing"
)

var durationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}

type collectors struct {
	ledgerOperations *prometheus.CounterVec
	ledgerDuration   *prometheus.HistogramVec
	bills            *prometheus.CounterVec
	eventsFailed     prometheus.Counter
	streamBacklog    *prometheus.GaugeVec
}

var (
	mu      sync.RWMutex
	current *collectors
)

// MetricSystemEnabled reports whether Create has run. The helpers below are
// no-ops until then, so packages can record metrics unconditionally.
var MetricSystemEnabled = false

// Create registers the ledger and billing collectors under nameSpace with
// env and instance as constant labels. Calling it again reuses collectors
// that are already registered.
func Create(host string, env string, nameSpace string) error {
	labels := prometheus.Labels{"env": env, "instance": host}
	c := &collectors{
		ledgerOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: nameSpace, Subsystem: SystemLedger, Name: "operations_total",
			Help:        "Ledger operations by operation and outcome.",
			ConstLabels: labels,
		}, []string{"operation", "outcome"}),
		ledgerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: nameSpace, Subsystem: SystemLedger, Name: "operation_duration_seconds",
			Help:        "Latency of ledger operations.",
			ConstLabels: labels,
			Buckets:     durationBuckets,
		}, []string{"operation"}),
		bills: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: nameSpace, Subsystem: SystemBilling, Name: "bills_total",
			Help:        "Billing rows written by direction.",
			ConstLabels: labels,
		}, []string{"direction"}),
		eventsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: nameSpace, Subsystem: SystemBilling, Name: "events_failed_total",
			Help:        "Ledger events the billing processor failed to handle.",
			ConstLabels: labels,
		}),
		streamBacklog: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: nameSpace, Subsystem: SystemBilling, Name: "stream_messages",
			Help:        "Entries on the ledger event stream by state.",
			ConstLabels: labels,
		}, []string{"state"}),
	}

	var err error
	c.ledgerOperations = register(c.ledgerOperations, &err)
	c.ledgerDuration = register(c.ledgerDuration, &err)
	c.bills = register(c.bills, &err)
	c.eventsFailed = register(c.eventsFailed, &err)
	c.streamBacklog = register(c.streamBacklog, &err)
	if err != nil {
		return err
	}

	mu.Lock()
	current = c
	MetricSystemEnabled = true
	mu.Unlock()
	return nil
}

// register adds c to the default registry, returning the collector that is
// already registered when an identical one exists. The first error is kept.
func register[C prometheus.Collector](c C, errp *error) C {
	err := prometheus.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	if *errp == nil {
		*errp = err
	}
	return c
}

func get() *collectors {
	mu.RLock()
	defer mu.RUnlock()
	if !MetricSystemEnabled {
		return nil
	}
	return current
}

// ListenAndServer serves the default registry on url. It blocks.
func ListenAndServer(port string, url string) {
	hh := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	s := xhttp.CreateServer()
	s.GET(url, hh)
	logger.Info("[metrics-server] listening...", "port", port, "url", url)
	if err := s.ListenAndServe(port); err != nil {
		logger.Error("[metrics-server] http listen error", "error", err)
	}
}

// ObserveLedgerOperation counts one ledger operation by outcome and records its latency.
func ObserveLedgerOperation(operation, outcome string, seconds float64) {
	c := get()
	if c == nil {
		return
	}
	c.ledgerOperations.WithLabelValues(operation, outcome).Inc()
	c.ledgerDuration.WithLabelValues(operation).Observe(seconds)
}

func AddBills(direction string, n float64) {
	if c := get(); c != nil {
		c.bills.WithLabelValues(direction).Add(n)
	}
}

func IncBillingEventFailed() {
	if c := get(); c != nil {
		c.eventsFailed.Inc()
	}
}

// SetStreamBacklog publishes the ledger stream's total, pending and
// dead-lettered entry counts.
func SetStreamBacklog(total, pending, deadLettered int64) {
	c := get()
	if c == nil {
		return
	}
	c.streamBacklog.WithLabelValues("total").Set(float64(total))
	c.streamBacklog.WithLabelValues("pending").Set(float64(pending))
	c.streamBacklog.WithLabelValues("dead_lettered").Set(float64(deadLettered))
}
