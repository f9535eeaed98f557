package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "minimercado"

// Recorder owns its registry so tests can build as many as they like.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry            *prometheus.Registry
	salesTotal          *prometheus.CounterVec
	saleAmount          *prometheus.CounterVec
	purchasesTotal      prometheus.Counter
	purchaseAmount      prometheus.Counter
	cashMovements       *prometheus.CounterVec
	logins              *prometheus.CounterVec
	persistenceFailures *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		salesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_total",
			Help:      "Committed sales by payment method.",
		}, []string{"payment_method"}),
		saleAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sale_amount_total",
			Help:      "Sum of committed sale totals by payment method.",
		}, []string{"payment_method"}),
		purchasesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchases_total",
			Help:      "Committed supplier purchases.",
		}),
		purchaseAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchase_amount_total",
			Help:      "Sum of committed purchase totals.",
		}),
		cashMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cash_movements_total",
			Help:      "Recorded cash drawer movements by type.",
		}, []string{"type"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		persistenceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Failed writes to the backing store by collection.",
		}, []string{"collection"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.salesTotal,
		r.saleAmount,
		r.purchasesTotal,
		r.purchaseAmount,
		r.cashMovements,
		r.logins,
		r.persistenceFailures,
		r.httpDuration,
	)
	return r
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) SaleCommitted(method string, total decimal.Decimal) {
	if r == nil {
		return
	}
	r.salesTotal.WithLabelValues(method).Inc()
	r.saleAmount.WithLabelValues(method).Add(total.InexactFloat64())
}

func (r *Recorder) PurchaseCommitted(total decimal.Decimal) {
	if r == nil {
		return
	}
	r.purchasesTotal.Inc()
	r.purchaseAmount.Add(total.InexactFloat64())
}

func (r *Recorder) CashMovementRecorded(kind string) {
	if r == nil {
		return
	}
	r.cashMovements.WithLabelValues(kind).Inc()
}

func (r *Recorder) Login(ok bool) {
	if r == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	r.logins.WithLabelValues(result).Inc()
}

func (r *Recorder) PersistenceFailed(collection string) {
	if r == nil {
		return
	}
	r.persistenceFailures.WithLabelValues(collection).Inc()
}

func (r *Recorder) ObserveRequest(method string, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
