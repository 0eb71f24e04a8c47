package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "profile_directory"

// Reconciler collects reconciler measurements. It implements reconcile.Observer.
type Reconciler struct {
	events           *prometheus.CounterVec
	fetches          *prometheus.CounterVec
	subscriptionLost prometheus.Counter
	size             prometheus.Gauge
}

// NewReconciler creates the reconciler collectors and registers them with reg.
func NewReconciler(reg prometheus.Registerer) *Reconciler {
	m := &Reconciler{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Change events received, by outcome (applied, queued, dropped).",
		}, []string{"outcome"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Bulk fetches of public profiles, by result.",
		}, []string{"result"}),
		subscriptionLost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscription_lost_total",
			Help:      "Realtime subscriptions that failed.",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "public_profiles",
			Help:      "Profiles currently in the reconciled public list.",
		}),
	}
	reg.MustRegister(m.events, m.fetches, m.subscriptionLost, m.size)
	return m
}

// ObserveEvent records the outcome of one change event.
func (m *Reconciler) ObserveEvent(outcome string) {
	m.events.WithLabelValues(outcome).Inc()
}

// ObserveFetch records the result of a bulk fetch.
func (m *Reconciler) ObserveFetch(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.fetches.WithLabelValues(result).Inc()
}

// ObserveSubscriptionLost records a failed subscription.
func (m *Reconciler) ObserveSubscriptionLost() {
	m.subscriptionLost.Inc()
}

// ObserveSize records the list size.
func (m *Reconciler) ObserveSize(n int) {
	m.size.Set(float64(n))
}

// Handler exposes the registry in the Prometheus text format as a Fiber handler.
func Handler(gatherer prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
