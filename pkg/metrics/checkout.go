package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records payment submission outcomes and cart size.
type CheckoutMetrics struct {
	submitDuration *prometheus.HistogramVec
	attempts       *prometheus.CounterVec
	cartItems      *prometheus.GaugeVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	submitDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_submit_duration_seconds",
		Help:    "Duration of payment submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_payment_attempts",
		Help: "Payment submission attempts by outcome.",
	}, []string{"outcome"})
	cartItems := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cart_items",
		Help: "Current number of items per cart session.",
	}, []string{"session"})
	reg.MustRegister(submitDuration, attempts, cartItems)
	return &CheckoutMetrics{
		submitDuration: submitDuration,
		attempts:       attempts,
		cartItems:      cartItems,
	}
}

// ObserveSubmit records one payment submission with its outcome and duration.
func (c *CheckoutMetrics) ObserveSubmit(outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	label := normalizeLabel(outcome)
	if c.submitDuration != nil {
		c.submitDuration.WithLabelValues(label).Observe(duration.Seconds())
	}
	if c.attempts != nil {
		c.attempts.WithLabelValues(label).Inc()
	}
}

// SetCartItems tracks the live item count for a cart session.
func (c *CheckoutMetrics) SetCartItems(session string, count int) {
	if c == nil || c.cartItems == nil {
		return
	}
	c.cartItems.WithLabelValues(normalizeLabel(session)).Set(float64(count))
}

// DropCartSession removes the gauge series once a session goes away.
func (c *CheckoutMetrics) DropCartSession(session string) {
	if c == nil || c.cartItems == nil {
		return
	}
	c.cartItems.DeleteLabelValues(normalizeLabel(session))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
