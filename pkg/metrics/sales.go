package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SaleMetrics records commit outcomes for the sale committer.
type SaleMetrics struct {
	committed *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	amount    *prometheus.HistogramVec
}

// NewSaleMetrics registers the sale metrics on the provided registerer.
func NewSaleMetrics(reg prometheus.Registerer) *SaleMetrics {
	if reg == nil {
		return &SaleMetrics{}
	}
	committed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_committed_total",
		Help: "Sales that passed validation and were durably recorded.",
	}, []string{"shop"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_rejected_total",
		Help: "Sale commits rejected during validation, by reason.",
	}, []string{"shop", "reason"})
	amount := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sale_amount",
		Help:    "Total amount of committed sales.",
		Buckets: prometheus.ExponentialBuckets(10, 2.5, 8),
	}, []string{"shop"})
	reg.MustRegister(committed, rejected, amount)
	return &SaleMetrics{
		committed: committed,
		rejected:  rejected,
		amount:    amount,
	}
}

// ObserveCommit records a successful commit and its total amount.
func (s *SaleMetrics) ObserveCommit(shop string, amount float64) {
	if s == nil || s.committed == nil {
		return
	}
	s.committed.WithLabelValues(normalizeLabel(shop)).Inc()
	s.amount.WithLabelValues(normalizeLabel(shop)).Observe(amount)
}

// IncRejected increments the rejection counter for the given reason.
func (s *SaleMetrics) IncRejected(shop, reason string) {
	if s == nil || s.rejected == nil {
		return
	}
	s.rejected.WithLabelValues(normalizeLabel(shop), normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
