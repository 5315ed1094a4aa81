package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Checkout outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Marketplace records checkout, fulfillment and ledger activity.
type Marketplace struct {
	checkouts       *prometheus.CounterVec
	orderTotal      prometheus.Histogram
	itemStatus      *prometheus.CounterVec
	withdrawals     *prometheus.CounterVec
	sellerDecisions *prometheus.CounterVec
	commissions     prometheus.Counter
}

// NewMarketplace registers the marketplace metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewMarketplace(reg prometheus.Registerer) *Marketplace {
	if reg == nil {
		return &Marketplace{}
	}
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_total",
		Help: "Checkout attempts by outcome and customer kind.",
	}, []string{"outcome", "customer"})
	orderTotal := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_total_amount",
		Help:    "Grand total of placed orders.",
		Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 25000, 50000},
	})
	itemStatus := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_item_status_updates_total",
		Help: "Line item status updates by new status.",
	}, []string{"status"})
	withdrawals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "withdrawal_events_total",
		Help: "Withdrawal requests and decisions by status.",
	}, []string{"status"})
	sellerDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "seller_decisions_total",
		Help: "Seller application decisions by result.",
	}, []string{"status"})
	commissions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "referral_commissions_accrued_total",
		Help: "Referral commissions appended to a referrer ledger.",
	})
	reg.MustRegister(checkouts, orderTotal, itemStatus, withdrawals, sellerDecisions, commissions)
	return &Marketplace{
		checkouts:       checkouts,
		orderTotal:      orderTotal,
		itemStatus:      itemStatus,
		withdrawals:     withdrawals,
		sellerDecisions: sellerDecisions,
		commissions:     commissions,
	}
}

// ObserveCheckout counts a checkout attempt.
func (m *Marketplace) ObserveCheckout(outcome string, guest bool) {
	if m == nil || m.checkouts == nil {
		return
	}
	customer := "member"
	if guest {
		customer = "guest"
	}
	m.checkouts.WithLabelValues(normalizeLabel(outcome), customer).Inc()
}

// ObserveOrderTotal records the grand total of a placed order.
func (m *Marketplace) ObserveOrderTotal(total decimal.Decimal) {
	if m == nil || m.orderTotal == nil {
		return
	}
	m.orderTotal.Observe(total.InexactFloat64())
}

// IncItemStatus counts a line item status update.
func (m *Marketplace) IncItemStatus(status string) {
	if m == nil || m.itemStatus == nil {
		return
	}
	m.itemStatus.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncWithdrawal counts a withdrawal request or decision.
func (m *Marketplace) IncWithdrawal(status string) {
	if m == nil || m.withdrawals == nil {
		return
	}
	m.withdrawals.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncSellerDecision counts an admin decision on a seller application.
func (m *Marketplace) IncSellerDecision(status string) {
	if m == nil || m.sellerDecisions == nil {
		return
	}
	m.sellerDecisions.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncCommission counts an accrued referral commission.
func (m *Marketplace) IncCommission() {
	if m == nil || m.commissions == nil {
		return
	}
	m.commissions.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
