package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
)

func TestMarketplaceExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMarketplace(reg)

	m.ObserveCheckout(OutcomeSuccess, true)
	m.ObserveCheckout(OutcomeSuccess, true)
	m.ObserveCheckout(OutcomeRejected, false)
	m.ObserveOrderTotal(decimal.RequireFromString("170.00"))
	m.IncItemStatus("shipped")
	m.IncWithdrawal("pending")
	m.IncSellerDecision("approved")
	m.IncCommission()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "checkout_total", map[string]string{"outcome": "success", "customer": "guest"}); err != nil {
		t.Fatalf("fetch checkout: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 guest successes, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "checkout_total", map[string]string{"outcome": "rejected", "customer": "member"}); err != nil || got != 1 {
		t.Fatalf("expected 1 member rejection, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "order_item_status_updates_total", map[string]string{"status": "shipped"}); err != nil || got != 1 {
		t.Fatalf("expected shipped=1, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "withdrawal_events_total", map[string]string{"status": "pending"}); err != nil || got != 1 {
		t.Fatalf("expected pending withdrawal=1, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "seller_decisions_total", map[string]string{"status": "approved"}); err != nil || got != 1 {
		t.Fatalf("expected approved decision=1, got %f err=%v", got, err)
	}

	hist := findMetricFamily(mfs, "order_total_amount")
	if hist == nil || len(hist.GetMetric()) != 1 {
		t.Fatalf("order total histogram missing")
	}
	if sum := hist.GetMetric()[0].GetHistogram().GetSampleSum(); sum != 170 {
		t.Fatalf("expected histogram sum 170, got %f", sum)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	m := NewMarketplace(nil)
	m.ObserveCheckout(OutcomeFailed, false)
	m.ObserveOrderTotal(decimal.NewFromInt(1))
	m.IncItemStatus("")
	var nilRecorder *Marketplace
	nilRecorder.IncCommission()

	h := NewHTTP(nil)
	h.Observe("GET", "/x", 200, time.Millisecond)
}

func TestHTTPObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewHTTP(reg)
	h.Observe("POST", "/api/v1/checkout", 200, 250*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	mf := findMetricFamily(mfs, "http_request_duration_seconds")
	if mf == nil {
		t.Fatalf("histogram not registered")
	}
	metric := mf.GetMetric()[0]
	if !matchesLabels(metric.GetLabel(), map[string]string{"route": "/api/v1/checkout", "status": "200"}) {
		t.Fatalf("unexpected labels %v", metric.GetLabel())
	}
	if metric.GetHistogram().GetSampleSum() <= 0 {
		t.Fatalf("expected duration sum > 0")
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
