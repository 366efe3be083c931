package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"givechain/core/events"
	"givechain/core/types"
	"givechain/native/charity"
)

type ledgerMetrics struct {
	donations   prometheus.Counter
	milestones  prometheus.Counter
	badges      *prometheus.CounterVec
	withdrawals prometheus.Counter
}

var (
	ledgerMetricsOnce sync.Once
	ledgerRegistry    *ledgerMetrics
)

func metrics() *ledgerMetrics {
	ledgerMetricsOnce.Do(func() {
		ledgerRegistry = &ledgerMetrics{
			donations: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "givechain",
				Subsystem: "ledger",
				Name:      "donations_total",
				Help:      "Count of accepted donations.",
			}),
			milestones: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "givechain",
				Subsystem: "ledger",
				Name:      "milestones_completed_total",
				Help:      "Count of milestones unlocked by donations.",
			}),
			badges: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "givechain",
				Subsystem: "ledger",
				Name:      "badges_minted_total",
				Help:      "Count of badge tokens minted, segmented by tier.",
			}, []string{"tier"}),
			withdrawals: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "givechain",
				Subsystem: "ledger",
				Name:      "withdrawals_total",
				Help:      "Count of completed beneficiary withdrawals.",
			}),
		}
		prometheus.MustRegister(
			ledgerRegistry.donations,
			ledgerRegistry.milestones,
			ledgerRegistry.badges,
			ledgerRegistry.withdrawals,
		)
	})
	return ledgerRegistry
}

// payloadCarrier is satisfied by the charity event envelope.
type payloadCarrier interface {
	Event() *types.Event
}

// Collector is an events.Emitter that tracks ledger activity in prometheus
// counters. Hosts attach it alongside their indexing emitter via
// events.Fanout.
type Collector struct{}

// NewCollector returns a Collector backed by the process-wide registry.
func NewCollector() *Collector {
	metrics()
	return &Collector{}
}

// Emit implements the events.Emitter interface.
func (c *Collector) Emit(evt events.Event) {
	if c == nil || evt == nil {
		return
	}
	m := metrics()
	switch evt.EventType() {
	case charity.EventTypeDonationReceived:
		m.donations.Inc()
	case charity.EventTypeMilestoneCompleted:
		m.milestones.Inc()
	case charity.EventTypeBadgeEarned:
		tier := "unknown"
		if carrier, ok := evt.(payloadCarrier); ok {
			if v := carrier.Event().Attribute("tier"); v != "" {
				tier = v
			}
		}
		m.badges.WithLabelValues(tier).Inc()
	case charity.EventTypeFundsWithdrawn:
		m.withdrawals.Inc()
	}
}
