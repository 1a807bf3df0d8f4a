package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersSubmitted counts accepted print orders by funding channel.
	OrdersSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "printexpress_orders_submitted_total",
		Help: "Print orders accepted, labeled by funding channel.",
	}, []string{"channel"})

	// Recalculations counts order edits that went through re-pricing.
	Recalculations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printexpress_order_recalculations_total",
		Help: "Order edits re-priced against live rules.",
	})

	// WebhookEvents counts gateway webhook deliveries by outcome.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "printexpress_gateway_webhook_events_total",
		Help: "Gateway webhook deliveries, labeled applied|duplicate|failed.",
	}, []string{"outcome"})

	// PosSales counts committed walk-in sales.
	PosSales = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printexpress_pos_sales_total",
		Help: "Walk-in POS sales committed.",
	})
)
