// Package metrics содержит коллекторы Prometheus сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mentor"

var (
	// EntitlementDecisions считает решения о доступе по исходу и причине.
	EntitlementDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "entitlement",
		Name:      "decisions_total",
		Help:      "Entitlement decisions by outcome and reason.",
	}, []string{"outcome", "reason"})

	// CompletionRequests считает вызовы модели по результату.
	CompletionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "completion",
		Name:      "requests_total",
		Help:      "Completion provider calls by result.",
	}, []string{"result"})

	// CompletionDuration: длительность вызова модели.
	CompletionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "completion",
		Name:      "duration_seconds",
		Help:      "Completion provider call duration in seconds.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16},
	})

	// WebhookRequestsTotal считает вебхуки Stripe по типу события и статусу ответа.
	WebhookRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "billing",
		Name:      "webhook_requests_total",
		Help:      "Total Stripe webhook requests by event type and HTTP status.",
	}, []string{"event_type", "status"})

	// WebhookDuration: длительность обработки вебхука.
	WebhookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "billing",
		Name:      "webhook_duration_seconds",
		Help:      "Stripe webhook processing duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event_type"})

	// ReconcileOutcomes считает результаты слияния подписок.
	ReconcileOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "billing",
		Name:      "reconcile_outcomes_total",
		Help:      "Subscription upsert outcomes (inserted, updated, linked, unchanged, stale).",
	}, []string{"outcome"})

	// NotificationsSent считает письма, отправленные воркером уведомлений.
	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notifications",
		Name:      "sent_total",
		Help:      "Notification emails by kind and result.",
	}, []string{"kind", "result"})
)
