// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prediction outcomes recorded by PredictionsTotal.
const (
	OutcomeSurvived = "survived"
	OutcomePerished = "perished"
	OutcomeFailed   = "failed"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "survival_api_requests_total",
		Help: "Total number of dispatched requests by method, resource and response status.",
	}, []string{"method", "resource", "status"})

	PredictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "survival_api_predictions_total",
		Help: "Total number of prediction attempts by outcome.",
	}, []string{"outcome"})

	StoreOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "survival_api_store_operation_duration_seconds",
		Help:    "Latency of record store operations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "operation"})

	StoreOperationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "survival_api_store_operation_errors_total",
		Help: "Total number of failed record store operations.",
	}, []string{"backend", "operation"})
)

// Outcome maps a predicted label to its metric label.
func Outcome(prediction int) string {
	if prediction == 1 {
		return OutcomeSurvived
	}
	return OutcomePerished
}
