package service

import (
	"errors"
	"time"

	"notification-dispatch/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	channelPush  = "push"
	channelEmail = "email"
)

var (
	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatch_total",
			Help: "Dispatch attempts by channel and outcome.",
		},
		[]string{"channel", "outcome"},
	)

	dispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_dispatch_duration_seconds",
			Help:    "Time spent in the dispatch pipeline, including provider calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel"},
	)

	staleTokensTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notification_stale_tokens_total",
		Help: "Push tokens reported by the gateway as unregistered or invalid.",
	})
)

// outcomeOf classifies err for the outcome label.
func outcomeOf(err error) string {
	var (
		vErr *models.ValidationError
		aErr *models.AuthError
		dErr *models.DeliveryError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &vErr):
		return "validation_error"
	case errors.As(err, &aErr):
		return "auth_error"
	case errors.As(err, &dErr):
		return "delivery_error"
	default:
		return "error"
	}
}

func observe(channel string, start time.Time, err error) {
	dispatchTotal.WithLabelValues(channel, outcomeOf(err)).Inc()
	dispatchDuration.WithLabelValues(channel).Observe(time.Since(start).Seconds())
}
