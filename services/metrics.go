package services

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nekopage",
		Subsystem: "cat_api",
		Name:      "requests_total",
		Help:      "Cat API image searches by outcome.",
	}, []string{"outcome"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "nekopage",
		Subsystem: "cat_api",
		Name:      "request_duration_seconds",
		Help:      "Latency of cat API image searches.",
		Buckets:   prometheus.DefBuckets,
	})
)

const (
	outcomeOK          = "ok"
	outcomeStatus      = "upstream_status"
	outcomeNoImages    = "no_images"
	outcomeInvalid     = "invalid_image"
	outcomeUnavailable = "unavailable"
)

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrUpstreamStatus):
		return outcomeStatus
	case errors.Is(err, ErrNoImages):
		return outcomeNoImages
	case errors.Is(err, ErrInvalidImage):
		return outcomeInvalid
	default:
		return outcomeUnavailable
	}
}

func observeFetch(outcome string, elapsed time.Duration) {
	fetchTotal.WithLabelValues(outcome).Inc()
	fetchDuration.Observe(elapsed.Seconds())
}
