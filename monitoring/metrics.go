package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lifecycleOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nft_lifecycle_operations_total",
			Help: "Total lifecycle operations by operation, platform and outcome",
		},
		[]string{"operation", "platform", "outcome"},
	)

	adapterCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nft_adapter_call_duration_seconds",
			Help:    "Duration of platform adapter calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"platform", "operation"},
	)

	mintRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nft_mint_retries_total",
			Help: "Total operator-triggered mint retries per event",
		},
		[]string{"event_id"},
	)

	mintedAssets = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nft_minted_assets_total",
			Help: "Minted assets per event, refreshed from stats queries",
		},
		[]string{"event_id"},
	)
)

// TrackLifecycleOperation counts one mint/retry/transfer/burn outcome.
func TrackLifecycleOperation(operation, platform, outcome string) {
	lifecycleOperations.WithLabelValues(operation, platform, outcome).Inc()
}

// ObserveAdapterCall records the duration of one adapter round-trip.
func ObserveAdapterCall(platform, operation string, duration time.Duration) {
	adapterCallDuration.WithLabelValues(platform, operation).Observe(duration.Seconds())
}

// TrackMintRetry counts an operator retry.
func TrackMintRetry(eventID string) {
	mintRetries.WithLabelValues(eventID).Inc()
}

// SetMintedAssets refreshes the per-event minted gauge.
func SetMintedAssets(eventID string, count int) {
	mintedAssets.WithLabelValues(eventID).Set(float64(count))
}
