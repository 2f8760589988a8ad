package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Preference extraction and profile write metrics.
var (
	PreferenceMatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pilotprefs",
			Name:      "preference_matches_total",
			Help:      "Vocabulary entries matched in incoming messages",
		},
		[]string{"kind"}, // "location" / "amenity"
	)

	ProfileWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pilotprefs",
			Name:      "profile_writes_total",
			Help:      "Profile update outcomes",
		},
		[]string{"result"}, // "written" / "skipped" / "error"
	)

	ProfileWriteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pilotprefs",
			Name:      "profile_write_duration_seconds",
			Help:      "Profile union-append latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)
)

var registerPreferenceOnce sync.Once

// RegisterPreferenceMetrics registers preference metrics with the default registry.
// Safe to call more than once.
func RegisterPreferenceMetrics() {
	registerPreferenceOnce.Do(func() {
		prometheus.MustRegister(PreferenceMatchesTotal)
		prometheus.MustRegister(ProfileWritesTotal)
		prometheus.MustRegister(ProfileWriteDuration)
	})
}
