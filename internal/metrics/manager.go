// Package metrics holds the Prometheus collectors of the coachplan service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "coachplan"

type Manager struct {
	// counters
	PlansGenerated   *prometheus.CounterVec
	MRVWarnings      *prometheus.CounterVec
	SplitSuggestions prometheus.Counter
	Requests         *prometheus.CounterVec
	PlanCacheHits    prometheus.Counter
	PlanCacheMisses  prometheus.Counter

	// histograms
	PlanGenerationSeconds prometheus.Histogram
}

// NewTestManager returns a Manager registered to a throwaway registry.
func NewTestManager() *Manager {
	return NewManager(prometheus.NewRegistry())
}

func NewManager(reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		PlansGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_generated_total",
			Help:      "The total number of generated training plans",
		}, []string{"split"}),
		MRVWarnings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mrv_warnings_total",
			Help:      "The total number of weeks where logged volume exceeded MRV",
		}, []string{"muscle"}),
		SplitSuggestions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_suggestions_total",
			Help:      "The total number of split adjustment suggestions",
		}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "The total number of handled HTTP requests",
		}, []string{"method", "status"}),
		PlanCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_cache_hits_total",
			Help:      "Plan lookups served from the in-process cache",
		}),
		PlanCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_cache_misses_total",
			Help:      "Plan lookups that went to the store",
		}),
		PlanGenerationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_generation_seconds",
			Help:      "Time spent generating a plan in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}
