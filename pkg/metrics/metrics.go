package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Generation outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

var (
	// GenerationsTotal counts finished generation attempts by outcome.
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tfforge",
		Name:      "generations_total",
		Help:      "Finished Terraform generation attempts by outcome.",
	}, []string{"outcome"})

	// GenerationDuration observes wall time of a full generation attempt,
	// including the merge request publication.
	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tfforge",
		Name:      "generation_duration_seconds",
		Help:      "Duration of a Terraform generation attempt.",
		Buckets:   prometheus.DefBuckets,
	})

	// TemplateCacheHits counts template store lookups served from cache.
	TemplateCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tfforge",
		Name:      "template_cache_hits_total",
		Help:      "Template lookups answered without a store round-trip.",
	})

	// TemplateCacheMisses counts template store lookups that hit the database.
	TemplateCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tfforge",
		Name:      "template_cache_misses_total",
		Help:      "Template lookups that required a store fetch.",
	})
)
