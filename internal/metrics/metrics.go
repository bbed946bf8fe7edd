package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Slug assignment
var (
	SlugCollisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "koodos_slug_collisions_total",
		Help: "Number of probed slug candidates that were already taken",
	}, []string{"entity"})

	SlugExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "koodos_slug_exhausted_total",
		Help: "Number of slug assignments that hit the attempt bound",
	}, []string{"entity"})
)

// Meta-suggestion pipeline
var (
	SuggestionsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "koodos_meta_suggestions_generated_total",
		Help: "Meta suggestions created, by text source (ai or template)",
	}, []string{"source"})

	SuggestionReviews = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "koodos_meta_suggestion_reviews_total",
		Help: "Reviewed meta suggestions, by decision",
	}, []string{"decision"})
)

// Generation service
var (
	GenerationRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "koodos_generation_requests_total",
		Help: "Total number of requests sent to the generation service",
	})

	GenerationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "koodos_generation_errors_total",
		Help: "Total number of failed generation service requests",
	})

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "koodos_circuit_breaker_state",
		Help: "State of circuit breakers (0=closed, 1=half-open, 2=open)",
	}, []string{"service"})
)

// Crawler
var (
	CrawlPages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "koodos_crawl_pages_total",
		Help: "Total number of pages fetched by the crawler",
	})

	CrawlJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "koodos_crawl_jobs_total",
		Help: "Finished crawl jobs, by final status",
	}, []string{"status"})
)
