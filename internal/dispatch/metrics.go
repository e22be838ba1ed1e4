package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "automation_jobs_enqueued_total",
		Help: "Jobs accepted by the dispatch queue.",
	}, []string{"kind"})

	jobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "automation_jobs_processed_total",
		Help: "Jobs executed by outcome: ok, skipped, retried.",
	}, []string{"kind", "outcome"})
)
