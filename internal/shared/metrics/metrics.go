package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	generationStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quiz_generation_started_total",
		Help: "Total quiz generations started",
	})
	generationCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quiz_generation_completed_total",
		Help: "Total quiz generations completed",
	})
	generationFailedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_generation_failed_total",
		Help: "Total quiz generations failed by error code",
	}, []string{"code"})
	generationRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "generation_retries_total",
		Help: "Total retried generation service calls",
	})
	uploadsAcquiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uploads_acquired_total",
		Help: "Total temporary uploads acquired",
	})
	uploadsReleasedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uploads_released_total",
		Help: "Total temporary uploads released",
	})
	uploadReleaseFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "upload_release_failures_total",
		Help: "Total temporary uploads left behind after release retries",
	})
	uploadsOutstanding = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "uploads_outstanding",
		Help: "Temporary uploads acquired and not yet released",
	})
	attemptsRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quiz_attempts_recorded_total",
		Help: "Total quiz attempts recorded",
	})

	generationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "quiz_generation_duration_ms",
		Help:    "Quiz generation duration in milliseconds",
		Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000},
	})
)

func init() {
	registry.MustRegister(
		generationStartedTotal,
		generationCompletedTotal,
		generationFailedTotal,
		generationRetriesTotal,
		uploadsAcquiredTotal,
		uploadsReleasedTotal,
		uploadReleaseFailuresTotal,
		uploadsOutstanding,
		attemptsRecordedTotal,
		generationDuration,
	)
}

// IncGenerationStarted increments the quiz generation started counter.
func IncGenerationStarted() {
	generationStartedTotal.Inc()
}

// IncGenerationCompleted increments the quiz generation completed counter.
func IncGenerationCompleted() {
	generationCompletedTotal.Inc()
}

// IncGenerationFailed increments the failed counter for an error code.
func IncGenerationFailed(code string) {
	generationFailedTotal.WithLabelValues(code).Inc()
}

// IncGenerationRetry counts a retried call to the generation service.
func IncGenerationRetry() {
	generationRetriesTotal.Inc()
}

func IncUploadAcquired() {
	uploadsAcquiredTotal.Inc()
	uploadsOutstanding.Inc()
}

func IncUploadReleased() {
	uploadsReleasedTotal.Inc()
	uploadsOutstanding.Dec()
}

// IncUploadReleaseFailed counts an upload whose storage outlived its request.
func IncUploadReleaseFailed() {
	uploadReleaseFailuresTotal.Inc()
}

func IncAttemptRecorded() {
	attemptsRecordedTotal.Inc()
}

// ObserveGenerationDurationMs records a pipeline duration in milliseconds.
func ObserveGenerationDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	generationDuration.Observe(value)
}

// Handler exposes the registry in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
