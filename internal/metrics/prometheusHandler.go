package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of ingestion jobs in queue",
})

var dispatcherSignalCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has signaled to start worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

var providerSelections = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "provider_selections_total",
	Help: "Provider chosen by the embedding and generation routers",
}, []string{"kind", "provider"})

var vectorBackendFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vector_backend_fallbacks_total",
	Help: "Vector store backend failures that fell through to the next backend",
}, []string{"backend", "operation"})

var citationResults = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "citation_validation_total",
	Help: "Advisory citation validation outcomes",
}, []string{"valid"})

var intentCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "intent_classifications_total",
	Help: "Classified intents labelled by path (llm or keyword)",
}, []string{"intent", "path"})

var ingestedChunks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ingested_chunks_total",
	Help: "Chunks upserted into the vector store",
}, []string{"chunk_type"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *HttpStatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}
func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func ProviderSelected(kind, provider string) {
	providerSelections.WithLabelValues(kind, provider).Inc()
}

func VectorBackendFallback(backend, operation string) {
	vectorBackendFallbacks.WithLabelValues(backend, operation).Inc()
}

func CitationValidated(valid bool) {
	label := "false"
	if valid {
		label = "true"
	}
	citationResults.WithLabelValues(label).Inc()
}

func IntentClassified(intent string, fallback bool) {
	path := "llm"
	if fallback {
		path = "keyword"
	}
	intentCount.WithLabelValues(intent, path).Inc()
}

func ChunksIngested(chunkType string, n int) {
	ingestedChunks.WithLabelValues(chunkType).Add(float64(n))
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "process_request_duration_seconds",
	Help:    "Total time spent processing a chat request or ingestion job.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30, 60},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
