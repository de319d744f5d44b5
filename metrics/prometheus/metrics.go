// Package prometheus provides Prometheus metrics exporters for the
// pipeline state manager, parameter store, and persistent FIFO.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "savant"

var (
	// stageDuration is a histogram of per-operation pipeline stage latency.
	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Histogram of pipeline stage operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage", "stage_type", "operation"},
	)

	// stageElementsTotal is a counter of frames/batches processed by stage.
	stageElementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_elements_total",
			Help:      "Total number of frames or batches processed by a stage",
		},
		[]string{"stage", "status"}, // status: success, error
	)

	// queryEvalDuration is a histogram of match query evaluation latency.
	queryEvalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_eval_duration_seconds",
			Help:      "Duration of a single match query evaluation against one object",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"kind"},
	)

	// queryEvalTotal is a counter of match query evaluations.
	queryEvalTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_eval_total",
			Help:      "Total number of match query evaluations",
		},
		[]string{"kind", "result"}, // result: matched, unmatched, error
	)

	// paramStoreKeysMirrored is a gauge of keys currently held in the
	// parameter store's in-process mirror.
	paramStoreKeysMirrored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "paramstore_keys_mirrored",
			Help:      "Number of keys currently present in the parameter store mirror",
		},
	)

	// paramStoreOpsTotal is a counter of parameter store operations drained
	// by the background worker.
	paramStoreOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paramstore_ops_total",
			Help:      "Total number of parameter store operations processed",
		},
		[]string{"op", "status"}, // op: get, set, del_key, del_prefix; status: success, error
	)

	// paramStoreBlockingWaitDuration is a histogram of BlockingWaitKey call
	// durations.
	paramStoreBlockingWaitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "paramstore_blocking_wait_duration_seconds",
			Help:      "Duration of BlockingWaitKey calls in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"result"}, // result: found, timeout
	)

	// fifoDepth is a gauge of the current queue length.
	fifoDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fifo_depth",
			Help:      "Current number of entries in the persistent FIFO",
		},
	)

	// fifoOpsTotal is a counter of push/pop operations.
	fifoOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fifo_ops_total",
			Help:      "Total number of persistent FIFO push/pop operations",
		},
		[]string{"op", "status"}, // op: push, pop; status: success, full, empty, error
	)

	// udfCallDuration is a histogram of UDF invocation latency.
	udfCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "udf_call_duration_seconds",
			Help:      "Duration of a single UDF invocation in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"kind"}, // kind: predicate, modifier, map
	)

	// udfCallsTotal is a counter of UDF invocations.
	udfCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "udf_calls_total",
			Help:      "Total number of UDF invocations",
		},
		[]string{"kind", "status"}, // status: success, error
	)

	// allMetrics is a list of all metrics for registration.
	allMetrics = []prometheus.Collector{
		stageDuration,
		stageElementsTotal,
		queryEvalDuration,
		queryEvalTotal,
		paramStoreKeysMirrored,
		paramStoreOpsTotal,
		paramStoreBlockingWaitDuration,
		fifoDepth,
		fifoOpsTotal,
		udfCallDuration,
		udfCallsTotal,
	}
)

// RecordStageDuration records the duration of a pipeline stage operation.
func RecordStageDuration(stageName, stageType, operation string, durationSeconds float64) {
	stageDuration.WithLabelValues(stageName, stageType, operation).Observe(durationSeconds)
}

// RecordStageElement records a frame or batch processed by a stage.
func RecordStageElement(stageName, status string) {
	stageElementsTotal.WithLabelValues(stageName, status).Inc()
}

// RecordQueryEval records a single match query evaluation.
func RecordQueryEval(kind, result string, durationSeconds float64) {
	queryEvalDuration.WithLabelValues(kind).Observe(durationSeconds)
	queryEvalTotal.WithLabelValues(kind, result).Inc()
}

// SetParamStoreKeysMirrored sets the current mirrored-key gauge.
func SetParamStoreKeysMirrored(count int) {
	paramStoreKeysMirrored.Set(float64(count))
}

// RecordParamStoreOp records a single parameter store operation outcome.
func RecordParamStoreOp(op, status string) {
	paramStoreOpsTotal.WithLabelValues(op, status).Inc()
}

// RecordParamStoreBlockingWait records a BlockingWaitKey call's duration and
// outcome.
func RecordParamStoreBlockingWait(result string, durationSeconds float64) {
	paramStoreBlockingWaitDuration.WithLabelValues(result).Observe(durationSeconds)
}

// SetFIFODepth sets the current queue-depth gauge.
func SetFIFODepth(depth int) {
	fifoDepth.Set(float64(depth))
}

// RecordFIFOOp records a single push/pop operation outcome.
func RecordFIFOOp(op, status string) {
	fifoOpsTotal.WithLabelValues(op, status).Inc()
}

// RecordUDFCall records a single UDF invocation.
func RecordUDFCall(kind, status string, durationSeconds float64) {
	udfCallDuration.WithLabelValues(kind).Observe(durationSeconds)
	udfCallsTotal.WithLabelValues(kind, status).Inc()
}
