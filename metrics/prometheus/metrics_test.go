package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordStageDuration(t *testing.T) {
	stageDuration.Reset()
	RecordStageDuration("ingest", "frame", "add_frame", 0.01)
	assert.Equal(t, 1, testutil.CollectAndCount(stageDuration))
}

func TestRecordStageElement(t *testing.T) {
	stageElementsTotal.Reset()
	RecordStageElement("ingest", "success")
	RecordStageElement("ingest", "success")
	assert.Equal(t, float64(2), testutil.ToFloat64(stageElementsTotal.WithLabelValues("ingest", "success")))
}

func TestRecordQueryEval(t *testing.T) {
	queryEvalTotal.Reset()
	RecordQueryEval("label", "matched", 0.001)
	assert.Equal(t, float64(1), testutil.ToFloat64(queryEvalTotal.WithLabelValues("label", "matched")))
}

func TestSetParamStoreKeysMirrored(t *testing.T) {
	SetParamStoreKeysMirrored(42)
	assert.Equal(t, float64(42), testutil.ToFloat64(paramStoreKeysMirrored))
}

func TestRecordParamStoreOp(t *testing.T) {
	paramStoreOpsTotal.Reset()
	RecordParamStoreOp("set", "success")
	assert.Equal(t, float64(1), testutil.ToFloat64(paramStoreOpsTotal.WithLabelValues("set", "success")))
}

func TestSetFIFODepth(t *testing.T) {
	SetFIFODepth(7)
	assert.Equal(t, float64(7), testutil.ToFloat64(fifoDepth))
}

func TestRecordFIFOOp(t *testing.T) {
	fifoOpsTotal.Reset()
	RecordFIFOOp("push", "success")
	assert.Equal(t, float64(1), testutil.ToFloat64(fifoOpsTotal.WithLabelValues("push", "success")))
}

func TestRecordUDFCall(t *testing.T) {
	udfCallsTotal.Reset()
	RecordUDFCall("predicate", "success", 0.0001)
	assert.Equal(t, float64(1), testutil.ToFloat64(udfCallsTotal.WithLabelValues("predicate", "success")))
}

func TestNewExporter_RegistersMetrics(t *testing.T) {
	e := NewExporter(":0")
	assert.NotNil(t, e.Registry())
}
