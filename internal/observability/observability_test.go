package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAlignmentItems(t *testing.T) {
	before := testutil.ToFloat64(alignmentItemsTotal.WithLabelValues("covered"))
	RecordAlignmentItems(map[string]int{"covered": 3, "uncovered": 0})
	after := testutil.ToFloat64(alignmentItemsTotal.WithLabelValues("covered"))
	assert.Equal(t, 3.0, after-before)
}

func TestRecordCanonicalBuild(t *testing.T) {
	before := testutil.ToFloat64(canonicalBuildsTotal.WithLabelValues("cached"))
	RecordCanonicalBuild("cached", time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(canonicalBuildsTotal.WithLabelValues("cached"))-before)
}

func TestRecordSkippedIgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(skippedRecordsTotal.WithLabelValues("node"))
	RecordSkipped(0, 2)
	assert.Equal(t, before, testutil.ToFloat64(skippedRecordsTotal.WithLabelValues("node")))
}

func TestInitTracingDisabledIsNoop(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), nil, "", false)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.NotNil(t, Tracer())
}
