package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCommand_DefaultsLabels(t *testing.T) {
	before := testutil.ToFloat64(botCommandsTotal.WithLabelValues("unknown", "unknown"))

	RecordCommand("", "", time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(botCommandsTotal.WithLabelValues("unknown", "unknown")))
}

func TestRecordUpstream(t *testing.T) {
	before := testutil.ToFloat64(upstreamRequestsTotal.WithLabelValues("coingecko", "ok"))

	RecordUpstream("coingecko", "ok", 20*time.Millisecond)
	RecordUpstream("coingecko", "ok", 30*time.Millisecond)

	assert.Equal(t, before+2, testutil.ToFloat64(upstreamRequestsTotal.WithLabelValues("coingecko", "ok")))
}

func TestRecordError(t *testing.T) {
	before := testutil.ToFloat64(errorsTotal.WithLabelValues("parse_failure", "none"))

	RecordError("parse_failure", "")

	assert.Equal(t, before+1, testutil.ToFloat64(errorsTotal.WithLabelValues("parse_failure", "none")))
}

func TestRecordDuplicateUpdate(t *testing.T) {
	before := testutil.ToFloat64(duplicateUpdatesTotal)

	RecordDuplicateUpdate()

	assert.Equal(t, before+1, testutil.ToFloat64(duplicateUpdatesTotal))
}
