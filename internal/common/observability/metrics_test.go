package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestObservability(t *testing.T) (*Observability, *tracetest.SpanRecorder, *prometheus.Registry) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	reg := prometheus.NewRegistry()
	obs, err := New("elevate-workers-test", Options{
		Registerer:     reg,
		SpanProcessors: []sdktrace.SpanProcessor{recorder},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = obs.Shutdown(context.Background()) })
	return obs, recorder, reg
}

func TestStartSpan_RecordsStatus(t *testing.T) {
	obs, recorder, _ := newTestObservability(t)

	_, span := obs.StartSpan(context.Background(), "calculate-profile-result", attribute.Int64("jobKey", 42))
	EndSpan(span, nil)

	_, span = obs.StartSpan(context.Background(), "search-paths")
	EndSpan(span, errors.New("SEARCH_QUERY_FAILED"))

	ended := recorder.Ended()
	require.Len(t, ended, 2)

	assert.Equal(t, "calculate-profile-result", ended[0].Name())
	assert.Equal(t, codes.Ok, ended[0].Status().Code)
	assert.Contains(t, ended[0].Attributes(), attribute.Int64("jobKey", 42))

	assert.Equal(t, "search-paths", ended[1].Name())
	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Equal(t, "SEARCH_QUERY_FAILED", ended[1].Status().Description)
}

func TestRecordJobMetrics_Exported(t *testing.T) {
	obs, _, reg := newTestObservability(t)
	ctx := context.Background()

	obs.RecordJobProcessed(ctx, "feature-subscribe", "completed")
	obs.RecordJobDuration(ctx, "feature-subscribe", 25*time.Millisecond, "completed")

	families, err := reg.Gather()
	require.NoError(t, err)

	var sawCounter, sawHistogram bool
	for _, f := range families {
		switch {
		case strings.HasPrefix(f.GetName(), "jobs_processed"):
			sawCounter = true
		case strings.HasPrefix(f.GetName(), "jobs_duration"):
			sawHistogram = true
		}
	}
	assert.True(t, sawCounter, "jobs.processed not exported")
	assert.True(t, sawHistogram, "jobs.duration not exported")
}
