package camunda

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// completeClient records complete-job sends. The first failures sends
// return transient gateway errors.
type completeClient struct {
	failures  int
	sends     int
	jobKey    int64
	variables interface{}
}

func (c *completeClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return &completeCommand{client: c}
}

func (c *completeClient) NewFailJobCommand() commands.FailJobCommandStep1 { return nil }

func (c *completeClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 { return nil }

type completeCommand struct {
	client *completeClient
}

func (cmd *completeCommand) JobKey(key int64) commands.CompleteJobCommandStep2 {
	cmd.client.jobKey = key
	return cmd
}

func (cmd *completeCommand) Send(context.Context) (*pb.CompleteJobResponse, error) {
	cmd.client.sends++
	if cmd.client.sends <= cmd.client.failures {
		return nil, stderrors.New("rpc error: code = Unavailable desc = connection reset")
	}
	return &pb.CompleteJobResponse{}, nil
}

func (cmd *completeCommand) VariablesFromString(string) (commands.DispatchCompleteJobCommand, error) {
	return cmd, nil
}

func (cmd *completeCommand) VariablesFromStringer(fmt.Stringer) (commands.DispatchCompleteJobCommand, error) {
	return cmd, nil
}

func (cmd *completeCommand) VariablesFromMap(m map[string]interface{}) (commands.DispatchCompleteJobCommand, error) {
	cmd.client.variables = m
	return cmd, nil
}

func (cmd *completeCommand) VariablesFromObject(v interface{}) (commands.DispatchCompleteJobCommand, error) {
	cmd.client.variables = v
	return cmd, nil
}

func (cmd *completeCommand) VariablesFromObjectIgnoreOmitempty(v interface{}) (commands.DispatchCompleteJobCommand, error) {
	cmd.client.variables = v
	return cmd, nil
}

func fastCompletionRetry(t *testing.T) {
	t.Helper()
	saved := CompletionRetry
	CompletionRetry = &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	t.Cleanup(func() { CompletionRetry = saved })
}

func testJob() entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 77, ProcessInstanceKey: 9, Retries: 3}}
}

func TestCompleteJob_RetriesTransientSendFailure(t *testing.T) {
	fastCompletionRetry(t)
	client := &completeClient{failures: 2}
	output := map[string]interface{}{"saved": true}

	err := CompleteJob(context.Background(), client, testJob(), output)

	require.NoError(t, err)
	assert.Equal(t, 3, client.sends)
	assert.Equal(t, int64(77), client.jobKey)
	assert.Equal(t, output, client.variables)
}

func TestCompleteJob_ReturnsErrorWhenGatewayStaysDown(t *testing.T) {
	fastCompletionRetry(t)
	client := &completeClient{failures: 10}

	err := CompleteJob(context.Background(), client, testJob(), struct{}{})

	require.Error(t, err)
	assert.Equal(t, 3, client.sends)

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeExternalService, stdErr.Code)
}

func newRecordingObservability(t *testing.T) (*observability.Observability, *tracetest.SpanRecorder, *prometheus.Registry) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	reg := prometheus.NewRegistry()
	obs, err := observability.New("elevate-workers-test", observability.Options{
		Registerer:     reg,
		SpanProcessors: []sdktrace.SpanProcessor{recorder},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = obs.Shutdown(context.Background()) })
	return obs, recorder, reg
}

// processedStatuses collects the status label of every jobs.processed series.
func processedStatuses(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	statuses := map[string]float64{}
	for _, f := range families {
		if !strings.HasPrefix(f.GetName(), "jobs_processed") {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" {
					statuses[l.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}
	return statuses
}

func TestInstrument_SpanStatusFollowsJobOutcome(t *testing.T) {
	obs, recorder, reg := newRecordingObservability(t)

	var handlerSpan trace.SpanContext
	ok := Instrument("search-paths", func(ctx context.Context, _ worker.JobClient, _ entities.Job) error {
		handlerSpan = trace.SpanContextFromContext(ctx)
		return nil
	}, obs)
	failing := Instrument("issue-certificate", func(context.Context, worker.JobClient, entities.Job) error {
		return errors.NewPathNotCompletedError(3, 5)
	}, obs)

	ok(&completeClient{}, testJob())
	failing(&completeClient{}, testJob())

	ended := recorder.Ended()
	require.Len(t, ended, 2)

	assert.Equal(t, codes.Ok, ended[0].Status().Code)
	assert.Equal(t, ended[0].SpanContext().SpanID(), handlerSpan.SpanID())
	assert.Contains(t, ended[0].Attributes(), attribute.Int64("job.key", 77))

	assert.Equal(t, "issue-certificate", ended[1].Name())
	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Contains(t, ended[1].Attributes(), attribute.String("error.code", string(errors.ErrCodePathNotCompleted)))

	assert.Equal(t, map[string]float64{"completed": 1, "failed": 1}, processedStatuses(t, reg))
}

func TestInstrument_WithoutObservabilityStillRunsHandler(t *testing.T) {
	calls := 0
	handler := Instrument("get-test-questions", func(ctx context.Context, _ worker.JobClient, _ entities.Job) error {
		calls++
		require.NotNil(t, ctx)
		return stderrors.New("boom")
	}, nil)

	handler(&completeClient{}, testJob())
	assert.Equal(t, 1, calls)
}
