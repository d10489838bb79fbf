package camunda

import (
	"context"
	"fmt"
	"time"

	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

// JobFunc handles one activated job. It completes, fails or throws on the
// job itself and returns the error the job ended with, if any. ctx carries
// the job span.
type JobFunc func(ctx context.Context, client worker.JobClient, job entities.Job) error

// CompletionRetry bounds how long a finished job keeps trying to report its
// result before the broker times it out and hands it to another worker.
var CompletionRetry = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  200 * time.Millisecond,
	MaxDelay:   2 * time.Second,
}

const (
	statusCompleted = "completed"
	statusFailed    = "failed"
)

// Instrument adapts fn to the Zeebe handler signature. When obs is non-nil
// each activation runs inside a span whose status follows fn's error, and
// the job counter and histogram are tagged completed or failed.
func Instrument(taskType string, fn JobFunc, obs *observability.Observability) worker.JobHandler {
	if obs == nil {
		return func(client worker.JobClient, job entities.Job) {
			_ = fn(context.Background(), client, job)
		}
	}
	return func(client worker.JobClient, job entities.Job) {
		ctx, span := obs.StartSpan(context.Background(), taskType,
			attribute.Int64("job.key", job.Key),
			attribute.Int64("process.instance.key", job.ProcessInstanceKey),
			attribute.Int64("job.retries", int64(job.Retries)),
		)
		start := time.Now()

		err := fn(ctx, client, job)

		status := statusCompleted
		if err != nil {
			status = statusFailed
			span.SetAttributes(attribute.String("error.code", string(errors.Normalize(err).Code)))
		}
		observability.EndSpan(span, err)
		obs.RecordJobProcessed(ctx, taskType, status)
		obs.RecordJobDuration(ctx, taskType, time.Since(start), status)
	}
}

// CompleteJob reports output as the job's result, retrying transient
// gateway failures per CompletionRetry.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return errors.NewValidationError(fmt.Sprintf("encode job variables: %v", err))
	}

	_, err = ExecuteWithRetry(ctx, CompletionRetry, "complete-job", func(ctx context.Context) (interface{}, error) {
		return cmd.Send(ctx)
	})
	return err
}
