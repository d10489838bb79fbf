// internal/workers/profile-test/validate-test-answers/handler.go
package validatetestanswers

import (
	"context"
	"encoding/json"
	"fmt"

	"elevate-workers/internal/common/camunda"
	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/logger"
	"elevate-workers/internal/common/metrics"
	"elevate-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-test-answers"
)

type Handler struct {
	config       *Config
	schema       validation.JSONSchema
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		schema:       submissionSchema(),
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(ctx context.Context, client worker.JobClient, job entities.Job) error {
	timer := metrics.StartJob(TaskType)
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return h.failJob(ctx, client, job, errors.NewProfileTestValidationError(fmt.Sprintf("parse input: %v", err)), timer)
	}

	execCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	output, err := h.Execute(execCtx, &input)
	if err != nil {
		return h.failJob(ctx, client, job, err, timer)
	}

	if err := h.completeJob(ctx, client, job, output); err != nil {
		timer.Done(string(errors.Normalize(err).Code))
		return err
	}
	timer.Done("")
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if isEmpty(input.Answers) {
		return nil, errors.NewEmptySubmissionError()
	}

	result := validation.ValidateInput(map[string]interface{}{"answers": input.Answers}, h.schema)
	if !result.Valid {
		h.logger.Warn("answers rejected", map[string]interface{}{
			"errorCount": len(result.Errors),
		})
		return nil, errors.NewProfileTestValidationError(result.Error()).
			WithMetadata("validationErrors", result.Errors)
	}

	answers, err := toAnswerSet(input.Answers)
	if err != nil {
		return nil, errors.NewProfileTestValidationError(err.Error())
	}
	if answers.Empty() {
		return nil, errors.NewEmptySubmissionError()
	}
	if n := answers.Answered(); n > h.config.MaxAnswers {
		return nil, errors.NewProfileTestValidationError(
			fmt.Sprintf("%d questions answered, at most %d accepted", n, h.config.MaxAnswers))
	}

	return &Output{
		Valid:         true,
		Answers:       answers,
		AnsweredCount: answers.Answered(),
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return err
	}
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":        job.Key,
		"answeredCount": output.AnsweredCount,
	})
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, timer *metrics.JobTimer) error {
	h.errorHandler.HandleJobError(ctx, client, job, err)
	timer.Done(string(errors.Normalize(err).Code))
	return err
}
