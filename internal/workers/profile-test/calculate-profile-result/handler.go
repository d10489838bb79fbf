// internal/workers/profile-test/calculate-profile-result/handler.go
package calculateprofileresult

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"elevate-workers/internal/common/camunda"
	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/logger"
	"elevate-workers/internal/common/metrics"
	"elevate-workers/internal/profiletest"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-profile-result"
)

type Handler struct {
	config       *Config
	scorer       *profiletest.Scorer
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, scorer *profiletest.Scorer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		scorer:       scorer,
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

// Execute rejects an empty submission, then scores and ranks it.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	answers := input.Answers.Normalize()
	if answers.Empty() {
		return nil, errors.NewEmptySubmissionError()
	}

	result := h.scorer.Recommend(answers)

	for i, rec := range result.Recommendations {
		metrics.ProfileRecommendations.WithLabelValues(rec.Category.String(), strconv.Itoa(i+1)).Inc()
	}

	output := &Output{
		Scores:             result.Scores,
		Recommendations:    result.Recommendations,
		RecommendedPathIDs: result.PathIDs(),
	}
	if len(result.Recommendations) > 0 {
		output.TopCategory = result.Recommendations[0].Category.String()
	}

	h.logger.Info("profile calculated", map[string]interface{}{
		"userId":        input.UserID,
		"answeredCount": answers.Answered(),
		"topCategory":   output.TopCategory,
		"pathIds":       output.RecommendedPathIDs,
	})

	return output, nil
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
		"jobKey": job.Key,
	})
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, timer *metrics.JobTimer) error {
	h.errorHandler.HandleJobError(ctx, client, job, err)
	timer.Done(string(errors.Normalize(err).Code))
	return err
}
