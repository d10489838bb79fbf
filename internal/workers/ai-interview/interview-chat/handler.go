// internal/workers/ai-interview/interview-chat/handler.go
package interviewchat

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"elevate-workers/internal/common/camunda"
	"elevate-workers/internal/common/errors"
	httpclient "elevate-workers/internal/common/http"
	"elevate-workers/internal/common/logger"
	"elevate-workers/internal/common/metrics"
	"elevate-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "interview-chat"
)

type Handler struct {
	config       *Config
	http         *httpclient.Client
	schema       validation.JSONSchema
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		http:         httpclient.NewClient(0, httpclient.WithRetries(config.MaxRetries, 500*time.Millisecond)),
		schema:       chatSchema(),
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
		return h.failJob(ctx, client, job, errors.NewValidationError(fmt.Sprintf("parse input: %v", err)), timer)
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
	normalize(input)
	if result := validation.ValidateInput(toDocument(input), h.schema); !result.Valid {
		return nil, errors.NewValidationError(result.Error()).
			WithMetadata("validationErrors", result.Errors)
	}

	req := chatRequest{
		Model:       h.config.Model,
		Messages:    buildMessages(input.Topic, input.History),
		Temperature: h.config.Temperature,
		MaxTokens:   h.config.MaxTokens,
	}

	start := time.Now()
	var resp chatResponse
	err := h.http.PostJSON(ctx, strings.TrimSuffix(h.config.BaseURL, "/")+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + h.config.APIKey}, req, &resp)
	if err != nil {
		return nil, h.mapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.NewChatCompletionFailedError(fmt.Errorf("response has no choices"))
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	h.logger.Info("chat completion received", map[string]interface{}{
		"topic":        input.Topic,
		"historySize":  len(input.History),
		"model":        h.config.Model,
		"durationMs":   time.Since(start).Milliseconds(),
		"responseSize": len(answer),
	})

	return &Output{Response: answer}, nil
}

func (h *Handler) mapError(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewChatCompletionTimeoutError()
	}
	var statusErr *httpclient.StatusError
	if stderrors.As(err, &statusErr) {
		var body apiErrorBody
		if json.Unmarshal([]byte(statusErr.Body), &body) == nil && body.Error.Message != "" {
			return errors.NewChatCompletionFailedError(fmt.Errorf("status %d: %s", statusErr.StatusCode, body.Error.Message))
		}
		return errors.NewChatCompletionFailedError(fmt.Errorf("status %d", statusErr.StatusCode))
	}
	return errors.NewChatCompletionFailedError(err)
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
