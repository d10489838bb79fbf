// internal/workers/auth/resolve-session/handler.go
package resolvesession

import (
	"context"
	"encoding/json"
	"fmt"

	"elevate-workers/internal/common/camunda"
	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/logger"
	"elevate-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "resolve-session"
)

type Handler struct {
	config       *Config
	resolver     UserResolver
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, resolver UserResolver, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		resolver:     resolver,
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
	user, err := h.resolver.GetUser(ctx, input.AccessToken)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("session resolved", map[string]interface{}{
		"userId":   user.ID,
		"provider": user.AppMetadata.Provider,
	})

	return &Output{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.UserMetadata.FullName,
		Provider: user.AppMetadata.Provider,
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
		"jobKey": job.Key,
		"userId": output.UserID,
	})
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, timer *metrics.JobTimer) error {
	h.errorHandler.HandleJobError(ctx, client, job, err)
	timer.Done(string(errors.Normalize(err).Code))
	return err
}
