package manageforumpost

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"elevate-workers/internal/common/camunda"
	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/logger"
	"elevate-workers/internal/common/metrics"
	"elevate-workers/internal/common/validation"
	"elevate-workers/internal/forum"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "manage-forum-post"
)

type Handler struct {
	config       *Config
	store        *forum.Store
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        forum.NewStore(db),
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

// Execute creates, edits or deletes a post. Edits and deletes only touch
// posts written by the requesting user.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.TopicID = strings.TrimSpace(input.TopicID)
	input.PostID = strings.TrimSpace(input.PostID)
	input.Content = strings.TrimSpace(input.Content)
	if input.Action == "" {
		input.Action = ActionCreate
	}

	if result := validation.ValidateInput(toDocument(input), postSchema(input.Action)); !result.Valid {
		return nil, errors.NewValidationError(result.Error()).
			WithMetadata("validationErrors", result.Errors)
	}

	switch input.Action {
	case ActionUpdate:
		post, err := h.store.UpdatePost(ctx, input.UserID, input.PostID, input.Content)
		if err != nil {
			return nil, err
		}
		h.logger.Info("forum post updated", map[string]interface{}{"postId": post.ID})
		return &Output{Post: post}, nil

	case ActionDelete:
		if err := h.store.DeletePost(ctx, input.UserID, input.PostID); err != nil {
			return nil, err
		}
		h.logger.Info("forum post deleted", map[string]interface{}{"postId": input.PostID})
		return &Output{Deleted: true}, nil

	default:
		post, err := h.store.CreatePost(ctx, input.UserID, input.TopicID, input.Content)
		if err != nil {
			return nil, err
		}
		h.logger.Info("forum post created", map[string]interface{}{
			"postId":  post.ID,
			"topicId": post.TopicID,
		})
		return &Output{Post: post}, nil
	}
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
		"jobKey":  job.Key,
		"deleted": output.Deleted,
	})
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, timer *metrics.JobTimer) error {
	h.errorHandler.HandleJobError(ctx, client, job, err)
	timer.Done(string(errors.Normalize(err).Code))
	return err
}
