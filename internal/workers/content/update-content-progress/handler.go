// internal/workers/content/update-content-progress/handler.go
package updatecontentprogress

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"elevate-workers/internal/common/camunda"
	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/logger"
	"elevate-workers/internal/common/metrics"
	"elevate-workers/internal/common/validation"
	"elevate-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "update-content-progress"
)

// completed_at is cleared whenever the status moves away from completed.
const upsertProgress = `
	INSERT INTO user_progress (user_id, content_id, status, completed_at, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id, content_id) DO UPDATE SET
		status = EXCLUDED.status,
		completed_at = EXCLUDED.completed_at,
		updated_at = EXCLUDED.updated_at
	RETURNING status, completed_at, updated_at`

const deleteProgress = `DELETE FROM user_progress WHERE user_id = $1 AND content_id = $2`

type Handler struct {
	config       *Config
	db           *sql.DB
	schema       validation.JSONSchema
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
		schema:       progressSchema(),
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
	input.UserID = strings.TrimSpace(input.UserID)
	if input.Status == "" {
		input.Status = models.ProgressCompleted
	}

	if result := validation.ValidateInput(toDocument(input), h.schema); !result.Valid {
		return nil, errors.NewValidationError(result.Error()).
			WithMetadata("validationErrors", result.Errors)
	}

	if input.Delete {
		return h.delete(ctx, input)
	}
	return h.upsert(ctx, input)
}

func (h *Handler) upsert(ctx context.Context, input *Input) (*Output, error) {
	now := time.Now().UTC()
	var completedAt sql.NullTime
	if input.Status == models.ProgressCompleted {
		completedAt = sql.NullTime{Time: now, Valid: true}
	}

	progress := &models.ContentProgress{
		UserID:    input.UserID,
		ContentID: input.ContentID,
	}
	var stored sql.NullTime
	err := h.db.QueryRowContext(ctx, upsertProgress,
		input.UserID, input.ContentID, string(input.Status), completedAt, now,
	).Scan(&progress.Status, &stored, &progress.UpdatedAt)
	if err != nil {
		return nil, errors.NewProgressSaveFailedError(err)
	}
	if stored.Valid {
		t := stored.Time
		progress.CompletedAt = &t
	}

	h.logger.Info("progress saved", map[string]interface{}{
		"userId":    input.UserID,
		"contentId": input.ContentID,
		"status":    progress.Status,
	})

	return &Output{Progress: progress}, nil
}

func (h *Handler) delete(ctx context.Context, input *Input) (*Output, error) {
	res, err := h.db.ExecContext(ctx, deleteProgress, input.UserID, input.ContentID)
	if err != nil {
		return nil, errors.NewProgressSaveFailedError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, errors.NewProgressSaveFailedError(err)
	}
	if n == 0 {
		return nil, errors.NewProgressNotFoundError(input.UserID, input.ContentID)
	}

	h.logger.Info("progress deleted", map[string]interface{}{
		"userId":    input.UserID,
		"contentId": input.ContentID,
	})

	return &Output{Deleted: true}, nil
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
