package getcompletionstatus

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
	"elevate-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "get-completion-status"
)

const selectUserProgress = `SELECT content_id, status FROM user_progress WHERE user_id = $1`

type Handler struct {
	config       *Config
	db           *sql.DB
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
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
	userID := strings.TrimSpace(input.UserID)
	if _, err := uuid.Parse(userID); err != nil {
		return nil, errors.NewValidationError("userId must be a UUID")
	}

	rows, err := h.db.QueryContext(ctx, selectUserProgress, userID)
	if err != nil {
		return nil, errors.NewProgressLookupFailedError(err)
	}
	defer rows.Close()

	output := &Output{UserProgress: make(map[int64]models.ProgressStatus)}
	for rows.Next() {
		var (
			contentID int64
			status    models.ProgressStatus
		)
		if err := rows.Scan(&contentID, &status); err != nil {
			return nil, errors.NewProgressLookupFailedError(err)
		}
		if !status.Valid() {
			h.logger.Warn("skipping unknown progress status", map[string]interface{}{
				"contentId": contentID,
				"status":    status,
			})
			continue
		}
		output.UserProgress[contentID] = status
		if status == models.ProgressCompleted {
			output.CompletedCount++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewProgressLookupFailedError(err)
	}
	output.TrackedCount = len(output.UserProgress)
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
		"jobKey":         job.Key,
		"completedCount": output.CompletedCount,
	})
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, timer *metrics.JobTimer) error {
	h.errorHandler.HandleJobError(ctx, client, job, err)
	timer.Done(string(errors.Normalize(err).Code))
	return err
}
