package listcertificates

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
	TaskType = "list-certificates"
)

const selectUserCertificates = `
	SELECT c.id, c.unique_code, c.issued_at,
		p.id, p.title, COALESCE(p.description, ''), COALESCE(p.category, ''),
		COALESCE(p.difficulty_level, ''), COALESCE(p.cover_image_url, '')
	FROM certificates c
	JOIN paths p ON p.id = c.path_id
	WHERE c.user_id = $1
	ORDER BY c.issued_at DESC`

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

// Execute returns the user's certificates, newest first. A user without
// certificates gets an empty list.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	userID := strings.TrimSpace(input.UserID)
	if _, err := uuid.Parse(userID); err != nil {
		return nil, errors.NewValidationError("userId must be a UUID")
	}

	rows, err := h.db.QueryContext(ctx, selectUserCertificates, userID)
	if err != nil {
		return nil, errors.NewCertificateLookupFailedError(err)
	}
	defer rows.Close()

	certificates := make([]models.CertificateSummary, 0)
	for rows.Next() {
		var c models.CertificateSummary
		if err := rows.Scan(&c.ID, &c.UniqueCode, &c.IssuedAt,
			&c.Path.ID, &c.Path.Title, &c.Path.Description, &c.Path.Category,
			&c.Path.DifficultyLevel, &c.Path.CoverImageURL); err != nil {
			return nil, errors.NewCertificateLookupFailedError(err)
		}
		certificates = append(certificates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewCertificateLookupFailedError(err)
	}

	return &Output{Certificates: certificates, CertificateCount: len(certificates)}, nil
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
		"jobKey":           job.Key,
		"certificateCount": output.CertificateCount,
	})
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, timer *metrics.JobTimer) error {
	h.errorHandler.HandleJobError(ctx, client, job, err)
	timer.Done(string(errors.Normalize(err).Code))
	return err
}
