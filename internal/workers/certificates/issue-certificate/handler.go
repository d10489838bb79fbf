// internal/workers/certificates/issue-certificate/handler.go
package issuecertificate

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"elevate-workers/internal/common/camunda"
	"elevate-workers/internal/common/database"
	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/logger"
	"elevate-workers/internal/common/metrics"
	"elevate-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "issue-certificate"
)

const existsCertificate = `
	SELECT EXISTS (SELECT 1 FROM certificates WHERE user_id = $1 AND path_id = $2)`

// countPathProgress returns the number of contents in the path and how many
// of them the user completed.
const countPathProgress = `
	SELECT COUNT(c.id), COUNT(up.content_id)
	FROM modules m
	JOIN contents c ON c.module_id = m.id
	LEFT JOIN user_progress up
		ON up.content_id = c.id AND up.user_id = $1 AND up.status = 'completed'
	WHERE m.path_id = $2`

const insertCertificate = `
	INSERT INTO certificates (id, user_id, path_id, unique_code, issued_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, unique_code, issued_at`

type Handler struct {
	config       *Config
	db           *sql.DB
	publisher    EventPublisher
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler wires the handler. publisher may be nil when SNS is disabled.
func NewHandler(config *Config, db *sql.DB, publisher EventPublisher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
		publisher:    publisher,
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
	pathID := strings.TrimSpace(input.PathID)
	if _, err := uuid.Parse(userID); err != nil {
		return nil, errors.NewValidationError("userId must be a UUID")
	}
	if pathID == "" {
		return nil, errors.NewValidationError("pathId is required")
	}

	code, err := newUniqueCode()
	if err != nil {
		return nil, errors.NewCertificateIssueFailedError(err)
	}

	cert := models.Certificate{UserID: userID, PathID: pathID}
	err = database.WithTx(ctx, h.db, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, existsCertificate, userID, pathID).Scan(&exists); err != nil {
			return errors.NewCertificateIssueFailedError(err)
		}
		if exists {
			return errors.NewCertificateAlreadyIssuedError(userID, pathID)
		}

		var total, completed int
		if err := tx.QueryRowContext(ctx, countPathProgress, userID, pathID).Scan(&total, &completed); err != nil {
			return errors.NewCertificateIssueFailedError(err)
		}
		if total == 0 || completed < total {
			return errors.NewPathNotCompletedError(completed, total)
		}

		err := tx.QueryRowContext(ctx, insertCertificate,
			uuid.New().String(), userID, pathID, code, time.Now().UTC(),
		).Scan(&cert.ID, &cert.UniqueCode, &cert.IssuedAt)
		if database.IsUniqueViolation(err) {
			return errors.NewCertificateAlreadyIssuedError(userID, pathID)
		}
		if err != nil {
			return errors.NewCertificateIssueFailedError(err)
		}
		return nil
	})
	if err != nil {
		var stdErr *errors.StandardError
		if stderrors.As(err, &stdErr) {
			return nil, stdErr
		}
		return nil, errors.NewCertificateIssueFailedError(err)
	}

	h.logger.Info("certificate issued", map[string]interface{}{
		"userId":        userID,
		"pathId":        pathID,
		"certificateId": cert.ID,
	})
	h.publishIssued(ctx, cert)

	return &Output{
		CertificateID: cert.ID,
		UniqueCode:    cert.UniqueCode,
		IssuedAt:      cert.IssuedAt,
	}, nil
}

// newUniqueCode returns 16 uppercase hex characters.
func newUniqueCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate certificate code: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// publishIssued announces the certificate. The row is already committed, so a
// publish failure is logged and the job still completes.
func (h *Handler) publishIssued(ctx context.Context, cert models.Certificate) {
	if h.publisher == nil || h.config.TopicARN == "" {
		return
	}
	event := models.CertificateIssuedEvent{
		CertificateID: cert.ID,
		UserID:        cert.UserID,
		PathID:        cert.PathID,
		UniqueCode:    cert.UniqueCode,
		IssuedAt:      cert.IssuedAt,
	}
	messageID, err := h.publisher.PublishEvent(ctx, h.config.TopicARN, models.EventCertificateIssued, event)
	if err != nil {
		h.logger.Warn("certificate event publish failed", map[string]interface{}{
			"certificateId": cert.ID,
			"error":         err,
		})
		return
	}
	h.logger.Debug("certificate event published", map[string]interface{}{
		"certificateId": cert.ID,
		"messageId":     messageID,
	})
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
		"certificateId": output.CertificateID,
	})
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, timer *metrics.JobTimer) error {
	h.errorHandler.HandleJobError(ctx, client, job, err)
	timer.Done(string(errors.Normalize(err).Code))
	return err
}
