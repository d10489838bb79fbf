package validatecertificate

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"elevate-workers/internal/common/camunda"
	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/logger"
	"elevate-workers/internal/common/metrics"
	"elevate-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-certificate"
)

const selectCertificate = `
	SELECT c.unique_code, c.issued_at, p.title,
		COALESCE(u.raw_user_meta_data->>'full_name', '')
	FROM certificates c
	JOIN paths p ON p.id = c.path_id
	LEFT JOIN auth.users u ON u.id = c.user_id
	WHERE c.unique_code = $1`

var monthsPtBR = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

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
	code := strings.ToUpper(strings.TrimSpace(input.UniqueCode))
	if code == "" {
		return nil, errors.NewValidationError("uniqueCode is required")
	}

	var (
		output   = Output{Valid: true}
		fullName string
	)
	err := h.db.QueryRowContext(ctx, selectCertificate, code).
		Scan(&output.UniqueCode, &output.IssuedAt, &output.PathTitle, &fullName)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewCertificateNotFoundError(fmt.Sprintf("uniqueCode: %s", code))
	}
	if err != nil {
		return nil, errors.NewCertificateLookupFailedError(err)
	}

	output.HolderName = strings.TrimSpace(fullName)
	if output.HolderName == "" {
		output.HolderName = models.DefaultCertificateHolder
	}
	output.IssuedDate = formatDatePtBR(output.IssuedAt)
	output.ValidationURL = h.config.ValidationURL + output.UniqueCode
	return &output, nil
}

// formatDatePtBR renders t as "2 de maio de 2026".
func formatDatePtBR(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthsPtBR[t.Month()-1], t.Year())
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
		"jobKey":     job.Key,
		"uniqueCode": output.UniqueCode,
	})
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, timer *metrics.JobTimer) error {
	h.errorHandler.HandleJobError(ctx, client, job, err)
	timer.Done(string(errors.Normalize(err).Code))
	return err
}
