// internal/workers/subscriptions/feature-subscribe/handler.go
package featuresubscribe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"elevate-workers/internal/common/camunda"
	"elevate-workers/internal/common/database"
	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/logger"
	"elevate-workers/internal/common/metrics"
	"elevate-workers/internal/common/validation"
	"elevate-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "feature-subscribe"
)

const insertSubscriber = `INSERT INTO feature_subscribers (email, feature_name) VALUES ($1, $2)`

const (
	msgSubscribed        = "Obrigado! Avisaremos em %s assim que a seção de %s for lançada."
	msgAlreadySubscribed = "Obrigado! Este e-mail já está na nossa lista de espera para esta funcionalidade."
	confirmationSubject  = "Você está na lista de espera: %s"
)

type Handler struct {
	config       *Config
	db           *sql.DB
	mailer       EmailSender
	schema       validation.JSONSchema
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler wires the handler. mailer may be nil when SES is disabled.
func NewHandler(config *Config, db *sql.DB, mailer EmailSender, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
		mailer:       mailer,
		schema:       subscriberSchema(),
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func subscriberSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"email", "feature"},
		Properties: map[string]validation.Property{
			"email":   {Type: "string", Format: "email"},
			"feature": {Type: "string", MinLength: validation.IntPtr(1), MaxLength: validation.IntPtr(100)},
		},
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
	sub := models.FeatureSubscription{
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		FeatureName: strings.TrimSpace(input.Feature),
	}
	doc := map[string]interface{}{"email": sub.Email, "feature": sub.FeatureName}
	if result := validation.ValidateInput(doc, h.schema); !result.Valid {
		return nil, errors.NewValidationError(result.Error()).
			WithMetadata("validationErrors", result.Errors)
	}

	if _, err := h.db.ExecContext(ctx, insertSubscriber, sub.Email, sub.FeatureName); err != nil {
		if database.IsUniqueViolation(err) {
			h.logger.Info("subscriber already registered", map[string]interface{}{
				"feature": sub.FeatureName,
			})
			return &Output{
				AlreadySubscribed: true,
				Message:           msgAlreadySubscribed,
			}, nil
		}
		return nil, errors.NewSubscriptionFailedError(err)
	}

	output := &Output{
		Subscribed: true,
		Message:    fmt.Sprintf(msgSubscribed, sub.Email, sub.FeatureName),
	}
	output.ConfirmationID = h.sendConfirmation(ctx, sub, output.Message)

	h.logger.Info("feature subscriber registered", map[string]interface{}{
		"feature":      sub.FeatureName,
		"confirmation": output.ConfirmationID != "",
	})
	return output, nil
}

// sendConfirmation returns the SES message id, or "" when mail is disabled
// or the send failed. The subscription itself is already stored.
func (h *Handler) sendConfirmation(ctx context.Context, sub models.FeatureSubscription, body string) string {
	if !h.config.SendConfirmation || h.mailer == nil {
		return ""
	}
	id, err := h.mailer.SendText(ctx, sub.Email, fmt.Sprintf(confirmationSubject, sub.FeatureName), body)
	if err != nil {
		h.logger.Warn("confirmation email failed", map[string]interface{}{
			"feature":   sub.FeatureName,
			"errorCode": errors.ErrCodeNotificationFailed,
			"error":     err,
		})
		return ""
	}
	return id
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
		"jobKey":            job.Key,
		"alreadySubscribed": output.AlreadySubscribed,
	})
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, timer *metrics.JobTimer) error {
	h.errorHandler.HandleJobError(ctx, client, job, err)
	timer.Done(string(errors.Normalize(err).Code))
	return err
}
