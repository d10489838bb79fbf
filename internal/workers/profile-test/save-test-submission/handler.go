// internal/workers/profile-test/save-test-submission/handler.go
package savetestsubmission

import (
	"context"
	"database/sql"
	"encoding/json"
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
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "save-test-submission"
)

// upsertSubmission keeps one row per user; a resubmission overwrites it.
const upsertSubmission = `
	INSERT INTO profile_test_submissions (id, user_id, answers, recommended_path_ids, submitted_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id) DO UPDATE SET
		answers = EXCLUDED.answers,
		recommended_path_ids = EXCLUDED.recommended_path_ids,
		submitted_at = EXCLUDED.submitted_at
	RETURNING id, submitted_at`

// SubmissionCacheKey is where the latest submission of a user is cached.
func SubmissionCacheKey(userID string) string {
	return "profiletest:submission:" + userID
}

type Handler struct {
	config       *Config
	db           *sql.DB
	redis        redis.Cmdable
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, db *sql.DB, rdb redis.Cmdable, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
		redis:        rdb,
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
	answers := input.Answers.Normalize()
	if answers.Empty() {
		return nil, errors.NewEmptySubmissionError()
	}
	if len(input.RecommendedPathIDs) == 0 {
		return nil, errors.NewValidationError("recommendedPathIds is required")
	}

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, errors.NewSubmissionSaveFailedError(userID, fmt.Errorf("encode answers: %w", err))
	}

	submission := models.TestSubmission{
		UserID:             userID,
		RecommendedPathIDs: input.RecommendedPathIDs,
	}
	err = h.db.QueryRowContext(ctx, upsertSubmission,
		uuid.New().String(),
		userID,
		answersJSON,
		pq.Array(input.RecommendedPathIDs),
		time.Now().UTC(),
	).Scan(&submission.ID, &submission.SubmittedAt)
	if err != nil {
		return nil, errors.NewSubmissionSaveFailedError(userID, err)
	}

	submission.Answers = make(map[string][]string, len(answers))
	for qid, sel := range answers {
		submission.Answers[qid] = sel
	}
	h.refreshCache(ctx, submission)

	h.logger.Info("submission saved", map[string]interface{}{
		"userId":       userID,
		"submissionId": submission.ID,
		"pathIds":      input.RecommendedPathIDs,
	})

	return &Output{
		SubmissionID: submission.ID,
		SubmittedAt:  submission.SubmittedAt,
	}, nil
}

// refreshCache overwrites the cached submission. Failures are logged only;
// the row in Postgres is authoritative.
func (h *Handler) refreshCache(ctx context.Context, submission models.TestSubmission) {
	if h.redis == nil {
		return
	}
	if err := database.SetJSON(ctx, h.redis, SubmissionCacheKey(submission.UserID), submission, h.config.SubmissionTTL); err != nil {
		h.logger.Warn("submission cache refresh failed", map[string]interface{}{
			"userId": submission.UserID,
			"error":  err,
		})
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
		"jobKey":       job.Key,
		"submissionId": output.SubmissionID,
	})
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, timer *metrics.JobTimer) error {
	h.errorHandler.HandleJobError(ctx, client, job, err)
	timer.Done(string(errors.Normalize(err).Code))
	return err
}
