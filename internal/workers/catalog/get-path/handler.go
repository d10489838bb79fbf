package getpath

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"elevate-workers/internal/common/camunda"
	"elevate-workers/internal/common/database"
	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/logger"
	"elevate-workers/internal/common/metrics"
	"elevate-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "get-path"

	cacheName = "path_detail"
)

const selectPath = `
	SELECT id, title, COALESCE(description, ''), COALESCE(category, ''),
		COALESCE(difficulty_level, ''), COALESCE(cover_image_url, ''),
		COALESCE(long_description, ''), skills_array, career_opportunities_array
	FROM paths
	WHERE id = $1`

// selectModules returns one row per content. A module without contents
// comes back once with NULL content columns.
const selectModules = `
	SELECT m.id, m.title, m.module_order,
		c.id, COALESCE(c.title, ''), COALESCE(c.content_type, ''), COALESCE(c.url, ''),
		COALESCE(c.youtube_video_id, ''), COALESCE(c.description, ''),
		COALESCE(c.estimated_duration_minutes, 0), COALESCE(c.thumbnail_url, ''),
		COALESCE(c.channel_name, ''), COALESCE(c.content_order, 0)
	FROM modules m
	LEFT JOIN contents c ON c.module_id = m.id
	WHERE m.path_id = $1
	ORDER BY m.module_order ASC, c.content_order ASC`

func PathDetailCacheKey(id string) string {
	return "catalog:path-detail:" + id
}

type Handler struct {
	config       *Config
	db           *sql.DB
	redis        redis.Cmdable
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler wires the handler. rdb may be nil to read straight from Postgres.
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
	pathID := strings.TrimSpace(input.PathID)
	if pathID == "" {
		return nil, errors.NewValidationError("pathId is required")
	}

	if detail, ok := h.readCache(ctx, pathID); ok {
		return newOutput(detail, true), nil
	}

	detail, err := h.loadPath(ctx, pathID)
	if err != nil {
		return nil, err
	}
	h.writeCache(ctx, detail)
	return newOutput(detail, false), nil
}

func newOutput(detail *models.PathDetail, cached bool) *Output {
	return &Output{
		Path:         detail,
		ModuleCount:  len(detail.Modules),
		ContentCount: detail.ContentCount(),
		Cached:       cached,
	}
}

func (h *Handler) loadPath(ctx context.Context, pathID string) (*models.PathDetail, error) {
	var detail models.PathDetail
	err := h.db.QueryRowContext(ctx, selectPath, pathID).Scan(
		&detail.ID, &detail.Title, &detail.Description, &detail.Category,
		&detail.DifficultyLevel, &detail.CoverImageURL, &detail.LongDescription,
		pq.Array(&detail.Skills), pq.Array(&detail.CareerOpportunities),
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewPathNotFoundError(pathID)
	}
	if err != nil {
		return nil, errors.NewCatalogLookupFailedError(err)
	}
	if detail.Skills == nil {
		detail.Skills = []string{}
	}
	if detail.CareerOpportunities == nil {
		detail.CareerOpportunities = []string{}
	}

	modules, err := h.loadModules(ctx, pathID)
	if err != nil {
		return nil, errors.NewCatalogLookupFailedError(err)
	}
	detail.Modules = modules
	return &detail, nil
}

func (h *Handler) loadModules(ctx context.Context, pathID string) ([]models.Module, error) {
	rows, err := h.db.QueryContext(ctx, selectModules, pathID)
	if err != nil {
		return nil, fmt.Errorf("query modules: %w", err)
	}
	defer rows.Close()

	modules := make([]models.Module, 0)
	for rows.Next() {
		var (
			m         models.Module
			c         models.Content
			contentID sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.Title, &m.ModuleOrder,
			&contentID, &c.Title, &c.ContentType, &c.URL, &c.YouTubeVideoID, &c.Description,
			&c.EstimatedDurationMinutes, &c.ThumbnailURL, &c.ChannelName, &c.ContentOrder); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		if n := len(modules); n == 0 || modules[n-1].ID != m.ID {
			m.Contents = make([]models.Content, 0)
			modules = append(modules, m)
		}
		if contentID.Valid {
			c.ID = contentID.Int64
			c.ModuleID = m.ID
			last := &modules[len(modules)-1]
			last.Contents = append(last.Contents, c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate modules: %w", err)
	}
	return modules, nil
}

func (h *Handler) readCache(ctx context.Context, pathID string) (*models.PathDetail, bool) {
	if h.redis == nil || h.config.PathTTL == 0 {
		return nil, false
	}
	var detail models.PathDetail
	hit, err := database.GetJSON(ctx, h.redis, PathDetailCacheKey(pathID), &detail)
	if err != nil {
		h.logger.Warn("path detail cache read failed", map[string]interface{}{
			"pathId": pathID,
			"error":  err,
		})
	}
	if !hit {
		metrics.CacheMiss(cacheName)
		return nil, false
	}
	metrics.CacheHit(cacheName)
	return &detail, true
}

// writeCache stores the loaded detail. Errors are logged and ignored.
func (h *Handler) writeCache(ctx context.Context, detail *models.PathDetail) {
	if h.redis == nil || h.config.PathTTL == 0 {
		return
	}
	if err := database.SetJSON(ctx, h.redis, PathDetailCacheKey(detail.ID), detail, h.config.PathTTL); err != nil {
		h.logger.Warn("path detail cache write failed", map[string]interface{}{
			"pathId": detail.ID,
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
		"pathId":       output.Path.ID,
		"contentCount": output.ContentCount,
	})
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, timer *metrics.JobTimer) error {
	h.errorHandler.HandleJobError(ctx, client, job, err)
	timer.Done(string(errors.Normalize(err).Code))
	return err
}
