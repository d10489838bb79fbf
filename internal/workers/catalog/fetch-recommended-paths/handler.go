// internal/workers/catalog/fetch-recommended-paths/handler.go
package fetchrecommendedpaths

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
	"elevate-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	TaskType = "fetch-recommended-paths"

	cacheName = "path"
)

const selectPaths = `
	SELECT id, title, description, category, difficulty_level, cover_image_url
	FROM paths
	WHERE id = ANY($1)`

func PathCacheKey(id string) string {
	return "catalog:path:" + id
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

// Execute resolves path ids to catalog records in the order given. Ids
// the catalog does not know are dropped and reported in MissingPathIDs.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ids := dedupe(input.PathIDs)
	if len(ids) == 0 {
		return nil, errors.NewValidationError("pathIds must contain at least one id")
	}

	found := make(map[string]models.Path, len(ids))
	misses := h.readCache(ctx, ids, found)

	if len(misses) > 0 {
		loaded, err := h.loadPaths(ctx, misses)
		if err != nil {
			return nil, errors.NewCatalogLookupFailedError(err)
		}
		for _, p := range loaded {
			found[p.ID] = p
		}
		h.writeCache(ctx, loaded)
	}

	output := &Output{
		Paths:          make([]models.Path, 0, len(ids)),
		MissingPathIDs: []string{},
	}
	for _, id := range ids {
		if p, ok := found[id]; ok {
			output.Paths = append(output.Paths, p)
		} else {
			output.MissingPathIDs = append(output.MissingPathIDs, id)
		}
	}
	output.PathCount = len(output.Paths)

	if output.PathCount == 0 {
		return nil, errors.NewRecommendedPathsNotFoundError(ids)
	}
	if len(output.MissingPathIDs) > 0 {
		h.logger.Warn("some recommended paths are missing from the catalog", map[string]interface{}{
			"missing": output.MissingPathIDs,
		})
	}
	return output, nil
}

func (h *Handler) readCache(ctx context.Context, ids []string, found map[string]models.Path) []string {
	if h.redis == nil {
		return ids
	}
	var misses []string
	for _, id := range ids {
		var p models.Path
		hit, err := database.GetJSON(ctx, h.redis, PathCacheKey(id), &p)
		if err != nil {
			h.logger.Warn("path cache read failed", map[string]interface{}{
				"pathId": id,
				"error":  err,
			})
		}
		if !hit {
			metrics.CacheMiss(cacheName)
			misses = append(misses, id)
			continue
		}
		metrics.CacheHit(cacheName)
		found[id] = p
	}
	return misses
}

func (h *Handler) loadPaths(ctx context.Context, ids []string) ([]models.Path, error) {
	rows, err := h.db.QueryContext(ctx, selectPaths, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query paths: %w", err)
	}
	defer rows.Close()

	var paths []models.Path
	for rows.Next() {
		var (
			p           models.Path
			description sql.NullString
			difficulty  sql.NullString
			cover       sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Title, &description, &p.Category, &difficulty, &cover); err != nil {
			return nil, fmt.Errorf("scan path: %w", err)
		}
		p.Description = description.String
		p.DifficultyLevel = difficulty.String
		p.CoverImageURL = cover.String
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paths: %w", err)
	}
	return paths, nil
}

// writeCache stores freshly loaded paths. Errors are logged and ignored.
func (h *Handler) writeCache(ctx context.Context, paths []models.Path) {
	if h.redis == nil || len(paths) == 0 {
		return
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.config.CacheWriters)
	for _, p := range paths {
		p := p
		g.Go(func() error {
			return database.SetJSON(gctx, h.redis, PathCacheKey(p.ID), p, h.config.PathTTL)
		})
	}
	if err := g.Wait(); err != nil {
		h.logger.Warn("path cache write failed", map[string]interface{}{
			"error": err,
		})
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
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
		"jobKey":    job.Key,
		"pathCount": output.PathCount,
	})
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, timer *metrics.JobTimer) error {
	h.errorHandler.HandleJobError(ctx, client, job, err)
	timer.Done(string(errors.Normalize(err).Code))
	return err
}
