// internal/workers/catalog/search-paths/handler.go
package searchpaths

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"elevate-workers/internal/common/camunda"
	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/logger"
	"elevate-workers/internal/common/metrics"
	"elevate-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	TaskType = "search-paths"
)

type Handler struct {
	config       *Config
	client       *elasticsearch.Client
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		client:       client,
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

// normalizePaging applies the page and limit defaults and bounds.
func (h *Handler) normalizePaging(input *Input) (page, limit int, err error) {
	page, limit = input.Page, input.Limit
	if page < 0 {
		return 0, 0, errors.NewValidationError("page must be at least 1")
	}
	if page == 0 {
		page = 1
	}
	if limit < 0 || limit > h.config.MaxLimit {
		return 0, 0, errors.NewValidationError(fmt.Sprintf("limit must be between 1 and %d", h.config.MaxLimit))
	}
	if limit == 0 {
		limit = h.config.DefaultLimit
	}
	return page, limit, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	page, limit, err := h.normalizePaging(input)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(buildQuery(input))
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(err)
	}

	from := (page - 1) * limit
	req := esapi.SearchRequest{
		Index: []string{h.config.Index},
		Body:  strings.NewReader(string(body)),
		From:  &from,
		Size:  &limit,
	}

	res, err := req.Do(ctx, h.client)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewSearchTimeoutError()
		}
		return nil, errors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(fmt.Errorf("search returned %s", res.Status()))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewSearchQueryFailedError(fmt.Errorf("decode response: %w", err))
	}

	paths := make([]models.Path, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		paths = append(paths, hit.Source.toPath(hit.ID))
	}

	h.logger.Info("path search completed", map[string]interface{}{
		"search":    input.Search,
		"category":  input.Category,
		"level":     input.Level,
		"totalHits": parsed.Hits.Total.Value,
		"page":      page,
	})

	return &Output{
		Data:       paths,
		Pagination: models.NewPagination(parsed.Hits.Total.Value, page, limit),
	}, nil
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
		"totalItems": output.Pagination.TotalItems,
	})
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, timer *metrics.JobTimer) error {
	h.errorHandler.HandleJobError(ctx, client, job, err)
	timer.Done(string(errors.Normalize(err).Code))
	return err
}
