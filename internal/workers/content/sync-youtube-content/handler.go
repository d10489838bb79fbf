// internal/workers/content/sync-youtube-content/handler.go
package syncyoutubecontent

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"elevate-workers/internal/common/camunda"
	"elevate-workers/internal/common/errors"
	httpclient "elevate-workers/internal/common/http"
	"elevate-workers/internal/common/logger"
	"elevate-workers/internal/common/metrics"
	"elevate-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "sync-youtube-content"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

const insertContent = `
	INSERT INTO contents (module_id, title, content_type, url, youtube_video_id, description,
		estimated_duration_minutes, thumbnail_url, channel_name, content_order)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id`

const updateContent = `
	UPDATE contents SET
		module_id = $1, title = $2, content_type = $3, url = $4, youtube_video_id = $5,
		description = $6, estimated_duration_minutes = $7, thumbnail_url = $8,
		channel_name = $9, content_order = $10
	WHERE id = $11
	RETURNING id`

type Handler struct {
	config       *Config
	db           *sql.DB
	http         *httpclient.Client
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
		http:         httpclient.NewClient(0, httpclient.WithRetries(config.MaxRetries, 200*time.Millisecond)),
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
	if err := validateInput(input); err != nil {
		return nil, err
	}

	video, err := h.fetchVideo(ctx, input.YouTubeVideoID)
	if err != nil {
		return nil, err
	}

	content := models.Content{
		ModuleID:       input.ModuleID,
		Title:          strings.TrimSpace(input.Title),
		ContentType:    models.ContentTypeVideo,
		URL:            "https://www.youtube.com/watch?v=" + input.YouTubeVideoID,
		YouTubeVideoID: input.YouTubeVideoID,
		Description:    strings.TrimSpace(input.Description),
		ThumbnailURL:   video.thumbnailURL,
		ChannelName:    video.channelName,
		ContentOrder:   input.ContentOrder,
	}
	if content.Description == "" {
		content.Description = video.description
	}
	if input.EstimatedDurationMinutes != nil && *input.EstimatedDurationMinutes > 0 {
		content.EstimatedDurationMinutes = *input.EstimatedDurationMinutes
	} else {
		content.EstimatedDurationMinutes = ParseISODurationMinutes(video.duration)
	}

	if input.ID != nil {
		content.ID = *input.ID
		err = h.db.QueryRowContext(ctx, updateContent, contentArgs(content, content.ID)...).Scan(&content.ID)
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewResourceNotFoundError("contents", fmt.Sprintf("contentId: %d", content.ID))
		}
	} else {
		err = h.db.QueryRowContext(ctx, insertContent, contentArgs(content)...).Scan(&content.ID)
	}
	if err != nil {
		return nil, errors.NewContentSaveFailedError(err)
	}

	h.logger.Info("youtube content saved", map[string]interface{}{
		"contentId":       content.ID,
		"moduleId":        content.ModuleID,
		"videoId":         content.YouTubeVideoID,
		"durationMinutes": content.EstimatedDurationMinutes,
	})

	return &Output{
		ContentID:       content.ID,
		DurationMinutes: content.EstimatedDurationMinutes,
		ThumbnailURL:    content.ThumbnailURL,
		ChannelName:     content.ChannelName,
	}, nil
}

func validateInput(input *Input) error {
	if input.ModuleID <= 0 {
		return errors.NewValidationError("moduleId is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return errors.NewValidationError("title is required")
	}
	if !videoIDPattern.MatchString(input.YouTubeVideoID) {
		return errors.NewValidationError("youtubeVideoId must be an 11 character video id")
	}
	if input.ID != nil && *input.ID <= 0 {
		return errors.NewValidationError("id must be positive")
	}
	return nil
}

func contentArgs(c models.Content, extra ...interface{}) []interface{} {
	args := []interface{}{
		c.ModuleID, c.Title, c.ContentType, c.URL, c.YouTubeVideoID, c.Description,
		c.EstimatedDurationMinutes, c.ThumbnailURL, c.ChannelName, c.ContentOrder,
	}
	return append(args, extra...)
}

type videoDetails struct {
	description  string
	channelName  string
	thumbnailURL string
	duration     string
}

func (h *Handler) fetchVideo(ctx context.Context, videoID string) (*videoDetails, error) {
	query := url.Values{}
	query.Set("id", videoID)
	query.Set("key", h.config.APIKey)
	query.Set("part", "snippet,contentDetails")

	var resp videoListResponse
	endpoint := strings.TrimSuffix(h.config.BaseURL, "/") + "/videos?" + query.Encode()
	if err := h.http.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		// The request URL carries the API key; keep it out of the error.
		var statusErr *httpclient.StatusError
		if stderrors.As(err, &statusErr) {
			return nil, errors.NewVideoLookupFailedError(fmt.Errorf("youtube returned status %d", statusErr.StatusCode))
		}
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewVideoLookupFailedError(context.DeadlineExceeded)
		}
		return nil, errors.NewVideoLookupFailedError(fmt.Errorf("youtube request failed"))
	}
	if len(resp.Items) == 0 {
		return nil, errors.NewVideoNotFoundError(videoID)
	}

	item := resp.Items[0]
	thumb := item.Snippet.Thumbnails.High.URL
	if thumb == "" {
		thumb = item.Snippet.Thumbnails.Medium.URL
	}
	if thumb == "" {
		thumb = item.Snippet.Thumbnails.Default.URL
	}
	return &videoDetails{
		description:  item.Snippet.Description,
		channelName:  item.Snippet.ChannelTitle,
		thumbnailURL: thumb,
		duration:     item.ContentDetails.Duration,
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
		"jobKey":    job.Key,
		"contentId": output.ContentID,
	})
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, timer *metrics.JobTimer) error {
	h.errorHandler.HandleJobError(ctx, client, job, err)
	timer.Done(string(errors.Normalize(err).Code))
	return err
}
