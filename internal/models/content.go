// internal/models/content.go
package models

import "time"

const ContentTypeVideo = "video"

type Content struct {
	ID                       int64  `json:"id"`
	ModuleID                 int64  `json:"moduleId"`
	Title                    string `json:"title"`
	ContentType              string `json:"contentType"`
	URL                      string `json:"url"`
	YouTubeVideoID           string `json:"youtubeVideoId"`
	Description              string `json:"description"`
	EstimatedDurationMinutes int    `json:"estimatedDurationMinutes"`
	ThumbnailURL             string `json:"thumbnailUrl"`
	ChannelName              string `json:"channelName"`
	ContentOrder             int    `json:"contentOrder"`
}

type ProgressStatus string

const (
	ProgressStarted    ProgressStatus = "started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

func (s ProgressStatus) Valid() bool {
	switch s {
	case ProgressStarted, ProgressInProgress, ProgressCompleted:
		return true
	}
	return false
}

type ContentProgress struct {
	UserID      string         `json:"userId"`
	ContentID   int64          `json:"contentId"`
	Status      ProgressStatus `json:"status"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
