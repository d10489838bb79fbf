package updatecontentprogress

import "elevate-workers/internal/models"

type Input struct {
	UserID    string                `json:"userId"`
	ContentID int64                 `json:"contentId"`
	Status    models.ProgressStatus `json:"status"`
	Delete    bool                  `json:"delete"`
}

type Output struct {
	Progress *models.ContentProgress `json:"progress,omitempty"`
	Deleted  bool                    `json:"deleted"`
}
