package getpath

import "elevate-workers/internal/models"

type Input struct {
	PathID string `json:"pathId"`
}

type Output struct {
	Path         *models.PathDetail `json:"path"`
	ModuleCount  int                `json:"moduleCount"`
	ContentCount int                `json:"contentCount"`
	Cached       bool               `json:"cached"`
}
