package getcompletionstatus

import "elevate-workers/internal/models"

type Input struct {
	UserID string `json:"userId"`
}

// Output keys statuses by content id so a path page can mark each item.
type Output struct {
	UserProgress   map[int64]models.ProgressStatus `json:"userProgress"`
	CompletedCount int                             `json:"completedCount"`
	TrackedCount   int                             `json:"trackedCount"`
}
