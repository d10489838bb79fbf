package savetestsubmission

import (
	"time"

	"elevate-workers/internal/profiletest"
)

type Input struct {
	UserID             string                `json:"userId"`
	Answers            profiletest.AnswerSet `json:"answers"`
	RecommendedPathIDs []string              `json:"recommendedPathIds"`
}

type Output struct {
	SubmissionID string    `json:"submissionId"`
	SubmittedAt  time.Time `json:"submittedAt"`
}
