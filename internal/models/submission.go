// internal/models/submission.go
package models

import "time"

// TestSubmission is the single stored profile-test result of a user.
type TestSubmission struct {
	ID                 string              `json:"id"`
	UserID             string              `json:"userId"`
	Answers            map[string][]string `json:"answers"`
	RecommendedPathIDs []string            `json:"recommendedPathIds"`
	SubmittedAt        time.Time           `json:"submittedAt"`
}

type FeatureSubscription struct {
	Email       string `json:"email"`
	FeatureName string `json:"featureName"`
}
