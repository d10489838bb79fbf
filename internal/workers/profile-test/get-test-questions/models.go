package gettestquestions

import "elevate-workers/internal/profiletest"

// Input carries no variables; the questionnaire is static.
type Input struct{}

type Output struct {
	Questions     []profiletest.PublicQuestion `json:"questions"`
	QuestionCount int                          `json:"questionCount"`
}
