package calculateprofileresult

import "elevate-workers/internal/profiletest"

type Input struct {
	UserID  string                `json:"userId"`
	Answers profiletest.AnswerSet `json:"answers"`
}

type Output struct {
	Scores             profiletest.ScoreVector      `json:"scores"`
	Recommendations    []profiletest.Recommendation `json:"recommendations"`
	RecommendedPathIDs []string                     `json:"recommendedPathIds"`
	TopCategory        string                       `json:"topCategory"`
}
