package validatetestanswers

import "elevate-workers/internal/profiletest"

// Input keeps answers untyped so malformed shapes reach the schema check
// instead of failing the JSON decode.
type Input struct {
	Answers interface{} `json:"answers"`
}

type Output struct {
	Valid         bool                  `json:"valid"`
	Answers       profiletest.AnswerSet `json:"answers"`
	AnsweredCount int                   `json:"answeredCount"`
}
