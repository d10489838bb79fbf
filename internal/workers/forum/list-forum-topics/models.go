package listforumtopics

import "elevate-workers/internal/models"

type Input struct {
	Category string `json:"category"`
	Limit    int    `json:"limit"`
}

type Output struct {
	Topics     []models.Topic `json:"topics"`
	TopicCount int            `json:"topicCount"`
}
