package getforumtopic

import "elevate-workers/internal/models"

type Input struct {
	Slug string `json:"slug"`
}

type Output struct {
	Topic     *models.Topic `json:"topic"`
	Posts     []models.Post `json:"posts"`
	PostCount int           `json:"postCount"`
}
