package createforumtopic

import "elevate-workers/internal/models"

type Input struct {
	UserID   string `json:"userId"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

type Output struct {
	Topic *models.Topic `json:"topic"`
}
