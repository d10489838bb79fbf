package fetchrecommendedpaths

import "elevate-workers/internal/models"

type Input struct {
	PathIDs []string `json:"pathIds"`
}

type Output struct {
	Paths          []models.Path `json:"paths"`
	MissingPathIDs []string      `json:"missingPathIds"`
	PathCount      int           `json:"pathCount"`
}
