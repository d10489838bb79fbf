package searchpaths

import "elevate-workers/internal/models"

type Input struct {
	Search   string `json:"search"`
	Category string `json:"category"`
	Level    string `json:"level"`
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
}

type Output struct {
	Data       []models.Path     `json:"data"`
	Pagination models.Pagination `json:"pagination"`
}

// pathDocument is the _source layout of the paths index.
type pathDocument struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	DifficultyLevel string `json:"difficulty_level"`
	CoverImageURL   string `json:"cover_image_url"`
}

func (d pathDocument) toPath(fallbackID string) models.Path {
	id := d.ID
	if id == "" {
		id = fallbackID
	}
	return models.Path{
		ID:              id,
		Title:           d.Title,
		Description:     d.Description,
		Category:        d.Category,
		DifficultyLevel: d.DifficultyLevel,
		CoverImageURL:   d.CoverImageURL,
	}
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string       `json:"_id"`
			Source pathDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}
