// internal/models/path.go
package models

// Path is a learning path from the catalog.
type Path struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	DifficultyLevel string `json:"difficultyLevel"`
	CoverImageURL   string `json:"coverImageUrl"`
}

type Pagination struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
}

// NewPagination derives the page count; a zero limit yields zero pages.
func NewPagination(total, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		TotalItems:  total,
		TotalPages:  pages,
		CurrentPage: page,
		Limit:       limit,
	}
}

// PathDetail is a path with its ordered modules and their ordered contents.
type PathDetail struct {
	Path
	LongDescription     string   `json:"longDescription"`
	Skills              []string `json:"skills"`
	CareerOpportunities []string `json:"careerOpportunities"`
	Modules             []Module `json:"modules"`
}

type Module struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	ModuleOrder int       `json:"moduleOrder"`
	Contents    []Content `json:"contents"`
}

// ContentCount totals the contents across all modules.
func (p PathDetail) ContentCount() int {
	n := 0
	for _, m := range p.Modules {
		n += len(m.Contents)
	}
	return n
}
