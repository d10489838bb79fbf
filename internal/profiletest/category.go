package profiletest

import "fmt"

// Category is a career track the scorer can recommend. The zero value is
// not a valid category.
type Category int

const (
	Frontend Category = iota + 1
	Backend
	Fullstack
	QA
	DevOps
	DataScience
	UXUI
)

// numCategories is the size of every ScoreVector.
const numCategories = int(UXUI)

// Categories lists every category in declaration order. Ranking ties are
// broken by this order.
var Categories = []Category{Frontend, Backend, Fullstack, QA, DevOps, DataScience, UXUI}

// CategoryMetadata is what a recommendation shows for a category.
type CategoryMetadata struct {
	Key    string
	Name   string
	PathID string
}

var metadata = [numCategories]CategoryMetadata{
	{Key: "frontend", Name: "Desenvolvedor Front-End", PathID: "frontend"},
	{Key: "backend", Name: "Desenvolvedor Back-End", PathID: "backend"},
	{Key: "fullstack", Name: "Desenvolvedor Full Stack", PathID: "fullstack"},
	{Key: "qa", Name: "Engenheiro de Qualidade (QA)", PathID: "qa"},
	{Key: "devops", Name: "Engenheiro DevOps", PathID: "devops"},
	{Key: "datascience", Name: "Cientista de Dados & IA", PathID: "data_ai"},
	{Key: "uxui", Name: "Designer UX/UI", PathID: "ux_ui"},
}

var byKey = func() map[string]Category {
	m := make(map[string]Category, numCategories)
	for _, c := range Categories {
		m[c.String()] = c
	}
	return m
}()

func (c Category) Valid() bool {
	return c >= Frontend && c <= UXUI
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return metadata[c-1].Key
}

// Metadata panics on an invalid category.
func (c Category) Metadata() CategoryMetadata {
	return metadata[c-1]
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, ok := ParseCategory(string(text))
	if !ok {
		return fmt.Errorf("unknown category %q", string(text))
	}
	*c = parsed
	return nil
}

// ParseCategory maps a category key such as "datascience" to its Category.
func ParseCategory(key string) (Category, bool) {
	c, ok := byKey[key]
	return c, ok
}
