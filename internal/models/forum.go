// internal/models/forum.go
package models

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UnknownAuthor is shown when a topic or post author has no full name.
const UnknownAuthor = "Usuário Desconhecido"

type Topic struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Slug           string    `json:"slug"`
	Category       string    `json:"category,omitempty"`
	UserID         string    `json:"userId"`
	AuthorName     string    `json:"authorName"`
	PostCount      int       `json:"postCount"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
}

type Post struct {
	ID         string    `json:"id"`
	TopicID    string    `json:"topicId"`
	UserID     string    `json:"userId"`
	AuthorName string    `json:"authorName"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Slugify lowercases title, strips diacritics and joins the remaining
// letters and digits with single hyphens. "Dúvidas sobre Go?" becomes
// "duvidas-sobre-go".
func Slugify(title string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		title,
	)
	if err != nil {
		stripped = title
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(stripped) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			pendingDash = true
		}
	}
	return b.String()
}

// AuthorOrUnknown substitutes UnknownAuthor for a blank name.
func AuthorOrUnknown(name string) string {
	if strings.TrimSpace(name) == "" {
		return UnknownAuthor
	}
	return name
}
