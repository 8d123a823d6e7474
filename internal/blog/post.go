package blog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudyskybd/portfolio/pkg"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"

	DefaultAuthorID = "admin"
)

var (
	ErrPostNotFound = errors.New("blog post not found")
	ErrSlugTaken    = errors.New("blog post slug already taken")
	ErrEmptyPatch   = errors.New("no fields to update")
	ErrInvalidPatch = errors.New("invalid blog post fields")
)

type Post struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Content      *string    `json:"content"`
	Excerpt      *string    `json:"excerpt"`
	Category     string     `json:"category"`
	Tags         []string   `json:"tags"`
	Status       string     `json:"status"`
	IsFeatured   bool       `json:"is_featured"`
	ThumbnailURL *string    `json:"thumbnail_url"`
	AuthorID     string     `json:"author_id"`
	PublishedAt  *time.Time `json:"published_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Patch is a partial update of a post. Absent keys are left untouched; null clears nullable columns.
// UpdatedAt is accepted for compatibility with the admin panel and ignored, the repo stamps it.
type Patch struct {
	Title        pkg.Field[string]    `json:"title"`
	Slug         pkg.Field[string]    `json:"slug"`
	Content      pkg.Field[string]    `json:"content"`
	Excerpt      pkg.Field[string]    `json:"excerpt"`
	Category     pkg.Field[string]    `json:"category"`
	Tags         pkg.Field[[]string]  `json:"tags"`
	Status       pkg.Field[string]    `json:"status"`
	IsFeatured   pkg.Field[bool]      `json:"is_featured"`
	ThumbnailURL pkg.Field[string]    `json:"thumbnail_url"`
	AuthorID     pkg.Field[string]    `json:"author_id"`
	PublishedAt  pkg.Field[time.Time] `json:"published_at"`
	UpdatedAt    pkg.Field[time.Time] `json:"updated_at"`
}

type column struct {
	name  string
	value any
}

// columns returns the columns to set, in a stable order.
func (p *Patch) columns() []column {
	var cols []column
	add := func(name string, set bool, value any) {
		if set {
			cols = append(cols, column{name: name, value: value})
		}
	}

	add("title", p.Title.Set(), p.Title.Value())
	add("slug", p.Slug.Set(), p.Slug.Value())
	add("content", p.Content.Set(), p.Content.Ptr())
	add("excerpt", p.Excerpt.Set(), p.Excerpt.Ptr())
	add("category", p.Category.Set(), p.Category.Value())
	add("tags", p.Tags.Set(), nonNilTags(p.Tags.Value()))
	add("status", p.Status.Set(), p.Status.Value())
	add("is_featured", p.IsFeatured.Set(), p.IsFeatured.Value())
	add("thumbnail_url", p.ThumbnailURL.Set(), p.ThumbnailURL.Ptr())
	add("author_id", p.AuthorID.Set(), p.AuthorID.Value())
	add("published_at", p.PublishedAt.Set(), p.PublishedAt.Ptr())

	return cols
}

// Empty reports whether the patch changes nothing.
func (p *Patch) Empty() bool {
	return len(p.columns()) == 0
}

// Validate checks the values of the present fields.
func (p *Patch) Validate() error {
	for _, f := range []struct {
		name  string
		field pkg.Field[string]
	}{
		{"title", p.Title},
		{"slug", p.Slug},
		{"category", p.Category},
		{"author_id", p.AuthorID},
	} {
		if f.field.Set() && (f.field.Null() || strings.TrimSpace(f.field.Value()) == "") {
			return fmt.Errorf("%w: %s cannot be empty", ErrInvalidPatch, f.name)
		}
	}

	if p.Status.Set() && !ValidStatus(p.Status.Value()) {
		return fmt.Errorf("%w: status must be draft or published", ErrInvalidPatch)
	}
	if p.IsFeatured.Set() && p.IsFeatured.Null() {
		return fmt.Errorf("%w: is_featured cannot be null", ErrInvalidPatch)
	}
	if p.Tags.Set() && p.Tags.Null() {
		return fmt.Errorf("%w: tags cannot be null", ErrInvalidPatch)
	}

	return nil
}

// NewPost holds the fields of a post being created.
type NewPost struct {
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Content      *string    `json:"content"`
	Excerpt      *string    `json:"excerpt"`
	Category     string     `json:"category"`
	Tags         []string   `json:"tags"`
	Status       string     `json:"status"`
	IsFeatured   bool       `json:"is_featured"`
	ThumbnailURL *string    `json:"thumbnail_url"`
	AuthorID     string     `json:"author_id"`
	PublishedAt  *time.Time `json:"published_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

// Normalize fills defaults and validates the post. A published post without a publish date is published now.
func (n *NewPost) Normalize(now time.Time) error {
	n.Title = strings.TrimSpace(n.Title)
	n.Slug = strings.TrimSpace(n.Slug)
	if n.Title == "" || n.Slug == "" {
		return fmt.Errorf("%w: title and slug are required", ErrInvalidPatch)
	}
	if n.Status == "" {
		n.Status = StatusDraft
	}
	if !ValidStatus(n.Status) {
		return fmt.Errorf("%w: status must be draft or published", ErrInvalidPatch)
	}
	if n.AuthorID == "" {
		n.AuthorID = DefaultAuthorID
	}
	n.Tags = nonNilTags(n.Tags)
	if n.Status == StatusPublished && n.PublishedAt == nil {
		n.PublishedAt = &now
	}
	return nil
}

func ValidStatus(status string) bool {
	return status == StatusDraft || status == StatusPublished
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
