package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudyskybd/portfolio/internal/telemetry/tracing"
	"github.com/cloudyskybd/portfolio/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// manual caching of blog posts not needed (at least for this use case):
// https://github.com/jackc/pgx/wiki/Automatic-Prepared-Statement-Caching

const postColumns = `id, title, slug, content, excerpt, category, tags, status, is_featured, thumbnail_url, author_id, published_at, created_at, updated_at`

// dbPool is the part of pgxpool.Pool the repo needs.
type dbPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ postRepo = (*Repo)(nil)

type Repo struct {
	db dbPool
}

func NewRepo(db dbPool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(ctx context.Context, newPost NewPost) (*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.Create")
	defer span.End()

	row := r.db.QueryRow(
		ctx,
		`INSERT INTO blog_posts (title, slug, content, excerpt, category, tags, status, is_featured, thumbnail_url, author_id, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+postColumns,
		newPost.Title, newPost.Slug, newPost.Content, newPost.Excerpt, newPost.Category, newPost.Tags,
		newPost.Status, newPost.IsFeatured, newPost.ThumbnailURL, newPost.AuthorID, newPost.PublishedAt,
	)

	post, err := scanPost(row)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("insert blog post: %w", err)
	}

	return post, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.Get")
	span.SetAttributes(attribute.String("id", id))
	defer span.End()

	post, err := scanPost(r.db.QueryRow(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("get blog post: %w", err)
	}

	return post, nil
}

// Update applies the patch and returns the updated post. updated_at is always stamped.
func (r *Repo) Update(ctx context.Context, id string, patch *Patch) (*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.Update")
	span.SetAttributes(attribute.String("id", id))
	defer span.End()

	cols := patch.columns()
	if len(cols) == 0 {
		return nil, ErrEmptyPatch
	}

	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		// column names come from a fixed list, never from the request
		sets = append(sets, fmt.Sprintf("%s = $%d", c.name, i+1))
		args = append(args, c.value)
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(
		`UPDATE blog_posts SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), postColumns,
	)

	post, err := scanPost(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("update blog post: %w", err)
	}

	log.Tracef("blog post %s updated, %d columns", id, len(cols))
	return post, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.Delete")
	span.SetAttributes(attribute.String("id", id))
	defer span.End()

	tag, err := r.db.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete blog post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *Repo) PublishedCount(ctx context.Context) (int, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.PublishedCount")
	defer span.End()

	var count int
	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM blog_posts WHERE status = $1`,
		StatusPublished,
	).Scan(&count); err != nil {
		return -1, fmt.Errorf("count published posts: %w", err)
	}
	return count, nil
}

// ListPublished returns one page of published posts, newest first. Pages start at 1.
func (r *Repo) ListPublished(ctx context.Context, page, size int) ([]*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.ListPublished")
	span.SetAttributes(attribute.Int("page", page))
	span.SetAttributes(attribute.Int("size", size))
	defer span.End()

	if page < 1 || size < 1 {
		return nil, fmt.Errorf("invalid page %d / size %d", page, size)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT `+postColumns+` FROM blog_posts
		WHERE status = $1
		ORDER BY published_at DESC NULLS LAST, created_at DESC
		LIMIT $2
		OFFSET $3`,
		StatusPublished, size, (page-1)*size,
	)
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	defer rows.Close()

	return rows2posts(rows)
}

func (r *Repo) GetPublishedBySlug(ctx context.Context, slug string) (*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.GetPublishedBySlug")
	span.SetAttributes(attribute.String("slug", slug))
	defer span.End()

	post, err := scanPost(r.db.QueryRow(
		ctx,
		`SELECT `+postColumns+` FROM blog_posts WHERE slug = $1 AND status = $2`,
		slug, StatusPublished,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("get post by slug: %w", err)
	}
	return post, nil
}

func scanPost(row pgx.Row) (*Post, error) {
	var (
		p           Post
		publishedAt *time.Time
	)
	if err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.Category, &p.Tags, &p.Status,
		&p.IsFeatured, &p.ThumbnailURL, &p.AuthorID, &publishedAt, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.PublishedAt = publishedAt
	p.Tags = nonNilTags(p.Tags)
	return &p, nil
}

func rows2posts(rows pgx.Rows) ([]*Post, error) {
	posts := []*Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}
