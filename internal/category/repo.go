package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudyskybd/portfolio/internal/telemetry/tracing"
	"github.com/cloudyskybd/portfolio/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
)

const categoryColumns = `id, name, slug, description, created_at, updated_at`

type dbPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ categoryRepo = (*Repo)(nil)

type Repo struct {
	db dbPool
}

func NewRepo(db dbPool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) List(ctx context.Context) ([]*Category, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "categoryRepo.List")
	defer span.End()

	rows, err := r.db.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []*Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *Repo) Create(ctx context.Context, nc NewCategory) (*Category, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "categoryRepo.Create")
	defer span.End()

	c, err := scanCategory(r.db.QueryRow(
		ctx,
		`INSERT INTO categories (name, slug, description) VALUES ($1, $2, $3) RETURNING `+categoryColumns,
		nc.Name, nc.Slug, nc.Description,
	))
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (r *Repo) Update(ctx context.Context, id string, upd Update) (*Category, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "categoryRepo.Update")
	span.SetAttributes(attribute.String("id", id))
	defer span.End()

	sets := []string{"description = $1", "updated_at = now()"}
	args := []any{upd.Description}
	if upd.Name != nil {
		args = append(args, *upd.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if upd.Slug != nil {
		args = append(args, *upd.Slug)
		sets = append(sets, fmt.Sprintf("slug = $%d", len(args)))
	}
	args = append(args, id)

	c, err := scanCategory(r.db.QueryRow(
		ctx,
		fmt.Sprintf(`UPDATE categories SET %s WHERE id = $%d RETURNING %s`, strings.Join(sets, ", "), len(args), categoryColumns),
		args...,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// Delete removes the categories with the given ids. Unknown ids are ignored.
func (r *Repo) Delete(ctx context.Context, ids []string) (int64, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "categoryRepo.Delete")
	span.SetAttributes(attribute.Int("count", len(ids)))
	defer span.End()

	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete categories: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
