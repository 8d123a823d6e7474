package backup

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudyskybd/portfolio/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

// Tables lists every site table included in a backup.
var Tables = []string{
	"blog_posts",
	"categories",
	"certifications",
	"contact_info",
	"contact_submissions",
	"content_sections",
	"profiles",
	"seo_metadata",
	"site_settings",
	"skills_entries",
	"social_links",
	"stats_entries",
	"work_experiences",
	"ftp_settings",
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PsqlExporter struct {
	db     rowQuerier
	tables []string
}

func NewPsqlExporter(db rowQuerier) *PsqlExporter {
	return &PsqlExporter{
		db:     db,
		tables: Tables,
	}
}

// Export dumps every table as a JSON array of rows. A table that fails is left out of the
// result and its error is combined into the returned error, the other tables are still exported.
func (e *PsqlExporter) Export(ctx context.Context) (map[string]json.RawMessage, error) {
	ctx, span := tracing.GlobalBackupTracer.Start(ctx, "backup.export")
	defer span.End()

	data := make(map[string]json.RawMessage, len(e.tables))
	var errs error
	for _, table := range e.tables {
		rows, err := e.exportTable(ctx, table)
		if err != nil {
			log.Errorf("backup: export table %s: %s", table, err)
			errs = multierr.Append(errs, fmt.Errorf("table %s: %w", table, err))
			continue
		}
		data[table] = rows
	}

	span.SetAttributes(attribute.Int("tables.exported", len(data)))
	return data, errs
}

func (e *PsqlExporter) exportTable(ctx context.Context, table string) (json.RawMessage, error) {
	query := fmt.Sprintf(
		`SELECT COALESCE(json_agg(row_to_json(t)), '[]'::json) FROM %s t`,
		pgx.Identifier{table}.Sanitize(),
	)

	var raw []byte
	if err := e.db.QueryRow(ctx, query).Scan(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}
