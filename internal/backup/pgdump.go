package backup

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/SaltaGet/Back-SIJAC/internal/storage"
	"github.com/SaltaGet/Back-SIJAC/internal/timezone"
)

var DefaultTables = []string{
	"users",
	"availabilities",
	"appointments",
	"clients",
	"cases",
	"user_cases",
	"blogs",
	"audit_logs",
}

// Exporter streams one table as CSV into w.
type Exporter interface {
	Export(ctx context.Context, table string, w io.Writer) error
}

type PgxExporter struct {
	pool *pgxpool.Pool
}

func NewPgxExporter(pool *pgxpool.Pool) *PgxExporter {
	return &PgxExporter{pool: pool}
}

func (e *PgxExporter) Export(ctx context.Context, table string, w io.Writer) error {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	sql := fmt.Sprintf(
		"COPY %s TO STDOUT (FORMAT csv, HEADER)",
		pgx.Identifier{table}.Sanitize(),
	)
	if _, err := conn.Conn().PgConn().CopyTo(ctx, w, sql); err != nil {
		return fmt.Errorf("copy %s: %w", table, err)
	}
	return nil
}

// ======================================================
// TASK
// ======================================================

// DatabaseTask uploads BACKUP_PREFIX/<date>/<table>.csv.gz for each table.
type DatabaseTask struct {
	exporter Exporter
	store    storage.ObjectStore
	prefix   string
	tables   []string
	log      *zap.Logger
	now      func() time.Time
}

func NewDatabaseTask(
	exporter Exporter,
	store storage.ObjectStore,
	prefix string,
	tables []string,
	log *zap.Logger,
	now func() time.Time,
) *DatabaseTask {
	if len(tables) == 0 {
		tables = DefaultTables
	}
	return &DatabaseTask{
		exporter: exporter,
		store:    store,
		prefix:   prefix,
		tables:   tables,
		log:      log,
		now:      now,
	}
}

func (t *DatabaseTask) Name() string { return "database" }

func (t *DatabaseTask) Run(ctx context.Context) error {
	day := t.now().Format(timezone.DateLayout)

	for _, table := range t.tables {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)

		if err := t.exporter.Export(ctx, table, zw); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("gzip %s: %w", table, err)
		}

		key := fmt.Sprintf("%s/%s/%s.csv.gz", t.prefix, day, table)
		if err := t.store.Put(ctx, key, "application/gzip", buf.Bytes()); err != nil {
			return err
		}

		t.log.Debug("table exported",
			zap.String("table", table),
			zap.String("key", key),
			zap.Int("bytes", buf.Len()),
		)
	}

	return nil
}
