// Package archive persists streamed log entries beyond the in-memory buffer.
// Entries are kept in an in-memory DuckDB table that is exported to a parquet
// file in batches and reloaded from it on start.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/arb-console/internal/logger"
	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/rxtech-lab/arb-console/pkg/errors"
	"go.uber.org/zap"
)

// DefaultFlushEvery is the number of writes between parquet exports.
const DefaultFlushEvery = 50

// Query selects archived entries. Zero fields do not filter.
type Query struct {
	Level string
	// Text is matched case-insensitively against message, exchange and symbol.
	Text  string
	Since time.Time
	// Limit keeps the most recent entries. Zero returns everything.
	Limit uint64
}

// LogsWriter archives log entries to a parquet file.
type LogsWriter struct {
	db         *sql.DB
	outputPath string
	flushEvery int
	pending    int
	nextSeq    int64
	sq         squirrel.StatementBuilderType
	logger     *logger.Logger
	mu         sync.Mutex
}

// NewLogsWriter creates a new LogsWriter.
// outputPath is the full path to the parquet file.
func NewLogsWriter(outputPath string, flushEvery int, log *logger.Logger) *LogsWriter {
	if flushEvery <= 0 {
		flushEvery = DefaultFlushEvery
	}

	return &LogsWriter{
		db:         nil,
		outputPath: outputPath,
		flushEvery: flushEvery,
		pending:    0,
		nextSeq:    1,
		sq:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		logger:     log.Named("archive"),
		mu:         sync.Mutex{},
	}
}

// Initialize sets up the logs writer with DuckDB and loads any existing archive.
func (w *LogsWriter) Initialize() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	dir := filepath.Dir(w.outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeArchiveFailed, "failed to create archive directory", err)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeArchiveFailed, "failed to open DuckDB connection", err)
	}

	w.db = db

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS logs (
			seq BIGINT PRIMARY KEY,
			id TEXT,
			timestamp TIMESTAMP,
			level TEXT,
			message TEXT,
			exchange TEXT,
			symbol TEXT,
			data TEXT
		)
	`)
	if err != nil {
		w.db.Close()
		w.db = nil

		return errors.Wrap(errors.ErrCodeArchiveFailed, "failed to create logs table", err)
	}

	if _, err := os.Stat(w.outputPath); err == nil {
		_, err = w.db.Exec(fmt.Sprintf(`INSERT INTO logs SELECT * FROM read_parquet('%s')`, quotePath(w.outputPath)))
		if err != nil {
			w.logger.Error("failed to load existing archive", zap.String("path", w.outputPath), zap.Error(err))
			w.db.Close()
			w.db = nil

			// An unreadable archive must never be overwritten by the next export.
			return errors.Wrapf(errors.ErrCodeArchiveFailed, err, "failed to load existing archive %s", w.outputPath)
		}
	}

	var maxSeq int64
	if err := w.db.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM logs`).Scan(&maxSeq); err != nil {
		w.db.Close()
		w.db = nil

		return errors.Wrap(errors.ErrCodeArchiveFailed, "failed to read archive sequence", err)
	}

	w.nextSeq = maxSeq + 1

	return nil
}

// Write archives one entry. The parquet file is refreshed every flushEvery writes.
func (w *LogsWriter) Write(entry types.LogEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return errors.New(errors.ErrCodeArchiveFailed, "writer not initialized")
	}

	var data sql.NullString
	if len(entry.Data) > 0 {
		data = sql.NullString{String: string(entry.Data), Valid: true}
	}

	_, err := w.sq.
		Insert("logs").
		Columns("seq", "id", "timestamp", "level", "message", "exchange", "symbol", "data").
		Values(w.nextSeq, entry.ID, entry.Time().UTC(), string(entry.Level), entry.Message,
			nullString(entry.Exchange), nullString(entry.Symbol), data).
		RunWith(w.db).
		Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeArchiveFailed, "failed to insert log", err)
	}

	w.nextSeq++
	w.pending++

	if w.pending >= w.flushEvery {
		return w.exportToParquet()
	}

	return nil
}

// Flush forces an export to parquet.
func (w *LogsWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return errors.New(errors.ErrCodeArchiveFailed, "writer not initialized")
	}

	return w.exportToParquet()
}

// Query returns archived entries matching q, oldest first.
func (w *LogsWriter) Query(ctx context.Context, q Query) ([]types.LogEntry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return nil, errors.New(errors.ErrCodeArchiveFailed, "writer not initialized")
	}

	where := squirrel.And{}

	if q.Level != "" && q.Level != "ALL" {
		where = append(where, squirrel.Eq{"level": q.Level})
	}

	if q.Text != "" {
		needle := strings.ToLower(q.Text)
		where = append(where, squirrel.Or{
			squirrel.Expr("contains(lower(message), ?)", needle),
			squirrel.Expr("contains(lower(coalesce(exchange, '')), ?)", needle),
			squirrel.Expr("contains(lower(coalesce(symbol, '')), ?)", needle),
		})
	}

	if !q.Since.IsZero() {
		where = append(where, squirrel.GtOrEq{"timestamp": q.Since.UTC()})
	}

	inner := w.sq.
		Select("seq", "id", "timestamp", "level", "message", "exchange", "symbol", "data").
		From("logs").
		Where(where).
		OrderBy("seq DESC")

	if q.Limit > 0 {
		inner = inner.Limit(q.Limit)
	}

	rows, err := w.sq.
		Select("id", "timestamp", "level", "message", "exchange", "symbol", "data").
		FromSelect(inner, "recent").
		OrderBy("seq ASC").
		RunWith(w.db).
		QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeArchiveFailed, "failed to query logs", err)
	}
	defer rows.Close()

	entries := []types.LogEntry{}

	for rows.Next() {
		var (
			entry     types.LogEntry
			timestamp time.Time
			level     string
			exchange  sql.NullString
			symbol    sql.NullString
			data      sql.NullString
		)

		if err := rows.Scan(&entry.ID, &timestamp, &level, &entry.Message, &exchange, &symbol, &data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeArchiveFailed, "failed to scan log", err)
		}

		entry.Timestamp = timestamp.UnixMilli()
		entry.Level = types.LogLevel(level)
		entry.Exchange = fromNullString(exchange)
		entry.Symbol = fromNullString(symbol)

		if data.Valid {
			entry.Data = json.RawMessage(data.String)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeArchiveFailed, "error iterating logs", err)
	}

	return entries, nil
}

// GetOutputPath returns the parquet file path.
func (w *LogsWriter) GetOutputPath() string {
	return w.outputPath
}

// GetLogCount returns the number of archived logs.
func (w *LogsWriter) GetLogCount() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return 0, errors.New(errors.ErrCodeArchiveFailed, "writer not initialized")
	}

	var count int
	if err := w.db.QueryRow("SELECT COUNT(*) FROM logs").Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeArchiveFailed, "failed to count logs", err)
	}

	return count, nil
}

// Close exports pending entries and releases database resources.
func (w *LogsWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return nil
	}

	var exportErr error
	if w.pending > 0 {
		exportErr = w.exportToParquet()
	}

	if err := w.db.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeArchiveFailed, "failed to close database", err)
	}

	w.db = nil

	return exportErr
}

// exportToParquet exports the current data to the parquet file.
func (w *LogsWriter) exportToParquet() error {
	_, err := w.db.Exec(fmt.Sprintf(`
		COPY (SELECT * FROM logs ORDER BY seq ASC)
		TO '%s' (FORMAT PARQUET)
	`, quotePath(w.outputPath)))
	if err != nil {
		return errors.Wrap(errors.ErrCodeArchiveFailed, "failed to export to parquet", err)
	}

	w.pending = 0

	return nil
}

func quotePath(path string) string {
	return strings.ReplaceAll(path, "'", "''")
}

func nullString(value optional.Option[string]) sql.NullString {
	if value.IsNone() {
		return sql.NullString{String: "", Valid: false}
	}

	return sql.NullString{String: value.TakeOr(""), Valid: true}
}

func fromNullString(value sql.NullString) optional.Option[string] {
	if !value.Valid {
		return optional.None[string]()
	}

	return optional.Some(value.String)
}
