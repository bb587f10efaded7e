package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lakegate/internal/domain"
)

var _ domain.SourceAdapter = (*ParquetAdapter)(nil)

// ParquetAdapter reads transaction records from folders of parquet files
// under a data-lake root, one folder per source, through DuckDB's
// read_parquet. Filter predicates are pushed down into the DuckDB query.
type ParquetAdapter struct {
	db   *sql.DB // DuckDB connection
	root string  // data-lake root directory
}

// NewParquetAdapter creates a ParquetAdapter over the given DuckDB handle
// and data-lake root.
func NewParquetAdapter(db *sql.DB, root string) *ParquetAdapter {
	return &ParquetAdapter{db: db, root: root}
}

// Sources lists folder names under the root that contain parquet files.
func (a *ParquetAdapter) Sources(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(a.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data lake root: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(a.root, e.Name(), "*.parquet"))
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Fetch returns every record in the folder matching the spec. Folders that
// do not exist, or exist without parquet files, fail with a NotFoundError.
func (a *ParquetAdapter) Fetch(ctx context.Context, sourceName string, spec domain.FilterSpec) ([]domain.TransactionRecord, error) {
	dir, err := a.resolveFolder(sourceName)
	if err != nil {
		return nil, err
	}

	where, args := WhereClause(spec)
	// The glob path is interpolated because read_parquet arguments cannot be
	// bound; resolveFolder has already rejected anything but a plain folder
	// name, and quoteLiteral escapes the rest.
	glob := filepath.ToSlash(filepath.Join(dir, "*.parquet"))
	query := fmt.Sprintf("SELECT %s FROM read_parquet(%s)%s", selectList(), quoteLiteral(glob), where)

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read parquet source %q: %w", sourceName, err)
	}
	return scanRecords(rows)
}

// resolveFolder validates the source name and checks the folder holds
// parquet files before any query is built.
func (a *ParquetAdapter) resolveFolder(sourceName string) (string, error) {
	if sourceName == "" || sourceName != filepath.Base(sourceName) || strings.ContainsAny(sourceName, `/\`) || sourceName == ".." {
		return "", domain.ErrNotFound("unknown parquet source %q", sourceName)
	}
	dir := filepath.Join(a.root, sourceName)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", domain.ErrNotFound("unknown parquet source %q", sourceName)
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", domain.ErrNotFound("unknown parquet source %q", sourceName)
	}
	return dir, nil
}

// quoteLiteral wraps s in single quotes, doubling any embedded quote.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
