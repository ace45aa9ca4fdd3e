package db

import (
	"fmt"
	"strings"

	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// UpsertConfig describes an INSERT ... ON CONFLICT statement.
type UpsertConfig struct {
	Table        string
	Columns      []string
	ConflictKeys []string
	UpdateCols   []string // nil = all non-conflict columns
}

// Upsert inserts one row, updating the non-key columns when the
// conflict keys already exist. Returns the affected row count.
func Upsert(ctx context.Context, pool Pool, cfg UpsertConfig, values []any) (int64, error) {
	if len(cfg.Columns) == 0 || len(cfg.ConflictKeys) == 0 {
		return 0, eris.New("db: upsert: columns and conflict keys required")
	}
	if len(values) != len(cfg.Columns) {
		return 0, eris.Errorf("db: upsert: %d values for %d columns", len(values), len(cfg.Columns))
	}

	updateCols := cfg.UpdateCols
	if updateCols == nil {
		conflictSet := make(map[string]bool, len(cfg.ConflictKeys))
		for _, k := range cfg.ConflictKeys {
			conflictSet[k] = true
		}
		for _, c := range cfg.Columns {
			if !conflictSet[c] {
				updateCols = append(updateCols, c)
			}
		}
	}

	placeholders := make([]string, len(cfg.Columns))
	for i := range cfg.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	setClauses := make([]string, len(updateCols))
	for i, col := range updateCols {
		setClauses[i] = fmt.Sprintf("%s = EXCLUDED.%s", quoteIdent(col), quoteIdent(col))
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		quoteIdent(cfg.Table),
		quoteAndJoin(cfg.Columns),
		strings.Join(placeholders, ", "),
		quoteAndJoin(cfg.ConflictKeys),
		strings.Join(setClauses, ", "),
	)

	tag, err := pool.Exec(ctx, sql, values...)
	if err != nil {
		return 0, eris.Wrapf(err, "db: upsert into %s", cfg.Table)
	}
	return tag.RowsAffected(), nil
}

// CopyFrom bulk-inserts rows using the COPY protocol; the fast path for
// evidence rows, which arrive in the hundreds per run.
func CopyFrom(ctx context.Context, pool Pool, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "db: COPY INTO %s", table)
	}
	return n, nil
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}
