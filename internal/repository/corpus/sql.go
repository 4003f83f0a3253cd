package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kailas-cloud/lexai/internal/domain"
)

// Column names of a sql:// corpus table, mapped to the payload field they carry.
var sqlColumns = []struct{ column, field string }{
	{"embedding", FieldEmbeddings},
	{"url", FieldURLs},
	{"title", FieldTitles},
	{"subtitle", FieldSubtitles},
	{"content", FieldContents},
}

const positionColumn = "position"

// database/sql driver names registered by the pgx and modernc imports.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// pgUndefinedTable is the SQLSTATE Postgres reports for a missing relation.
const pgUndefinedTable = "42P01"

func isMissingTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedTable
	}
	return strings.Contains(err.Error(), "no such table")
}

func loadSQL(ctx context.Context, conn *sql.DB, loc Locator) (domain.Corpus, error) {
	if conn == nil {
		return domain.Corpus{}, fmt.Errorf("corpus %s: sql database is not configured", loc.Raw)
	}

	// Table name is validated by ParseLocator.
	probe, err := conn.QueryContext(ctx, "SELECT * FROM "+loc.Target+" WHERE 1=0")
	if err != nil {
		if isMissingTable(err) {
			return domain.Corpus{}, &NotFoundError{Locator: loc.Raw, Err: err}
		}
		return domain.Corpus{}, fmt.Errorf("probe corpus table %s: %w", loc.Raw, err)
	}
	cols, err := probe.Columns()
	_ = probe.Close()
	if err != nil {
		return domain.Corpus{}, fmt.Errorf("read corpus columns %s: %w", loc.Raw, err)
	}

	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[strings.ToLower(c)] = true
	}
	for _, sc := range sqlColumns {
		if !present[sc.column] {
			return domain.Corpus{}, &SchemaError{Locator: loc.Raw, Field: sc.field}
		}
	}

	query := "SELECT embedding, url, title, subtitle, content FROM " + loc.Target
	if present[positionColumn] {
		query += " ORDER BY " + positionColumn
	}
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return domain.Corpus{}, fmt.Errorf("query corpus table %s: %w", loc.Raw, err)
	}
	defer rows.Close()

	var out domain.Corpus
	for rows.Next() {
		row := len(out.Embeddings)
		var cells [5]sql.NullString // ordered as sqlColumns
		if err := rows.Scan(&cells[0], &cells[1], &cells[2], &cells[3], &cells[4]); err != nil {
			return domain.Corpus{}, fmt.Errorf("%w: corpus %s: read row %d: %w", domain.ErrCorpusSchema, loc.Raw, row, err)
		}
		for i, cell := range cells {
			if !cell.Valid {
				return domain.Corpus{}, &SchemaError{
					Locator: loc.Raw,
					Field:   sqlColumns[i].field,
					Reason:  fmt.Sprintf("is NULL in column %q at row %d", sqlColumns[i].column, row),
				}
			}
		}
		rec := domain.DocumentRecord{
			URL:      cells[1].String,
			Title:    cells[2].String,
			Subtitle: cells[3].String,
			Content:  cells[4].String,
		}
		var vec []float32
		if err := json.Unmarshal([]byte(cells[0].String), &vec); err != nil {
			return domain.Corpus{}, &SchemaError{
				Locator: loc.Raw,
				Field:   FieldEmbeddings,
				Reason:  fmt.Sprintf("is malformed at row %d: %v", row, err),
			}
		}
		out.Embeddings = append(out.Embeddings, vec)
		out.Records = append(out.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return domain.Corpus{}, fmt.Errorf("iterate corpus table %s: %w", loc.Raw, err)
	}
	return out, nil
}

// writeSQL replaces the table contents in one transaction.
func writeSQL(ctx context.Context, conn *sql.DB, driver string, loc Locator, c domain.Corpus) (err error) {
	if conn == nil {
		return fmt.Errorf("corpus %s: sql database is not configured", loc.Raw)
	}
	if err := c.ValidateRowCounts(); err != nil {
		return err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin corpus write: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmts := []string{
		"CREATE TABLE IF NOT EXISTS " + loc.Target + " (" +
			"position INTEGER PRIMARY KEY, embedding TEXT NOT NULL, url TEXT NOT NULL, " +
			"title TEXT NOT NULL, subtitle TEXT NOT NULL, content TEXT NOT NULL)",
		"DELETE FROM " + loc.Target,
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("prepare corpus table %s: %w", loc.Raw, err)
		}
	}

	ins, err := tx.PrepareContext(ctx, "INSERT INTO "+loc.Target+
		" (position, embedding, url, title, subtitle, content) VALUES "+placeholders(driver, 6))
	if err != nil {
		return fmt.Errorf("prepare corpus insert: %w", err)
	}
	defer ins.Close()

	for i, rec := range c.Records {
		vec, err := json.Marshal(c.Embeddings[i])
		if err != nil {
			return fmt.Errorf("encode embedding %d: %w", i, err)
		}
		if _, err := ins.ExecContext(ctx, i, string(vec), rec.URL, rec.Title, rec.Subtitle, rec.Content); err != nil {
			return fmt.Errorf("insert corpus row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit corpus write: %w", err)
	}
	return nil
}

// placeholders renders a parenthesized bind list in the driver's dialect.
func placeholders(driver string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		if driver == DriverPostgres {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
