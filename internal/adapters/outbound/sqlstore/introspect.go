package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/openkraft/schemactl/internal/domain"
)

// Tables describes every table of the database, sorted by name.
func (s *Service) Tables(ctx context.Context) ([]domain.TableInfo, error) {
	db, err := s.database(ctx)
	if err != nil {
		return nil, err
	}
	return tables(ctx, db)
}

func tables(ctx context.Context, db *sql.DB) ([]domain.TableInfo, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("listing tables: %w", err)
		}
		names = append(names, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	out := make([]domain.TableInfo, 0, len(names))
	for _, name := range names {
		cols, err := columns(ctx, db, name)
		if err != nil {
			return nil, err
		}
		idx, err := indexes(ctx, db, name)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.TableInfo{Name: name, Columns: cols, Indexes: idx})
	}
	return out, nil
}

func columns(ctx context.Context, db *sql.DB, table string) ([]domain.ColumnInfo, error) {
	query := `PRAGMA table_info(` + quoteIdent(table) + `)`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("describing %s: %w", table, err)
	}
	defer rows.Close()

	var cols []domain.ColumnInfo
	for rows.Next() {
		var (
			cid         int
			name, ctype string
			notNull, pk int
			dflt        sql.NullString
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("describing %s: %w", table, err)
		}
		cols = append(cols, domain.ColumnInfo{Name: name, Type: ctype, NotNull: notNull != 0, PrimaryKey: pk != 0})
	}
	return cols, rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// indexes lists the indexes created with CREATE INDEX on table. Indexes
// backing PRIMARY KEY and UNIQUE constraints go away with the table and are
// skipped.
func indexes(ctx context.Context, db *sql.DB, table string) ([]domain.IndexInfo, error) {
	rows, err := db.QueryContext(ctx, `PRAGMA index_list(`+quoteIdent(table)+`)`)
	if err != nil {
		return nil, fmt.Errorf("listing indexes of %s: %w", table, err)
	}
	var out []domain.IndexInfo
	for rows.Next() {
		var (
			seq, unique, partial int
			name, origin         string
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return nil, fmt.Errorf("listing indexes of %s: %w", table, err)
		}
		if origin != "c" {
			continue
		}
		out = append(out, domain.IndexInfo{Name: name, Unique: unique != 0})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing indexes of %s: %w", table, err)
	}

	for i := range out {
		cols, err := indexColumns(ctx, db, out[i].Name)
		if err != nil {
			return nil, err
		}
		out[i].Columns = cols

		var def sql.NullString
		err = db.QueryRowContext(ctx,
			`SELECT sql FROM sqlite_master WHERE type = 'index' AND name = ?`, out[i].Name).Scan(&def)
		if err != nil {
			return nil, fmt.Errorf("reading index %s: %w", out[i].Name, err)
		}
		out[i].Definition = def.String
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func indexColumns(ctx context.Context, db *sql.DB, index string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `PRAGMA index_info(`+quoteIdent(index)+`)`)
	if err != nil {
		return nil, fmt.Errorf("describing index %s: %w", index, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			seqno, cid int
			name       sql.NullString
		)
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, fmt.Errorf("describing index %s: %w", index, err)
		}
		// Expression columns have no name.
		if name.Valid {
			cols = append(cols, name.String)
		}
	}
	return cols, rows.Err()
}

func tableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND lower(name) = lower(?)`, table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking table %s: %w", table, err)
	}
	return n > 0, nil
}
