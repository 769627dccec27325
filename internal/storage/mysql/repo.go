package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

func valErr(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}

// Repo is a domain.TabStore over MySQL: each spreadsheet row is one JSON array
// keyed by (tab, row_index). It serves local development and the offline mirror.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// EnsureSchema creates the tables when they do not exist yet.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaSQL {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (r *Repo) Values(ctx context.Context, tab string) ([][]string, error) {
	rows, err := r.db.QueryContext(ctx, selectTabSQL, tab)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var cells []string
		if err := json.Unmarshal(raw, &cells); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", tab, err)
		}
		out = append(out, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) Append(ctx context.Context, tab string, rs [][]string) error {
	if len(rs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var last int
	if err := tx.QueryRowContext(ctx, lastRowForUpdateSQL, tab).Scan(&last); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, tab, last+1, rs); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Repo) UpdateRow(ctx context.Context, tab string, rowIndex int, values []string) error {
	if rowIndex < 1 {
		return fmt.Errorf("update %s: invalid row %d", tab, rowIndex)
	}
	cells, err := json.Marshal(values)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, upsertRowSQL, tab, rowIndex, string(cells))
	return err
}

// ReplaceTab swaps the whole content of tab for rows (header first) in one transaction.
func (r *Repo) ReplaceTab(ctx context.Context, tab string, rs [][]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteTabSQL, tab); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, tab, 1, rs); err != nil {
		return err
	}
	return tx.Commit()
}

// LogMirror records the outcome of mirroring one tab.
func (r *Repo) LogMirror(ctx context.Context, tab string, rowCount int, mirrorErr error) error {
	_, err := r.db.ExecContext(ctx, upsertMirrorRunSQL, tab, rowCount, valErr(mirrorErr))
	return err
}

func insertRows(ctx context.Context, tx *sql.Tx, tab string, first int, rs [][]string) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*3)
	for i, row := range rs {
		if row == nil {
			row = []string{}
		}
		cells, err := json.Marshal(row)
		if err != nil {
			return err
		}
		values = append(values, "(?,?,?)")
		args = append(args, tab, first+i, string(cells))
	}
	_, err := tx.ExecContext(ctx, insertRowsPrefix+strings.Join(values, ","), args...)
	return err
}
