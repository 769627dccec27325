package mysql

// schemaSQL is applied statement by statement by EnsureSchema.
var schemaSQL = []string{`
CREATE TABLE IF NOT EXISTS sheet_rows (
  tab        VARCHAR(100) NOT NULL,
  row_index  INT          NOT NULL,
  cells      JSON         NOT NULL,
  updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (tab, row_index)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, `
CREATE TABLE IF NOT EXISTS mirror_runs (
  tab         VARCHAR(100) NOT NULL PRIMARY KEY,
  row_count   INT          NOT NULL,
  error       TEXT         NULL,
  mirrored_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

const selectTabSQL = `
SELECT cells
FROM sheet_rows
WHERE tab = ?
ORDER BY row_index
`

// Locks the tab's last row so concurrent appends get distinct indexes.
const lastRowForUpdateSQL = `
SELECT COALESCE(MAX(row_index), 0)
FROM sheet_rows
WHERE tab = ?
FOR UPDATE
`

const insertRowsPrefix = "INSERT INTO sheet_rows (tab, row_index, cells)\nVALUES "

const upsertRowSQL = `
INSERT INTO sheet_rows (tab, row_index, cells)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  cells      = VALUES(cells),
  updated_at = CURRENT_TIMESTAMP
`

const deleteTabSQL = `DELETE FROM sheet_rows WHERE tab = ?`

const upsertMirrorRunSQL = `
INSERT INTO mirror_runs (tab, row_count, error)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  row_count   = VALUES(row_count),
  error       = VALUES(error),
  mirrored_at = CURRENT_TIMESTAMP
`
