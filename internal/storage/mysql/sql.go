package mysql

const createStateSQL = `
CREATE TABLE IF NOT EXISTS kv_state (
  k          VARCHAR(191) NOT NULL PRIMARY KEY,
  v          MEDIUMBLOB   NOT NULL,
  updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

const getStateSQL = `SELECT v FROM kv_state WHERE k = ?`

// The no-op update takes an exclusive lock on an existing row as well.
const reserveStateSQL = `
INSERT INTO kv_state (k, v)
VALUES (?, '')
ON DUPLICATE KEY UPDATE k = k
`

const lockStateSQL = `SELECT v FROM kv_state WHERE k = ? FOR UPDATE`

const updateStateSQL = `
UPDATE kv_state
SET v          = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE k = ?
`

const deleteStateSQL = `DELETE FROM kv_state WHERE k = ?`
