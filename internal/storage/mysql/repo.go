package mysql

import (
	"context"
	"database/sql"
	"errors"

	mysqldrv "github.com/go-sql-driver/mysql"
)

// InnoDB lock errors worth retrying: deadlock and lock wait timeout.
const (
	errDeadlock        = 1213
	errLockWaitTimeout = 1205
	maxUpdateAttempts  = 5
)

// Repo is a key-value state store backed by the kv_state table.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// EnsureSchema creates kv_state when it does not exist yet.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createStateSQL)
	return err
}

// Get treats an empty value as absent; Update leaves one behind only inside
// its own uncommitted transaction.
func (r *Repo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := r.db.QueryRowContext(ctx, getStateSQL, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(v) == 0 {
		return nil, false, nil
	}
	return v, true, nil
}

// Update locks the key's row for the length of a transaction, so concurrent
// writers from any process apply their changes one after another. A
// transaction chosen as a deadlock victim is retried.
func (r *Repo) Update(ctx context.Context, key string, fn func(cur []byte) ([]byte, error)) error {
	var err error
	for i := 0; i < maxUpdateAttempts; i++ {
		if err = r.update(ctx, key, fn); !retryable(err) {
			return err
		}
	}
	return err
}

func retryable(err error) bool {
	var me *mysqldrv.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == errDeadlock || me.Number == errLockWaitTimeout
}

func (r *Repo) update(ctx context.Context, key string, fn func(cur []byte) ([]byte, error)) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// an absent key gets an empty placeholder row so there is a row to lock
	if _, err = tx.ExecContext(ctx, reserveStateSQL, key); err != nil {
		return err
	}
	var cur []byte
	if err = tx.QueryRowContext(ctx, lockStateSQL, key).Scan(&cur); err != nil {
		return err
	}
	if len(cur) == 0 {
		cur = nil
	}

	next, err := fn(cur)
	if err != nil {
		return err
	}
	if next == nil {
		_, err = tx.ExecContext(ctx, deleteStateSQL, key)
	} else {
		_, err = tx.ExecContext(ctx, updateStateSQL, next, key)
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}
