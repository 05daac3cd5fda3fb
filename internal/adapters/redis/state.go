package redisad

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// optimistic transaction attempts before Update gives up
const maxUpdateAttempts = 10

// StateStore persists operator state as plain keys with no expiry, under an
// optional prefix.
type StateStore struct {
	c      *redis.Client
	prefix string
}

func NewStateStore(c *redis.Client, prefix string) *StateStore {
	return &StateStore{c: c, prefix: prefix}
}

func (s *StateStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.c.Get(ctx, s.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Update is a WATCH/MULTI read-modify-write of key. A concurrent writer
// aborts the transaction and fn is re-run against the newer value.
func (s *StateStore) Update(ctx context.Context, key string, fn func(cur []byte) ([]byte, error)) error {
	k := s.prefix + key
	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, k).Bytes()
		if err == redis.Nil {
			cur, err = nil, nil
		}
		if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			if next == nil {
				p.Del(ctx, k)
			} else {
				p.Set(ctx, k, next, 0)
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateAttempts; i++ {
		err := s.c.Watch(ctx, txf, k)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("update %s: %w", key, redis.TxFailedErr)
}
