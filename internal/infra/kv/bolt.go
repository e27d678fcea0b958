// Package kv provides key-value storage implementations behind the
// domain.KeyValueStore contract.
package kv

import (
	"context"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var bucketName = []byte("media-catalog")

// Bolt implements domain.KeyValueStore on a local bbolt database file.
type Bolt struct {
	db     *bolt.DB
	logger *zap.Logger
}

// OpenBolt opens (or creates) the database file and ensures the bucket
// exists.
func OpenBolt(path string, logger *zap.Logger) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("bolt store opened", zap.String("path", path))
	return &Bolt{db: db, logger: logger}, nil
}

// GetItem retrieves the value for a key. Returns (nil, nil) when the
// key is absent.
func (b *Bolt) GetItem(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v != nil {
			value = make([]byte, len(v))
			copy(value, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// SetItem stores a value under a key, replacing any existing value.
func (b *Bolt) SetItem(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
}

// RemoveItem deletes a key. Removing an absent key is not an error.
func (b *Bolt) RemoveItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
}

// Close closes the underlying database.
func (b *Bolt) Close() error {
	return b.db.Close()
}
