package client

import (
	"context"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
)

var mirrorBucket = []byte("content")

// BoltMirror stores the mirrored document in a local bolt file. This
// is the default mirror: it survives restarts, so the cache can serve
// content while the API is unreachable.
type BoltMirror struct {
	db *bolt.DB
}

// NewBoltMirror opens (or creates) the mirror file. The open carries a
// timeout so a locked file fails terminally instead of blocking.
func NewBoltMirror(path string) (*BoltMirror, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open mirror db %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(mirrorBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create mirror bucket: %w", err)
	}
	return &BoltMirror{db: db}, nil
}

func (m *BoltMirror) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := m.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(mirrorBucket).Get([]byte(key))
		if v == nil {
			return ErrMirrorMiss
		}
		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (m *BoltMirror) Set(_ context.Context, key string, data []byte) error {
	err := m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(mirrorBucket).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("write mirror key %s: %w", key, err)
	}
	return nil
}

func (m *BoltMirror) Close() error {
	return m.db.Close()
}
