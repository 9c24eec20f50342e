package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pawradise/backend/internal/domain"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

const defaultCartTTL = 30 * 24 * time.Hour

var cartsBucket = []byte("carts")

// storedCart is the on-disk representation of a cart
type storedCart struct {
	Items     []domain.CartItem `json:"items"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// BoltCartStore persists carts in a single bbolt file, one key per session
type BoltCartStore struct {
	db  *bolt.DB
	now func() time.Time
}

// OpenBoltCartStore opens (or creates) the cart database at path
func OpenBoltCartStore(path string) (*BoltCartStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "create cart store directory for %s", path)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open cart store %s", path)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cartsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create carts bucket")
	}

	return &BoltCartStore{db: db, now: time.Now}, nil
}

// Load returns the stored cart lines; a missing cart is empty, not an error
func (s *BoltCartStore) Load(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	var cart storedCart
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(cartsBucket).Get([]byte(CartKey(sessionID)))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &cart); err != nil {
			return errors.Wrap(domain.ErrCorruptData, err.Error())
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "load cart %s", sessionID)
	}
	return cart.Items, nil
}

// Save replaces the stored cart lines and stamps the update time
func (s *BoltCartStore) Save(ctx context.Context, sessionID string, items []domain.CartItem) error {
	raw, err := json.Marshal(storedCart{Items: items, UpdatedAt: s.now()})
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cartsBucket).Put([]byte(CartKey(sessionID)), raw)
	})
	return errors.Wrapf(err, "save cart %s", sessionID)
}

// Delete removes the stored cart
func (s *BoltCartStore) Delete(ctx context.Context, sessionID string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cartsBucket).Delete([]byte(CartKey(sessionID)))
	})
	return errors.Wrapf(err, "delete cart %s", sessionID)
}

// SweepIdle deletes carts not updated within maxIdle and returns how many were removed.
// Undecodable records are removed as well.
func (s *BoltCartStore) SweepIdle(ctx context.Context, maxIdle time.Duration) (int, error) {
	cutoff := s.now().Add(-maxIdle)
	removed := 0

	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(cartsBucket)

		// Collect first; deleting under a live cursor can skip keys
		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var cart storedCart
			if err := json.Unmarshal(v, &cart); err != nil || cart.UpdatedAt.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "sweep idle carts")
	}
	return removed, nil
}

// Close releases the database file
func (s *BoltCartStore) Close() error {
	return s.db.Close()
}
