// Package snapshot keeps the terminal client's local state in a Badger
// database: the catalog store snapshot and the admin session token.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/pkordes/boutique/internal/catalog"
)

const (
	catalogKey = "catalog:snapshot"
	tokenKey   = "session:token"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ catalog.Snapshotter = (*Store)(nil)

// Open opens (or creates) the database in dir. An empty dir keeps everything
// in memory, which is what the tests use.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("snapshot.Open: %w", err)
	}
	logger.Debug("local state opened", "dir", dir)
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the saved catalog snapshot. ok is false when none was saved.
func (s *Store) Load(_ context.Context) (catalog.Snapshot, bool, error) {
	var snap catalog.Snapshot
	found, err := s.get([]byte(catalogKey), &snap)
	if err != nil {
		return catalog.Snapshot{}, false, fmt.Errorf("snapshot.Store.Load: %w", err)
	}
	return snap, found, nil
}

// Save overwrites the catalog snapshot.
func (s *Store) Save(ctx context.Context, snap catalog.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("snapshot.Store.Save: %w", err)
	}
	if err := s.set([]byte(catalogKey), snap, 0); err != nil {
		return fmt.Errorf("snapshot.Store.Save: %w", err)
	}
	return nil
}

type savedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Token returns the stored session token. ok is false when there is none or
// it has expired.
func (s *Store) Token(_ context.Context) (token string, ok bool, err error) {
	var saved savedToken
	found, err := s.get([]byte(tokenKey), &saved)
	if err != nil {
		return "", false, fmt.Errorf("snapshot.Store.Token: %w", err)
	}
	if !found || saved.Token == "" {
		return "", false, nil
	}
	if !saved.ExpiresAt.IsZero() && time.Now().After(saved.ExpiresAt) {
		return "", false, nil
	}
	return saved.Token, true, nil
}

// SetToken stores token until expiresAt. Badger drops the key on its own
// once the TTL runs out.
func (s *Store) SetToken(_ context.Context, token string, expiresAt time.Time) error {
	var ttl time.Duration
	if !expiresAt.IsZero() {
		ttl = time.Until(expiresAt)
		if ttl <= 0 {
			return s.ClearToken(context.Background())
		}
	}
	if err := s.set([]byte(tokenKey), savedToken{Token: token, ExpiresAt: expiresAt}, ttl); err != nil {
		return fmt.Errorf("snapshot.Store.SetToken: %w", err)
	}
	return nil
}

// ClearToken forgets the session token.
func (s *Store) ClearToken(_ context.Context) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(tokenKey))
	})
	if err != nil {
		return fmt.Errorf("snapshot.Store.ClearToken: %w", err)
	}
	return nil
}

// get decodes the value at key into dest. found is false for a missing key.
func (s *Store) get(key []byte, dest any) (found bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// set encodes value at key. A positive ttl expires the key.
func (s *Store) set(key []byte, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key, data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}
