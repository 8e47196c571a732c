package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/okian/courtside/internal/domain/model"
)

// keyPrefix namespaces player records inside the badger keyspace.
const keyPrefix = "player/"

// BadgerStore is a Store backed by an embedded BadgerDB instance. Batched
// writes go through a single transaction, so PutAll is atomic.
type BadgerStore struct {
	db *badger.DB
}

// BadgerOption applies a configuration option to the BadgerStore.
type BadgerOption func(*badger.Options)

// WithInMemory opens the database without touching disk. Used in tests.
func WithInMemory() BadgerOption {
	return func(o *badger.Options) {
		o.InMemory = true
		o.Dir = ""
		o.ValueDir = ""
	}
}

// WithSyncWrites toggles fsync-per-write durability.
func WithSyncWrites(sync bool) BadgerOption {
	return func(o *badger.Options) {
		o.SyncWrites = sync
	}
}

// NewBadgerStore opens (or creates) a badger database at path.
func NewBadgerStore(path string, opts ...BadgerOption) (*BadgerStore, error) {
	options := badger.DefaultOptions(path).WithLogger(nil)

	for _, opt := range opts {
		opt(&options)
	}

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func key(id model.PlayerID) []byte {
	return []byte(keyPrefix + string(id))
}

// Get implements Store.
func (s *BadgerStore) Get(ctx context.Context, id model.PlayerID) (model.Player, error) {
	defer observe("get", time.Now())

	var p model.Player
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return model.Player{}, ErrNotFound
	}
	if err != nil {
		return model.Player{}, fmt.Errorf("get player %s: %w", id, err)
	}
	return p, nil
}

// Put implements Store.
func (s *BadgerStore) Put(ctx context.Context, p model.Player) error {
	return s.PutAll(ctx, []model.Player{p})
}

// PutAll implements Store. All players land in one transaction.
func (s *BadgerStore) PutAll(ctx context.Context, players []model.Player) error {
	defer observe("put_all", time.Now())

	err := s.db.Update(func(txn *badger.Txn) error {
		for _, p := range players {
			val, err := json.Marshal(p)
			if err != nil {
				return err
			}
			if err := txn.Set(key(p.ID), val); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put players: %w", err)
	}
	return nil
}

// List implements Store.
func (s *BadgerStore) List(ctx context.Context) ([]model.Player, error) {
	defer observe("list", time.Now())

	var out []model.Player
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var p model.Player
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return err
			}
			if p.Archived {
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Count implements Store.
func (s *BadgerStore) Count(ctx context.Context) int {
	count := 0
	_ = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
