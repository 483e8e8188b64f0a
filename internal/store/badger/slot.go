// Package badger persists the fallback slot on local disk.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/MrSnakeDoc/reelmark/internal/domain"
	"github.com/MrSnakeDoc/reelmark/internal/gateway"
	"github.com/MrSnakeDoc/reelmark/internal/logger"
)

const (
	// KeyBookmarks holds the JSON-encoded bookmark sequence
	KeyBookmarks = "bookmarks"
	// KeyCategories holds the JSON-encoded user category list
	KeyCategories = "categories"
)

// Slot implements gateway.Slot on top of BadgerDB.
type Slot struct {
	db  *badger.DB
	log logger.Logger
}

var _ gateway.Slot = (*Slot)(nil)

// Open opens (or creates) the slot database in dir.
func Open(dir string, log logger.Logger) (*Slot, error) {
	log = log.With(logger.Component("badger"))

	opts := badger.DefaultOptions(dir)
	opts.Logger = &badgerLogger{log: log}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db at %s: %w", dir, err)
	}
	log.Info("fallback slot opened", logger.String("dir", dir))

	return &Slot{db: db, log: log}, nil
}

// OpenInMemory opens a slot that lives only in memory. Used by tests.
func OpenInMemory(log logger.Logger) (*Slot, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = &badgerLogger{log: log}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory badger db: %w", err)
	}
	return &Slot{db: db, log: log}, nil
}

// Close closes the database.
func (s *Slot) Close() error {
	if err := s.db.Close(); err != nil {
		s.log.Error("error closing badger", logger.Error(err))
		return err
	}
	return nil
}

func (s *Slot) Load(_ context.Context) ([]domain.Bookmark, error) {
	var bookmarks []domain.Bookmark
	if err := s.read(KeyBookmarks, &bookmarks); err != nil {
		return nil, err
	}
	if bookmarks == nil {
		bookmarks = []domain.Bookmark{}
	}
	return bookmarks, nil
}

func (s *Slot) Store(_ context.Context, bookmarks []domain.Bookmark) error {
	if bookmarks == nil {
		bookmarks = []domain.Bookmark{}
	}
	return s.write(KeyBookmarks, bookmarks)
}

func (s *Slot) LoadCategories(_ context.Context) ([]string, error) {
	var categories []string
	err := s.read(KeyCategories, &categories)
	if errors.Is(err, gateway.ErrSlotEmpty) {
		return []string{}, nil
	}
	return categories, err
}

func (s *Slot) StoreCategories(_ context.Context, categories []string) error {
	return s.write(KeyCategories, categories)
}

func (s *Slot) read(key string, out any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return gateway.ErrSlotEmpty
	}
	if err != nil {
		return fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return nil
}

func (s *Slot) write(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal slot %s: %w", key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), data))
	})
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

// badgerLogger adapts logger.Logger to Badger's logger interface.
type badgerLogger struct {
	log logger.Logger
}

func (l *badgerLogger) Errorf(f string, v ...interface{})   { l.log.Errorf(f, v...) }
func (l *badgerLogger) Warningf(f string, v ...interface{}) { l.log.Warnf(f, v...) }
func (l *badgerLogger) Infof(f string, v ...interface{})    { l.log.Debugf(f, v...) }
func (l *badgerLogger) Debugf(f string, v ...interface{})   { l.log.Debugf(f, v...) }
