// Package store owns the authoritative, ordered expense collection and
// keeps it in step with the persisted blob.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// DefaultKey is the blob key the collection is persisted under.
const DefaultKey = "finance-tracker-expenses"

// Store is the single owner of the record collection. Records are kept
// newest-created-first. Every mutation is written through to the blob
// store before it returns; a failed write leaves the collection as it was.
type Store struct {
	mu      sync.Mutex
	blobs   storage.BlobStore
	key     string
	now     func() time.Time
	newID   func() (string, error)
	logger  *log.Logger
	records []core.Expense
}

type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithClock sets the clock used for createdAt and for defaulting dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUIDv7 generator.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Store) { s.newID = gen }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger.WithComponent(log.ComponentStore) }
}

func New(blobs storage.BlobStore, opts ...Option) *Store {
	s := &Store{
		blobs:  blobs,
		key:    DefaultKey,
		now:    time.Now,
		newID:  newUUIDv7,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Key returns the blob key in use.
func (s *Store) Key() string {
	return s.key
}

// Load replaces the in-memory collection with the persisted one. A missing
// blob yields an empty collection. A corrupt blob also yields an empty
// collection and is logged; it is never returned as an error. Only backend
// failures are.
func (s *Store) Load(ctx context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.blobs.Read(ctx, s.key)
	if errors.Is(err, storage.ErrBlobNotFound) {
		s.records = nil
		s.logger.InfoContext(ctx, "No persisted expenses, starting empty", log.FieldBlobKey, s.key)
		return []core.Expense{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}

	records, skipped, err := decode(data)
	if err != nil {
		s.records = nil
		s.logger.WarnContext(ctx, "Persisted expenses unreadable, starting empty",
			log.FieldBlobKey, s.key, log.FieldError, err)
		return []core.Expense{}, nil
	}
	for _, d := range skipped {
		s.logger.WarnContext(ctx, "Dropped persisted expense",
			log.FieldBlobKey, s.key, "index", d.Index, "reason", d.Reason)
	}

	s.records = records
	s.logger.InfoContext(ctx, "Expenses loaded", log.FieldBlobKey, s.key, log.FieldCount, len(records))
	return cloneRecords(records), nil
}

// List returns a copy of the collection in store order.
func (s *Store) List() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRecords(s.records)
}

// Get looks up one record by id.
func (s *Store) Get(id string) (core.Expense, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Expense{}, false
	}
	return s.records[i], true
}

// Today returns the current civil date according to the store clock.
func (s *Store) Today() core.Date {
	return core.DateOf(s.now())
}

// Add validates in, assigns id and createdAt, prepends the record and
// persists the collection.
func (s *Store) Add(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	now := s.now()
	e, err := in.Build(core.DateOf(now))
	if err != nil {
		return core.Expense{}, err
	}
	id, err := s.newID()
	if err != nil {
		return core.Expense{}, fmt.Errorf("generate id: %w", err)
	}
	e.ID = id
	e.CreatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) >= 0 {
		return core.Expense{}, fmt.Errorf("generate id: duplicate %s", id)
	}

	next := make([]core.Expense, 0, len(s.records)+1)
	next = append(next, e)
	next = append(next, s.records...)
	if err := s.commit(ctx, next); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// Update replaces the body of record id, keeping its id, createdAt and
// position. An unknown id returns core.ErrNotFound and writes nothing.
func (s *Store) Update(ctx context.Context, id string, in core.ExpenseInput) (core.Expense, error) {
	body, err := in.Build(core.DateOf(s.now()))
	if err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return core.Expense{}, core.ErrNotFound
	}
	body.ID = s.records[i].ID
	body.CreatedAt = s.records[i].CreatedAt

	next := cloneRecords(s.records)
	next[i] = body
	if err := s.commit(ctx, next); err != nil {
		return core.Expense{}, err
	}
	return body, nil
}

// Delete removes record id. Deleting an absent id is a no-op that returns
// false and writes nothing.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	next := make([]core.Expense, 0, len(s.records)-1)
	next = append(next, s.records[:i]...)
	next = append(next, s.records[i+1:]...)
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// commit persists next and, only on success, makes it the live collection.
// Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next []core.Expense) error {
	data, err := encode(next)
	if err != nil {
		return fmt.Errorf("encode expenses: %w", err)
	}
	if err := s.blobs.Write(ctx, s.key, data); err != nil {
		s.logger.ErrorContext(ctx, "Persist failed, change rolled back",
			log.FieldBlobKey, s.key, log.FieldError, err)
		return fmt.Errorf("persist %s: %w", s.key, err)
	}
	s.records = next
	s.logger.DebugContext(ctx, "Expenses persisted", log.FieldBlobKey, s.key, log.FieldCount, len(next))
	return nil
}

func (s *Store) indexOf(id string) int {
	for i, e := range s.records {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func cloneRecords(records []core.Expense) []core.Expense {
	out := make([]core.Expense, len(records))
	copy(out, records)
	return out
}
