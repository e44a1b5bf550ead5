package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// recordingBlobs wraps a memory blob store, counting writes and optionally
// failing them.
type recordingBlobs struct {
	*storage.MemoryBlobStore
	writes  int
	failErr error
}

func newRecordingBlobs() *recordingBlobs {
	return &recordingBlobs{MemoryBlobStore: storage.NewMemoryBlobStore()}
}

func (b *recordingBlobs) Write(ctx context.Context, key string, data []byte) error {
	if b.failErr != nil {
		return b.failErr
	}
	b.writes++
	return b.MemoryBlobStore.Write(ctx, key, data)
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC) }
}

func sequentialIDs() func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("id-%d", n), nil
	}
}

func newTestStore(blobs storage.BlobStore) *Store {
	return New(blobs, WithClock(fixedClock()), WithIDGenerator(sequentialIDs()))
}

func mustAdd(t *testing.T, s *Store, amount, category, desc, date string) core.Expense {
	t.Helper()
	e, err := s.Add(context.Background(), core.ExpenseInput{Amount: amount, Category: category, Description: desc, Date: date})
	if err != nil {
		t.Fatalf("add %s: %v", desc, err)
	}
	return e
}

func TestLoadMissingBlobIsEmpty(t *testing.T) {
	s := newTestStore(storage.NewMemoryBlobStore())
	got, err := s.Load(context.Background())
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty collection, got %v %v", got, err)
	}
}

func TestLoadCorruptBlobIsEmpty(t *testing.T) {
	blobs := storage.NewMemoryBlobStore()
	_ = blobs.Write(context.Background(), DefaultKey, []byte(`{not json`))
	s := newTestStore(blobs)
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("corrupt state must not be an error, got %v", err)
	}
	if len(got) != 0 || len(s.List()) != 0 {
		t.Fatalf("expected empty collection")
	}
}

func TestLoadBackendErrorIsReturned(t *testing.T) {
	s := newTestStore(failingReader{storage.NewMemoryBlobStore()})
	if _, err := s.Load(context.Background()); err == nil {
		t.Fatalf("expected backend error")
	}
}

type failingReader struct{ *storage.MemoryBlobStore }

func (failingReader) Read(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func TestAddPrependsAndRoundTrips(t *testing.T) {
	blobs := newRecordingBlobs()
	s := newTestStore(blobs)

	first := mustAdd(t, s, "50", "Food & Dining", "Groceries", "2024-03-15")
	second := mustAdd(t, s, "20", "Transportation", "Bus", "")

	if first.ID == second.ID {
		t.Fatalf("ids must be unique")
	}
	if !second.CreatedAt.Equal(fixedClock()()) {
		t.Fatalf("createdAt not taken from clock: %v", second.CreatedAt)
	}
	if second.Date != core.NewDate(2024, 3, 20) {
		t.Fatalf("empty date should default to today, got %v", second.Date)
	}
	list := s.List()
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if blobs.writes != 2 {
		t.Fatalf("expected 2 writes, got %d", blobs.writes)
	}

	reloaded := newTestStore(blobs)
	got, err := reloaded.Load(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records after reload, got %d", len(got))
	}
	for i := range got {
		if got[i].ID != list[i].ID || got[i].Amount != list[i].Amount ||
			got[i].Category != list[i].Category || got[i].Description != list[i].Description ||
			got[i].Date != list[i].Date || !got[i].CreatedAt.Equal(list[i].CreatedAt) {
			t.Fatalf("record %d differs after reload: %+v vs %+v", i, got[i], list[i])
		}
	}
}

func TestAddRejectsInvalidInputWithoutWriting(t *testing.T) {
	blobs := newRecordingBlobs()
	s := newTestStore(blobs)

	_, err := s.Add(context.Background(), core.ExpenseInput{Amount: "", Description: "x"})
	if !errors.Is(err, core.ErrMissingAmount) {
		t.Fatalf("expected ErrMissingAmount, got %v", err)
	}
	_, err = s.Add(context.Background(), core.ExpenseInput{Amount: "3", Description: " "})
	if !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
	if blobs.writes != 0 || len(s.List()) != 0 {
		t.Fatalf("invalid input must not mutate or persist")
	}
}

func TestUpdatePreservesIdentityAndPosition(t *testing.T) {
	s := newTestStore(newRecordingBlobs())
	a := mustAdd(t, s, "10", "Shopping", "Shoes", "2024-03-01")
	b := mustAdd(t, s, "20", "Travel", "Train", "2024-03-02")
	_ = mustAdd(t, s, "30", "Other", "Misc", "2024-03-03")

	updated, err := s.Update(context.Background(), a.ID, core.ExpenseInput{
		Amount: "15.5", Category: "Healthcare", Description: "Pharmacy", Date: "2024-02-28",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != a.ID || !updated.CreatedAt.Equal(a.CreatedAt) {
		t.Fatalf("identity changed: %+v", updated)
	}

	list := s.List()
	if list[2].ID != a.ID || list[2].Description != "Pharmacy" || list[2].Amount.Cents != 1550 {
		t.Fatalf("expected updated record in its original position, got %+v", list)
	}
	if list[1].ID != b.ID {
		t.Fatalf("other records moved")
	}
}

func TestUpdateUnknownIDIsNotFound(t *testing.T) {
	blobs := newRecordingBlobs()
	s := newTestStore(blobs)
	mustAdd(t, s, "10", "Shopping", "Shoes", "")
	before := blobs.writes

	_, err := s.Update(context.Background(), "nope", core.ExpenseInput{Amount: "1", Description: "x"})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if blobs.writes != before {
		t.Fatalf("nothing should be written on unknown id")
	}
}

func TestDelete(t *testing.T) {
	blobs := newRecordingBlobs()
	s := newTestStore(blobs)
	a := mustAdd(t, s, "10", "Shopping", "Shoes", "")
	b := mustAdd(t, s, "20", "Travel", "Train", "")

	removed, err := s.Delete(context.Background(), a.ID)
	if err != nil || !removed {
		t.Fatalf("delete: %v %v", removed, err)
	}
	list := s.List()
	if len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("unexpected list after delete: %+v", list)
	}
	if _, ok := s.Get(a.ID); ok {
		t.Fatalf("deleted record still retrievable")
	}

	writes := blobs.writes
	removed, err = s.Delete(context.Background(), a.ID)
	if err != nil || removed {
		t.Fatalf("second delete should be a no-op, got %v %v", removed, err)
	}
	if blobs.writes != writes {
		t.Fatalf("no-op delete must not write")
	}
}

func TestFailedWriteRollsBack(t *testing.T) {
	blobs := newRecordingBlobs()
	s := newTestStore(blobs)
	a := mustAdd(t, s, "10", "Shopping", "Shoes", "2024-03-01")

	blobs.failErr = errors.New("quota exceeded")

	if _, err := s.Add(context.Background(), core.ExpenseInput{Amount: "5", Description: "x"}); err == nil {
		t.Fatalf("expected add to fail")
	}
	if _, err := s.Update(context.Background(), a.ID, core.ExpenseInput{Amount: "99", Description: "changed"}); err == nil {
		t.Fatalf("expected update to fail")
	}
	if _, err := s.Delete(context.Background(), a.ID); err == nil {
		t.Fatalf("expected delete to fail")
	}

	list := s.List()
	if len(list) != 1 || list[0].Description != "Shoes" || list[0].Amount.Cents != 1000 {
		t.Fatalf("in-memory state diverged from persisted state: %+v", list)
	}
}

func TestListReturnsCopy(t *testing.T) {
	s := newTestStore(newRecordingBlobs())
	mustAdd(t, s, "10", "Shopping", "Shoes", "")
	list := s.List()
	list[0].Description = "mutated"
	if got, _ := s.Get(list[0].ID); got.Description != "Shoes" {
		t.Fatalf("List leaked internal slice")
	}
}

func TestWithKey(t *testing.T) {
	blobs := storage.NewMemoryBlobStore()
	s := New(blobs, WithKey("custom"), WithClock(fixedClock()), WithIDGenerator(sequentialIDs()))
	mustAdd(t, s, "1", "", "x", "")
	if _, err := blobs.Read(context.Background(), "custom"); err != nil {
		t.Fatalf("expected blob under custom key: %v", err)
	}
	if _, err := blobs.Read(context.Background(), DefaultKey); !errors.Is(err, storage.ErrBlobNotFound) {
		t.Fatalf("default key must stay untouched")
	}
}

func TestDefaultIDsAreUnique(t *testing.T) {
	s := New(storage.NewMemoryBlobStore())
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		e := mustAdd(t, s, "1", "", strings.Repeat("x", i+1), "")
		if seen[e.ID] {
			t.Fatalf("duplicate id %s", e.ID)
		}
		seen[e.ID] = true
	}
}
