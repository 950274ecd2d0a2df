package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"mindfulcompanion/pkg/domain"
)

func TestMemoryStoreCreateEntryEnforcesOnePerDay(t *testing.T) {
	s := NewMemoryStore()
	first := domain.JournalEntry{
		ID:        "e1",
		UserID:    "u1",
		Content:   "first",
		EntryDate: "2026-08-30",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateEntry(first); err != nil {
		t.Fatalf("create first entry: %v", err)
	}
	second := first
	second.ID = "e2"
	second.Content = "second"
	if err := s.CreateEntry(second); !errors.Is(err, ErrDuplicateEntryDay) {
		t.Fatalf("expected ErrDuplicateEntryDay, got %v", err)
	}
	if got := s.EntryCount(); got != 1 {
		t.Fatalf("entry count = %d, want 1", got)
	}

	// Another user on the same date is fine.
	other := first
	other.ID = "e3"
	other.UserID = "u2"
	if err := s.CreateEntry(other); err != nil {
		t.Fatalf("create entry for other user: %v", err)
	}
}

func TestMemoryStoreListEntriesBefore(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		entry := domain.JournalEntry{
			ID:        fmt.Sprintf("e%d", i),
			UserID:    "u1",
			Content:   fmt.Sprintf("entry %d", i),
			EntryDate: base.AddDate(0, 0, i).Format("2006-01-02"),
			CreatedAt: base.AddDate(0, 0, i),
		}
		if err := s.CreateEntry(entry); err != nil {
			t.Fatalf("create entry %d: %v", i, err)
		}
	}

	cutoff := base.AddDate(0, 0, 10)
	got, err := s.ListEntriesBefore("u1", cutoff, 7)
	if err != nil {
		t.Fatalf("list entries before: %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("len = %d, want 7", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.After(got[i-1].CreatedAt) {
			t.Fatalf("entries not ordered most-recent-first at index %d", i)
		}
	}
	if got[0].ID != "e9" {
		t.Fatalf("newest prior entry = %s, want e9", got[0].ID)
	}

	// Strictly-before: an entry at the cutoff itself is excluded.
	at, err := s.ListEntriesBefore("u1", base, 7)
	if err != nil {
		t.Fatalf("list entries at base: %v", err)
	}
	if len(at) != 0 {
		t.Fatalf("expected no entries strictly before the first one, got %d", len(at))
	}
}

func TestMemoryStoreDeleteEntryFreesTheDay(t *testing.T) {
	s := NewMemoryStore()
	entry := domain.JournalEntry{
		ID:        "e1",
		UserID:    "u1",
		Content:   "text",
		EntryDate: "2026-08-30",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateEntry(entry); err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if err := s.DeleteEntry("e1"); err != nil {
		t.Fatalf("delete entry: %v", err)
	}
	entry.ID = "e2"
	if err := s.CreateEntry(entry); err != nil {
		t.Fatalf("expected day to be free after delete, got %v", err)
	}
}

func TestMemoryStoreInteractions(t *testing.T) {
	s := NewMemoryStore()
	i := domain.AIInteraction{ID: "i1", EntryID: "e1", Response: "hi", ContextEntriesCount: 3}
	if err := s.CreateInteraction(i); err != nil {
		t.Fatalf("create interaction: %v", err)
	}
	got, ok, err := s.GetInteractionForEntry("e1")
	if err != nil || !ok {
		t.Fatalf("get interaction: ok=%v err=%v", ok, err)
	}
	if got.ContextEntriesCount != 3 {
		t.Fatalf("context count = %d, want 3", got.ContextEntriesCount)
	}
	if _, ok, _ := s.GetInteractionForEntry("missing"); ok {
		t.Fatalf("expected no interaction for unknown entry")
	}
}
