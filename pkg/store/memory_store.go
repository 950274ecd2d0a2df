package store

import (
	"sort"
	"sync"
	"time"

	"mindfulcompanion/pkg/domain"
)

// MemoryStore keeps everything in-process. Used by tests and local runs
// without a database.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[string]domain.User            // key: user ID
	email        map[string]string                 // email -> user ID
	prefs        map[string]domain.UserPreferences // key: user ID
	entries      map[string]domain.JournalEntry    // key: entry ID
	entryDays    map[string]string                 // userID+"/"+entryDate -> entry ID
	interactions map[string]domain.AIInteraction   // key: entry ID
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]domain.User),
		email:        make(map[string]string),
		prefs:        make(map[string]domain.UserPreferences),
		entries:      make(map[string]domain.JournalEntry),
		entryDays:    make(map[string]string),
		interactions: make(map[string]domain.AIInteraction),
	}
}

// SaveUser registers a user.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return nil
}

// HasUserEmail checks if email exists.
func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.email[email]
	return ok, nil
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.email[email]; ok {
		u, exists := m.users[id]
		return u, exists, nil
	}
	return domain.User{}, false, nil
}

// GetUserByID returns a user by ID.
func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// SavePreferences stores or replaces user preferences.
func (m *MemoryStore) SavePreferences(p domain.UserPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[p.UserID] = p
	return nil
}

// GetPreferences returns preferences for a user.
func (m *MemoryStore) GetPreferences(userID string) (domain.UserPreferences, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.prefs[userID]
	return p, ok, nil
}

// CreateEntry persists an entry, enforcing one entry per user per date.
func (m *MemoryStore) CreateEntry(e domain.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	dayKey := e.UserID + "/" + e.EntryDate
	if _, exists := m.entryDays[dayKey]; exists {
		return ErrDuplicateEntryDay
	}
	m.entries[e.ID] = e
	m.entryDays[dayKey] = e.ID
	return nil
}

// GetEntry retrieves an entry by ID.
func (m *MemoryStore) GetEntry(id string) (domain.JournalEntry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	return e, ok, nil
}

// GetEntryForUserOnDate returns the user's entry for a calendar date.
func (m *MemoryStore) GetEntryForUserOnDate(userID, entryDate string) (domain.JournalEntry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.entryDays[userID+"/"+entryDate]; ok {
		e, exists := m.entries[id]
		return e, exists, nil
	}
	return domain.JournalEntry{}, false, nil
}

// ListEntriesByUser returns the user's entries, newest first.
func (m *MemoryStore) ListEntriesByUser(userID string, limit int) ([]domain.JournalEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.collectByUser(userID, func(domain.JournalEntry) bool { return true })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ListEntriesBefore returns up to limit entries created strictly before the
// given time, most recent first.
func (m *MemoryStore) ListEntriesBefore(userID string, before time.Time, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		return []domain.JournalEntry{}, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.collectByUser(userID, func(e domain.JournalEntry) bool {
		return e.CreatedAt.Before(before)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// DeleteEntry removes an entry and its interaction.
func (m *MemoryStore) DeleteEntry(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		delete(m.entryDays, e.UserID+"/"+e.EntryDate)
	}
	delete(m.entries, id)
	delete(m.interactions, id)
	return nil
}

// CreateInteraction records an AI interaction for an entry.
func (m *MemoryStore) CreateInteraction(i domain.AIInteraction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactions[i.EntryID] = i
	return nil
}

// GetInteractionForEntry returns the interaction bound to an entry.
func (m *MemoryStore) GetInteractionForEntry(entryID string) (domain.AIInteraction, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.interactions[entryID]
	return i, ok, nil
}

// InteractionCount reports how many interactions exist. Test helper.
func (m *MemoryStore) InteractionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.interactions)
}

// EntryCount reports how many entries exist. Test helper.
func (m *MemoryStore) EntryCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryStore) collectByUser(userID string, keep func(domain.JournalEntry) bool) []domain.JournalEntry {
	entries := make([]domain.JournalEntry, 0)
	for _, e := range m.entries {
		if e.UserID == userID && keep(e) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries
}
