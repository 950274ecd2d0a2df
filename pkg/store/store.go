package store

import (
	"errors"
	"time"

	"mindfulcompanion/pkg/domain"
)

// ErrDuplicateEntryDay is returned by CreateEntry when the user already has
// an entry for the same calendar date.
var ErrDuplicateEntryDay = errors.New("entry already exists for this date")

// Store defines persistence operations for users, preferences, journal
// entries, and AI interactions.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)

	// preferences
	SavePreferences(domain.UserPreferences) error
	GetPreferences(userID string) (domain.UserPreferences, bool, error)

	// journal entries
	CreateEntry(domain.JournalEntry) error
	GetEntry(id string) (domain.JournalEntry, bool, error)
	GetEntryForUserOnDate(userID, entryDate string) (domain.JournalEntry, bool, error)
	ListEntriesByUser(userID string, limit int) ([]domain.JournalEntry, error)
	ListEntriesBefore(userID string, before time.Time, limit int) ([]domain.JournalEntry, error)
	DeleteEntry(id string) error

	// AI interactions
	CreateInteraction(domain.AIInteraction) error
	GetInteractionForEntry(entryID string) (domain.AIInteraction, bool, error)
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}
