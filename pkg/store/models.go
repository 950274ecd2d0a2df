package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string    `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

type UserPreferencesModel struct {
	UserID        string `gorm:"primaryKey"`
	PreferredName string
	Timezone      string    `gorm:"not null;default:UTC"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// JournalEntryModel denormalizes the server-local entry date so the
// one-entry-per-day rule is backed by a unique index.
type JournalEntryModel struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"not null;uniqueIndex:idx_entries_user_day"`
	Title     string
	Content   string    `gorm:"type:text;not null"`
	HelpType  string    `gorm:"index"`
	EntryDate string    `gorm:"not null;uniqueIndex:idx_entries_user_day"`
	CreatedAt time.Time `gorm:"not null;index"`
}

type AIInteractionModel struct {
	ID                  string          `gorm:"primaryKey"`
	EntryID             string          `gorm:"not null;uniqueIndex"`
	Response            string          `gorm:"type:text;not null"`
	ContextEntriesCount int             `gorm:"not null"`
	InputTokens         int             `gorm:"not null"`
	OutputTokens        int             `gorm:"not null"`
	Cost                decimal.Decimal `gorm:"type:numeric(12,6)"`
	CreatedAt           time.Time       `gorm:"not null"`
}
