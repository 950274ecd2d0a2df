package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserPreferences holds personal settings kept apart from auth data.
type UserPreferences struct {
	UserID        string    `json:"-"`
	PreferredName string    `json:"preferredName"`
	Timezone      string    `json:"timezone"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// JournalEntry is a single persisted journal entry. HelpType is empty when
// the entry was submitted without a help request or as save-only.
type JournalEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	HelpType  HelpType  `json:"requestedHelpType,omitempty"`
	EntryDate string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// AIInteraction records one completed AI response bound to a journal entry.
type AIInteraction struct {
	ID                  string          `json:"id"`
	EntryID             string          `json:"-"`
	Response            string          `json:"response"`
	ContextEntriesCount int             `json:"contextEntriesCount"`
	InputTokens         int             `json:"inputTokens"`
	OutputTokens        int             `json:"outputTokens"`
	Cost                decimal.Decimal `json:"estimatedCost"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// TokensUsed returns the combined token count of the interaction.
func (i AIInteraction) TokensUsed() int {
	return i.InputTokens + i.OutputTokens
}
