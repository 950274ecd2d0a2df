package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"mindfulcompanion/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(
		&UserModel{},
		&UserPreferencesModel{},
		&JournalEntryModel{},
		&AIInteractionModel{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser registers a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Create(&model).Error
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// SavePreferences stores or updates user preferences.
func (s *GormStore) SavePreferences(p domain.UserPreferences) error {
	model := preferencesToModel(p)
	return s.db.Save(&model).Error
}

// GetPreferences returns preferences for a user.
func (s *GormStore) GetPreferences(userID string) (domain.UserPreferences, bool, error) {
	var model UserPreferencesModel
	if err := s.db.First(&model, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserPreferences{}, false, nil
		}
		return domain.UserPreferences{}, false, err
	}
	return preferencesFromModel(model), true, nil
}

// CreateEntry persists a journal entry. The unique index on (user_id,
// entry_date) closes the race between two same-day submissions; the loser
// gets ErrDuplicateEntryDay.
func (s *GormStore) CreateEntry(e domain.JournalEntry) error {
	model := entryToModel(e)
	if err := s.db.Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEntryDay
		}
		return err
	}
	return nil
}

// GetEntry returns one entry by ID.
func (s *GormStore) GetEntry(id string) (domain.JournalEntry, bool, error) {
	var model JournalEntryModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.JournalEntry{}, false, nil
		}
		return domain.JournalEntry{}, false, err
	}
	return entryFromModel(model), true, nil
}

// GetEntryForUserOnDate returns the user's entry for a calendar date.
func (s *GormStore) GetEntryForUserOnDate(userID, entryDate string) (domain.JournalEntry, bool, error) {
	var model JournalEntryModel
	if err := s.db.Where("user_id = ? AND entry_date = ?", userID, entryDate).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.JournalEntry{}, false, nil
		}
		return domain.JournalEntry{}, false, err
	}
	return entryFromModel(model), true, nil
}

// ListEntriesByUser returns the user's entries, newest first.
func (s *GormStore) ListEntriesByUser(userID string, limit int) ([]domain.JournalEntry, error) {
	query := s.db.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []JournalEntryModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entries := make([]domain.JournalEntry, 0, len(models))
	for _, model := range models {
		entries = append(entries, entryFromModel(model))
	}
	return entries, nil
}

// ListEntriesBefore returns up to limit of the user's entries created
// strictly before the given time, most recent first.
func (s *GormStore) ListEntriesBefore(userID string, before time.Time, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		return []domain.JournalEntry{}, nil
	}
	var models []JournalEntryModel
	if err := s.db.Where("user_id = ? AND created_at < ?", userID, before).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	entries := make([]domain.JournalEntry, 0, len(models))
	for _, model := range models {
		entries = append(entries, entryFromModel(model))
	}
	return entries, nil
}

// DeleteEntry removes an entry and its interaction.
func (s *GormStore) DeleteEntry(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("entry_id = ?", id).Delete(&AIInteractionModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&JournalEntryModel{}, "id = ?", id).Error
	})
}

// CreateInteraction records an AI interaction for an entry.
func (s *GormStore) CreateInteraction(i domain.AIInteraction) error {
	model := interactionToModel(i)
	return s.db.Create(&model).Error
}

// GetInteractionForEntry returns the interaction bound to an entry.
func (s *GormStore) GetInteractionForEntry(entryID string) (domain.AIInteraction, bool, error) {
	var model AIInteractionModel
	if err := s.db.First(&model, "entry_id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AIInteraction{}, false, nil
		}
		return domain.AIInteraction{}, false, err
	}
	return interactionFromModel(model), true, nil
}
