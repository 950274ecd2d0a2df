package store

import "mindfulcompanion/pkg/domain"

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

func preferencesToModel(p domain.UserPreferences) UserPreferencesModel {
	return UserPreferencesModel{
		UserID:        p.UserID,
		PreferredName: p.PreferredName,
		Timezone:      p.Timezone,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func preferencesFromModel(m UserPreferencesModel) domain.UserPreferences {
	return domain.UserPreferences{
		UserID:        m.UserID,
		PreferredName: m.PreferredName,
		Timezone:      m.Timezone,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func entryToModel(e domain.JournalEntry) JournalEntryModel {
	return JournalEntryModel{
		ID:        e.ID,
		UserID:    e.UserID,
		Title:     e.Title,
		Content:   e.Content,
		HelpType:  string(e.HelpType),
		EntryDate: e.EntryDate,
		CreatedAt: e.CreatedAt,
	}
}

func entryFromModel(m JournalEntryModel) domain.JournalEntry {
	return domain.JournalEntry{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		Content:   m.Content,
		HelpType:  domain.HelpType(m.HelpType),
		EntryDate: m.EntryDate,
		CreatedAt: m.CreatedAt,
	}
}

func interactionToModel(i domain.AIInteraction) AIInteractionModel {
	return AIInteractionModel{
		ID:                  i.ID,
		EntryID:             i.EntryID,
		Response:            i.Response,
		ContextEntriesCount: i.ContextEntriesCount,
		InputTokens:         i.InputTokens,
		OutputTokens:        i.OutputTokens,
		Cost:                i.Cost,
		CreatedAt:           i.CreatedAt,
	}
}

func interactionFromModel(m AIInteractionModel) domain.AIInteraction {
	return domain.AIInteraction{
		ID:                  m.ID,
		EntryID:             m.EntryID,
		Response:            m.Response,
		ContextEntriesCount: m.ContextEntriesCount,
		InputTokens:         m.InputTokens,
		OutputTokens:        m.OutputTokens,
		Cost:                m.Cost,
		CreatedAt:           m.CreatedAt,
	}
}
