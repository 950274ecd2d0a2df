package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"mindfulcompanion/pkg/ai"
	"mindfulcompanion/pkg/auth"
	"mindfulcompanion/pkg/domain"
	"mindfulcompanion/pkg/store"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration
	JWTSecret     string
	AIBaseURL     string
	AIAPIKey      string
	AIModel       string
	Store         store.Store
	Sessions      store.SessionStore
	Gateway       ai.Gateway
}

// App wires together storage, sessions, and the AI gateway, and owns the
// entry-submission orchestration.
type App struct {
	store    store.Store
	sessions store.SessionStore
	gateway  ai.Gateway
}

// New constructs the application. Dependencies not supplied in cfg are built
// from the connection settings.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		switch {
		case cfg.JWTSecret != "":
			sessionStore = store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL)
		case cfg.RedisAddr != "":
			sessionStore = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		default:
			return nil, fmt.Errorf("session store required (jwtSecret or redisAddr)")
		}
	}

	gateway := cfg.Gateway
	if gateway == nil {
		var err error
		gateway, err = ai.NewOpenAICompatGateway(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)
		if err != nil {
			return nil, fmt.Errorf("init ai gateway: %w", err)
		}
	}

	return &App{
		store:    dataStore,
		sessions: sessionStore,
		gateway:  gateway,
	}, nil
}

// SignUp registers a new user and issues a session token.
func (a *App) SignUp(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return domain.User{}, "", errors.New("email and password required")
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, "", err
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, "", ErrEmailTaken
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, "", fmt.Errorf("save user: %w", err)
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// Login validates credentials and issues a session token.
func (a *App) Login(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// UserFromToken resolves a user from a session token.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	uid, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUserByID(uid)
	if err != nil || !found {
		return domain.User{}, false
	}
	return user, true
}

// Logout removes a session token.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}

// Preferences returns the user's preferences, defaulting when none exist.
func (a *App) Preferences(user domain.User) (domain.UserPreferences, error) {
	prefs, ok, err := a.store.GetPreferences(user.ID)
	if err != nil {
		return domain.UserPreferences{}, fmt.Errorf("fetch preferences: %w", err)
	}
	if !ok {
		return domain.UserPreferences{UserID: user.ID, Timezone: "UTC"}, nil
	}
	return prefs, nil
}

// UpdatePreferences stores the user's preferred name and timezone.
func (a *App) UpdatePreferences(user domain.User, preferredName, timezone string) (domain.UserPreferences, error) {
	now := time.Now().UTC()
	prefs, ok, err := a.store.GetPreferences(user.ID)
	if err != nil {
		return domain.UserPreferences{}, fmt.Errorf("fetch preferences: %w", err)
	}
	if !ok {
		prefs = domain.UserPreferences{UserID: user.ID, CreatedAt: now}
	}
	prefs.PreferredName = strings.TrimSpace(preferredName)
	if tz := strings.TrimSpace(timezone); tz != "" {
		prefs.Timezone = tz
	} else if prefs.Timezone == "" {
		prefs.Timezone = "UTC"
	}
	prefs.UpdatedAt = now
	if err := a.store.SavePreferences(prefs); err != nil {
		return domain.UserPreferences{}, fmt.Errorf("save preferences: %w", err)
	}
	return prefs, nil
}

// SubmitRequest is one journal submission. UserID is empty for the anonymous
// flow.
type SubmitRequest struct {
	UserID   string
	Content  string
	Title    string
	HelpType domain.HelpType
}

// AIResult carries the generated response and its usage accounting.
type AIResult struct {
	Response      string
	TokensUsed    int
	EstimatedCost decimal.Decimal
}

// SubmitResult is the outcome of a submission. Exactly one of the two shapes
// is populated: Entry is nil for the anonymous flow (nothing persisted), and
// set for the authenticated flow. AI and AIError are mutually exclusive.
type SubmitResult struct {
	Entry        *domain.JournalEntry
	AI           *AIResult
	AIError      string
	HelpType     domain.HelpType
	ContextCount int
}

// SubmitEntry runs the whole submission state machine: validation, the
// anonymous or authenticated branch, context assembly, the gateway call, and
// persistence of the resulting interaction.
func (a *App) SubmitEntry(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return SubmitResult{}, ErrNoContent
	}
	helpType := domain.HelpType(strings.TrimSpace(string(req.HelpType)))
	if helpType != "" && !helpType.Valid() {
		return SubmitResult{}, fmt.Errorf("%w: %q", ErrInvalidHelpType, helpType)
	}

	if req.UserID == "" {
		return a.submitAnonymous(ctx, content, helpType)
	}
	return a.submitAuthenticated(ctx, req.UserID, content, strings.TrimSpace(req.Title), helpType)
}

// submitAnonymous never touches the record store. A gateway failure fails the
// whole request since there is nothing saved to fall back on.
func (a *App) submitAnonymous(ctx context.Context, content string, helpType domain.HelpType) (SubmitResult, error) {
	if helpType == "" {
		return SubmitResult{}, ErrHelpTypeRequired
	}
	if !helpType.AllowedForAnonymous() {
		return SubmitResult{}, ErrAnonymousHelpType
	}
	systemPrompt := buildSystemPrompt(helpType, "")
	userMessage := buildUserMessage(content, nil)
	completion, err := a.gateway.Complete(ctx, systemPrompt, userMessage)
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{
		HelpType: helpType,
		AI: &AIResult{
			Response:      completion.Text,
			TokensUsed:    completion.InputTokens + completion.OutputTokens,
			EstimatedCost: ai.EstimateCost(completion.InputTokens, completion.OutputTokens),
		},
	}, nil
}

// submitAuthenticated persists the entry first, then enriches it with an AI
// interaction on a best-effort basis. A gateway failure after the save is
// reported as a non-fatal AIError; the entry is never lost.
func (a *App) submitAuthenticated(ctx context.Context, userID, content, title string, helpType domain.HelpType) (SubmitResult, error) {
	now := time.Now()
	entryDate := now.Format("2006-01-02")

	if _, found, err := a.store.GetEntryForUserOnDate(userID, entryDate); err != nil {
		return SubmitResult{}, fmt.Errorf("check entry for today: %w", err)
	} else if found {
		return SubmitResult{}, ErrDuplicateEntry
	}

	// save_only is a persistence marker, never stored as the help type.
	stored := helpType
	if stored == domain.HelpSaveOnly {
		stored = ""
	}
	entry := domain.JournalEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		HelpType:  stored,
		EntryDate: entryDate,
		CreatedAt: now.UTC(),
	}
	if err := a.store.CreateEntry(entry); err != nil {
		if errors.Is(err, store.ErrDuplicateEntryDay) {
			return SubmitResult{}, ErrDuplicateEntry
		}
		return SubmitResult{}, fmt.Errorf("create entry: %w", err)
	}

	result := SubmitResult{Entry: &entry, HelpType: stored}
	if stored == "" {
		return result, nil
	}

	contextEntries, err := a.contextFor(entry, stored)
	if err != nil {
		result.AIError = aiFailure(err)
		return result, nil
	}
	systemPrompt := buildSystemPrompt(stored, a.displayName(userID))
	userMessage := buildUserMessage(content, contextEntries)

	completion, err := a.gateway.Complete(ctx, systemPrompt, userMessage)
	if err != nil {
		slog.Warn("ai response failed after entry save", "entry_id", entry.ID, "err", err)
		result.AIError = aiFailure(err)
		return result, nil
	}

	cost := ai.EstimateCost(completion.InputTokens, completion.OutputTokens)
	interaction := domain.AIInteraction{
		ID:                  uuid.NewString(),
		EntryID:             entry.ID,
		Response:            completion.Text,
		ContextEntriesCount: len(contextEntries),
		InputTokens:         completion.InputTokens,
		OutputTokens:        completion.OutputTokens,
		Cost:                cost,
		CreatedAt:           time.Now().UTC(),
	}
	if err := a.store.CreateInteraction(interaction); err != nil {
		slog.Warn("failed to record ai interaction", "entry_id", entry.ID, "err", err)
		result.AIError = aiFailure(err)
		return result, nil
	}

	result.AI = &AIResult{
		Response:      completion.Text,
		TokensUsed:    interaction.TokensUsed(),
		EstimatedCost: cost,
	}
	result.ContextCount = len(contextEntries)
	return result, nil
}

// ListEntries returns the user's entries, newest first.
func (a *App) ListEntries(user domain.User, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	entries, err := a.store.ListEntriesByUser(user.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// GetEntry returns one of the user's entries with its interaction, if any.
func (a *App) GetEntry(user domain.User, id string) (domain.JournalEntry, *domain.AIInteraction, error) {
	entry, ok, err := a.store.GetEntry(id)
	if err != nil {
		return domain.JournalEntry{}, nil, fmt.Errorf("fetch entry: %w", err)
	}
	if !ok || entry.UserID != user.ID {
		return domain.JournalEntry{}, nil, ErrEntryNotFound
	}
	interaction, found, err := a.store.GetInteractionForEntry(id)
	if err != nil {
		return domain.JournalEntry{}, nil, fmt.Errorf("fetch interaction: %w", err)
	}
	if !found {
		return entry, nil, nil
	}
	return entry, &interaction, nil
}

// DeleteEntry removes one of the user's entries.
func (a *App) DeleteEntry(user domain.User, id string) error {
	entry, ok, err := a.store.GetEntry(id)
	if err != nil {
		return fmt.Errorf("fetch entry: %w", err)
	}
	if !ok || entry.UserID != user.ID {
		return ErrEntryNotFound
	}
	return a.store.DeleteEntry(id)
}

// contextFor fetches the prior entries the help type calls for, most recent
// first. Computed fresh on every request.
func (a *App) contextFor(entry domain.JournalEntry, helpType domain.HelpType) ([]ContextEntry, error) {
	size := helpType.ContextSize()
	if size == 0 {
		return nil, nil
	}
	prior, err := a.store.ListEntriesBefore(entry.UserID, entry.CreatedAt, size)
	if err != nil {
		return nil, fmt.Errorf("fetch context entries: %w", err)
	}
	contextEntries := make([]ContextEntry, 0, len(prior))
	for _, p := range prior {
		contextEntries = append(contextEntries, ContextEntry{
			CreatedAt: p.CreatedAt,
			Title:     p.Title,
			Content:   p.Content,
		})
	}
	return contextEntries, nil
}

func (a *App) displayName(userID string) string {
	prefs, ok, err := a.store.GetPreferences(userID)
	if err != nil || !ok {
		return ""
	}
	return strings.TrimSpace(prefs.PreferredName)
}

func aiFailure(err error) string {
	return fmt.Sprintf("Entry saved, but AI response failed: %v", err)
}
