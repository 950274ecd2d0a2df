package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"mindfulcompanion/internal/app"
	"mindfulcompanion/internal/ratelimit"
	"mindfulcompanion/internal/util"
	"mindfulcompanion/pkg/ai"
	"mindfulcompanion/pkg/domain"
)

const (
	rateWindow         = time.Minute
	defaultSignupLimit = 5
	defaultLoginLimit  = 10
	defaultSubmitLimit = 20

	previewLength = 150
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App

	// Rate limiting is enabled when RedisAddr is set.
	RedisAddr     string
	RedisPassword string
	SignupLimit   int
	LoginLimit    int
	SubmitLimit   int

	TrustedProxies []string
}

// Server exposes the journaling HTTP API.
type Server struct {
	app            *app.App
	mux            *http.ServeMux
	trustedProxies *util.TrustedProxies

	signupLimiter *ratelimit.FixedWindowLimiter
	loginLimiter  *ratelimit.FixedWindowLimiter
	submitLimiter *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	trusted, err := util.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}
	s := &Server{
		app:            cfg.App,
		mux:            http.NewServeMux(),
		trustedProxies: trusted,
	}
	if cfg.RedisAddr != "" {
		newLimiter := func(name string, limit, fallback int) (*ratelimit.FixedWindowLimiter, error) {
			if limit <= 0 {
				limit = fallback
			}
			prefix := "mindful:ratelimit:" + name
			return ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, limit, rateWindow)
		}
		if s.signupLimiter, err = newLimiter("signup", cfg.SignupLimit, defaultSignupLimit); err != nil {
			return nil, err
		}
		if s.loginLimiter, err = newLimiter("login", cfg.LoginLimit, defaultLoginLimit); err != nil {
			return nil, err
		}
		if s.submitLimiter, err = newLimiter("submit", cfg.SubmitLimit, defaultSubmitLimit); err != nil {
			return nil, err
		}
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler with shared middleware applied.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/auth/logout", s.handleLogout)
	s.mux.Handle("/api/users/me", s.authenticated(s.handleMe))
	s.mux.Handle("/api/users/me/preferences", s.authenticated(s.handlePreferences))

	// journal
	s.mux.HandleFunc("/api/journal-entries", s.handleEntries)
	s.mux.Handle("/api/journal-entries/", s.authenticated(s.handleEntryByID))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) authorize(r *http.Request) (domain.User, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return domain.User{}, false
	}
	return s.app.UserFromToken(token)
}

// auth handlers
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.signupLimiter, "too many signup attempts") {
		return
	}
	var req authRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.SignUp(req.Email, req.Password)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, app.ErrEmailTaken) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts") {
		return
	}
	var req authRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := s.app.Logout(token); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		prefs, err := s.app.Preferences(user)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	case http.MethodPut:
		var req preferencesRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		prefs, err := s.app.UpdatePreferences(user, req.PreferredName, req.Timezone)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	default:
		methodNotAllowed(w)
	}
}

// journal handlers
func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleSubmit(w, r)
	case http.MethodGet:
		user, ok := s.authorize(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		s.handleList(w, r, user)
	default:
		methodNotAllowed(w)
	}
}

// handleSubmit accepts both anonymous and authenticated submissions. A
// bearer token, when present, must be valid.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if !s.allowRate(w, r, s.submitLimiter, "too many submissions") {
		return
	}
	var userID string
	if _, hasToken := bearerToken(r); hasToken {
		user, ok := s.authorize(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		userID = user.ID
	}
	var req submitRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := s.app.SubmitEntry(r.Context(), app.SubmitRequest{
		UserID:   userID,
		Content:  req.Content,
		Title:    req.Title,
		HelpType: domain.HelpType(req.HelpType),
	})
	if err != nil {
		writeSubmitError(w, err)
		return
	}
	if result.Entry == nil {
		writeJSON(w, http.StatusOK, anonymousResponse{
			AIResponse:    result.AI.Response,
			TokensUsed:    result.AI.TokensUsed,
			EstimatedCost: result.AI.EstimatedCost,
			HelpType:      result.HelpType,
		})
		return
	}
	resp := entryResponse{
		Entry:             entryPayloadFrom(*result.Entry),
		ContextWindowSize: result.HelpType.ContextSize(),
		AIError:           result.AIError,
	}
	if result.AI != nil {
		resp.AIInteraction = &interactionPayload{
			Response:            result.AI.Response,
			TokensUsed:          result.AI.TokensUsed,
			EstimatedCost:       result.AI.EstimatedCost,
			ContextEntriesCount: result.ContextCount,
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, user domain.User) {
	entries, err := s.app.ListEntries(user, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	items := make([]entrySummary, 0, len(entries))
	for _, e := range entries {
		items = append(items, entrySummaryFrom(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": items})
}

func (s *Server) handleEntryByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	id := strings.TrimPrefix(r.URL.Path, "/api/journal-entries/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		entry, interaction, err := s.app.GetEntry(user, id)
		if err != nil {
			writeEntryError(w, err)
			return
		}
		resp := entryResponse{
			Entry:             entryPayloadFrom(entry),
			ContextWindowSize: entry.HelpType.ContextSize(),
		}
		if interaction != nil {
			resp.AIInteraction = &interactionPayload{
				Response:            interaction.Response,
				TokensUsed:          interaction.TokensUsed(),
				EstimatedCost:       interaction.Cost,
				ContextEntriesCount: interaction.ContextEntriesCount,
			}
		}
		writeJSON(w, http.StatusOK, resp)
	case http.MethodDelete:
		if err := s.app.DeleteEntry(user, id); err != nil {
			writeEntryError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	if limiter == nil {
		return true
	}
	key := r.URL.Path + "|" + util.ClientIP(r, s.trustedProxies)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func writeSubmitError(w http.ResponseWriter, err error) {
	var gatewayErr *ai.GatewayError
	switch {
	case errors.Is(err, app.ErrDuplicateEntry):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrAnonymousHelpType):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, app.ErrNoContent),
		errors.Is(err, app.ErrHelpTypeRequired),
		errors.Is(err, app.ErrInvalidHelpType):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &gatewayErr):
		writeError(w, http.StatusBadGateway, "AI service unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeEntryError(w http.ResponseWriter, err error) {
	if errors.Is(err, app.ErrEntryNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// payloads
type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type preferencesRequest struct {
	PreferredName string `json:"preferredName"`
	Timezone      string `json:"timezone"`
}

type submitRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	HelpType string `json:"helpType"`
}

type anonymousResponse struct {
	AIResponse    string          `json:"aiResponse"`
	TokensUsed    int             `json:"tokensUsed"`
	EstimatedCost decimal.Decimal `json:"estimatedCost"`
	HelpType      domain.HelpType `json:"helpType"`
}

type entryPayload struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	HelpType  domain.HelpType `json:"helpType,omitempty"`
	EntryDate string          `json:"entryDate"`
	CreatedAt time.Time       `json:"createdAt"`
}

type entrySummary struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Preview   string          `json:"preview"`
	HelpType  domain.HelpType `json:"helpType,omitempty"`
	EntryDate string          `json:"entryDate"`
	CreatedAt time.Time       `json:"createdAt"`
}

type interactionPayload struct {
	Response            string          `json:"response"`
	TokensUsed          int             `json:"tokensUsed"`
	EstimatedCost       decimal.Decimal `json:"estimatedCost"`
	ContextEntriesCount int             `json:"contextEntriesCount"`
}

type entryResponse struct {
	Entry             entryPayload        `json:"entry"`
	ContextWindowSize int                 `json:"contextWindowSize"`
	AIInteraction     *interactionPayload `json:"aiInteraction,omitempty"`
	AIError           string              `json:"aiError,omitempty"`
}

func entryPayloadFrom(e domain.JournalEntry) entryPayload {
	return entryPayload{
		ID:        e.ID,
		Title:     e.Title,
		Content:   e.Content,
		HelpType:  e.HelpType,
		EntryDate: e.EntryDate,
		CreatedAt: e.CreatedAt,
	}
}

func entrySummaryFrom(e domain.JournalEntry) entrySummary {
	preview := e.Content
	if runes := []rune(preview); len(runes) > previewLength {
		preview = string(runes[:previewLength])
	}
	return entrySummary{
		ID:        e.ID,
		Title:     e.Title,
		Preview:   preview,
		HelpType:  e.HelpType,
		EntryDate: e.EntryDate,
		CreatedAt: e.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}
