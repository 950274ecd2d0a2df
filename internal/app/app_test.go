package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"mindfulcompanion/pkg/ai"
	"mindfulcompanion/pkg/domain"
	"mindfulcompanion/pkg/store"
)

type fakeGateway struct {
	completion ai.Completion
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeGateway) Complete(_ context.Context, systemPrompt, userMessage string) (ai.Completion, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userMessage
	if f.err != nil {
		return ai.Completion{}, f.err
	}
	return f.completion, nil
}

func newTestApp(t *testing.T, gw ai.Gateway) (*App, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	a, err := New(Config{
		Store:    mem,
		Sessions: store.NewJWTSessionStore("test-secret", time.Hour),
		Gateway:  gw,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, mem
}

func signUpUser(t *testing.T, a *App, email string) domain.User {
	t.Helper()
	user, _, err := a.SignUp(email, "Sup3r$ecurePass!")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	return user
}

func TestSubmitEntryRejectsEmptyContent(t *testing.T) {
	a, _ := newTestApp(t, &fakeGateway{})
	for _, content := range []string{"", "   \n\t"} {
		_, err := a.SubmitEntry(context.Background(), SubmitRequest{Content: content, HelpType: domain.HelpAcuteValidation})
		if !errors.Is(err, ErrNoContent) {
			t.Fatalf("content %q: got %v, want ErrNoContent", content, err)
		}
	}
}

func TestSubmitEntryRejectsUnknownHelpType(t *testing.T) {
	a, _ := newTestApp(t, &fakeGateway{})
	_, err := a.SubmitEntry(context.Background(), SubmitRequest{Content: "hi", HelpType: "deep_therapy"})
	if !errors.Is(err, ErrInvalidHelpType) {
		t.Fatalf("got %v, want ErrInvalidHelpType", err)
	}
}

func TestSubmitAnonymousSuccess(t *testing.T) {
	gw := &fakeGateway{completion: ai.Completion{Text: "you are doing fine", InputTokens: 120, OutputTokens: 80}}
	a, mem := newTestApp(t, gw)

	res, err := a.SubmitEntry(context.Background(), SubmitRequest{Content: "feeling anxious", HelpType: domain.HelpAcuteValidation})
	if err != nil {
		t.Fatalf("SubmitEntry: %v", err)
	}
	if res.Entry != nil {
		t.Fatalf("anonymous submission must not persist an entry")
	}
	if res.AI == nil || res.AI.Response != "you are doing fine" {
		t.Fatalf("unexpected AI result: %+v", res.AI)
	}
	if res.AI.TokensUsed != 200 {
		t.Fatalf("TokensUsed = %d, want 200", res.AI.TokensUsed)
	}
	want := ai.EstimateCost(120, 80)
	if !res.AI.EstimatedCost.Equal(want) {
		t.Fatalf("EstimatedCost = %s, want %s", res.AI.EstimatedCost, want)
	}
	if mem.EntryCount() != 0 || mem.InteractionCount() != 0 {
		t.Fatalf("anonymous submission must not write to the store")
	}
	if strings.Contains(gw.lastSystem, "You may address them as") {
		t.Fatalf("anonymous prompt must not carry a name:\n%s", gw.lastSystem)
	}
}

func TestSubmitAnonymousRequiresHelpType(t *testing.T) {
	a, _ := newTestApp(t, &fakeGateway{})
	_, err := a.SubmitEntry(context.Background(), SubmitRequest{Content: "hi"})
	if !errors.Is(err, ErrHelpTypeRequired) {
		t.Fatalf("got %v, want ErrHelpTypeRequired", err)
	}
}

func TestSubmitAnonymousRejectsAdvancedHelpTypes(t *testing.T) {
	a, _ := newTestApp(t, &fakeGateway{})
	for _, ht := range []domain.HelpType{domain.HelpChronicValidation, domain.HelpMaxAssessment, domain.HelpSaveOnly} {
		_, err := a.SubmitEntry(context.Background(), SubmitRequest{Content: "hi", HelpType: ht})
		if !errors.Is(err, ErrAnonymousHelpType) {
			t.Fatalf("help type %s: got %v, want ErrAnonymousHelpType", ht, err)
		}
	}
}

func TestSubmitAnonymousGatewayFailureIsFatal(t *testing.T) {
	gwErr := &ai.GatewayError{Err: errors.New("upstream 500")}
	a, _ := newTestApp(t, &fakeGateway{err: gwErr})
	_, err := a.SubmitEntry(context.Background(), SubmitRequest{Content: "hi", HelpType: domain.HelpAcuteSkills})
	var ge *ai.GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("got %v, want gateway error", err)
	}
}

func TestSubmitAuthenticatedSaveOnly(t *testing.T) {
	gw := &fakeGateway{}
	a, mem := newTestApp(t, gw)
	user := signUpUser(t, a, "save@example.com")

	res, err := a.SubmitEntry(context.Background(), SubmitRequest{
		UserID:   user.ID,
		Content:  "just logging today",
		Title:    "Quiet day",
		HelpType: domain.HelpSaveOnly,
	})
	if err != nil {
		t.Fatalf("SubmitEntry: %v", err)
	}
	if res.Entry == nil {
		t.Fatalf("expected a persisted entry")
	}
	if res.Entry.HelpType != "" {
		t.Fatalf("save-only entry stored help type %q, want empty", res.Entry.HelpType)
	}
	if res.AI != nil || res.AIError != "" {
		t.Fatalf("save-only must not produce an AI result: %+v", res)
	}
	if gw.calls != 0 {
		t.Fatalf("save-only must not call the gateway")
	}
	if mem.EntryCount() != 1 || mem.InteractionCount() != 0 {
		t.Fatalf("entries=%d interactions=%d, want 1/0", mem.EntryCount(), mem.InteractionCount())
	}
}

func TestSubmitAuthenticatedNoHelpType(t *testing.T) {
	gw := &fakeGateway{}
	a, mem := newTestApp(t, gw)
	user := signUpUser(t, a, "plain@example.com")

	res, err := a.SubmitEntry(context.Background(), SubmitRequest{UserID: user.ID, Content: "nothing to add"})
	if err != nil {
		t.Fatalf("SubmitEntry: %v", err)
	}
	if res.Entry == nil || res.AI != nil || gw.calls != 0 {
		t.Fatalf("empty help type should save without AI: %+v (calls=%d)", res, gw.calls)
	}
	if mem.EntryCount() != 1 {
		t.Fatalf("EntryCount = %d, want 1", mem.EntryCount())
	}
}

func TestSubmitAuthenticatedOneEntryPerDay(t *testing.T) {
	a, mem := newTestApp(t, &fakeGateway{completion: ai.Completion{Text: "ok"}})
	user := signUpUser(t, a, "daily@example.com")

	if _, err := a.SubmitEntry(context.Background(), SubmitRequest{UserID: user.ID, Content: "first"}); err != nil {
		t.Fatalf("first submission: %v", err)
	}
	_, err := a.SubmitEntry(context.Background(), SubmitRequest{UserID: user.ID, Content: "second"})
	if !errors.Is(err, ErrDuplicateEntry) {
		t.Fatalf("got %v, want ErrDuplicateEntry", err)
	}
	if mem.EntryCount() != 1 {
		t.Fatalf("EntryCount = %d, want 1", mem.EntryCount())
	}
}

func TestSubmitAuthenticatedGatewayFailureKeepsEntry(t *testing.T) {
	gwErr := &ai.GatewayError{Err: errors.New("timeout")}
	a, mem := newTestApp(t, &fakeGateway{err: gwErr})
	user := signUpUser(t, a, "fail@example.com")

	res, err := a.SubmitEntry(context.Background(), SubmitRequest{
		UserID:   user.ID,
		Content:  "rough day",
		HelpType: domain.HelpAcuteValidation,
	})
	if err != nil {
		t.Fatalf("SubmitEntry: %v", err)
	}
	if res.Entry == nil {
		t.Fatalf("entry must survive a gateway failure")
	}
	if res.AI != nil {
		t.Fatalf("no AI result expected on failure")
	}
	if !strings.HasPrefix(res.AIError, "Entry saved, but AI response failed: ") {
		t.Fatalf("AIError = %q", res.AIError)
	}
	if mem.EntryCount() != 1 || mem.InteractionCount() != 0 {
		t.Fatalf("entries=%d interactions=%d, want 1/0", mem.EntryCount(), mem.InteractionCount())
	}
}

func TestSubmitAuthenticatedChronicContext(t *testing.T) {
	gw := &fakeGateway{completion: ai.Completion{Text: "steady progress", InputTokens: 500, OutputTokens: 100}}
	a, mem := newTestApp(t, gw)
	user := signUpUser(t, a, "chronic@example.com")

	base := time.Now().UTC().AddDate(0, 0, -11)
	for i := 0; i < 10; i++ {
		day := base.AddDate(0, 0, i)
		err := mem.CreateEntry(domain.JournalEntry{
			ID:        fmt.Sprintf("prior-%d", i),
			UserID:    user.ID,
			Title:     fmt.Sprintf("Day %d", i),
			Content:   fmt.Sprintf("content %d", i),
			EntryDate: day.Format("2006-01-02"),
			CreatedAt: day,
		})
		if err != nil {
			t.Fatalf("seed entry %d: %v", i, err)
		}
	}

	res, err := a.SubmitEntry(context.Background(), SubmitRequest{
		UserID:   user.ID,
		Content:  "looking back",
		HelpType: domain.HelpChronicValidation,
	})
	if err != nil {
		t.Fatalf("SubmitEntry: %v", err)
	}
	if res.ContextCount != 7 {
		t.Fatalf("ContextCount = %d, want 7", res.ContextCount)
	}
	// Most recent 7 of the 10 priors, newest first.
	if !strings.Contains(gw.lastUser, "content 9") || !strings.Contains(gw.lastUser, "content 3") {
		t.Fatalf("context window missing expected entries:\n%s", gw.lastUser)
	}
	if strings.Contains(gw.lastUser, "content 2") {
		t.Fatalf("context window includes entries beyond the window:\n%s", gw.lastUser)
	}
	interaction, ok, err := mem.GetInteractionForEntry(res.Entry.ID)
	if err != nil || !ok {
		t.Fatalf("interaction not stored: ok=%v err=%v", ok, err)
	}
	if interaction.ContextEntriesCount != 7 {
		t.Fatalf("ContextEntriesCount = %d, want 7", interaction.ContextEntriesCount)
	}
	if interaction.InputTokens != 500 || interaction.OutputTokens != 100 {
		t.Fatalf("token counts %d/%d, want 500/100", interaction.InputTokens, interaction.OutputTokens)
	}
	if !interaction.Cost.Equal(ai.EstimateCost(500, 100)) {
		t.Fatalf("Cost = %s, want %s", interaction.Cost, ai.EstimateCost(500, 100))
	}
}

func TestSubmitAuthenticatedUsesPreferredName(t *testing.T) {
	gw := &fakeGateway{completion: ai.Completion{Text: "hello"}}
	a, _ := newTestApp(t, gw)
	user := signUpUser(t, a, "named@example.com")
	if _, err := a.UpdatePreferences(user, "Alex", "Europe/Berlin"); err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}

	_, err := a.SubmitEntry(context.Background(), SubmitRequest{
		UserID:   user.ID,
		Content:  "a good day",
		HelpType: domain.HelpAcuteValidation,
	})
	if err != nil {
		t.Fatalf("SubmitEntry: %v", err)
	}
	if !strings.Contains(gw.lastSystem, "You may address them as Alex.") {
		t.Fatalf("system prompt missing preferred name:\n%s", gw.lastSystem)
	}
}

func TestSignUpLoginLogout(t *testing.T) {
	a, _ := newTestApp(t, &fakeGateway{})

	user, token, err := a.SignUp("person@example.com", "Sup3r$ecurePass!")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if got, ok := a.UserFromToken(token); !ok || got.ID != user.ID {
		t.Fatalf("UserFromToken after signup: ok=%v got=%+v", ok, got)
	}

	if _, _, err := a.SignUp("person@example.com", "Sup3r$ecurePass!"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate signup: got %v, want ErrEmailTaken", err)
	}
	if _, _, err := a.Login("person@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password: got %v, want ErrInvalidCredentials", err)
	}

	_, token2, err := a.Login("PERSON@example.com", "Sup3r$ecurePass!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, ok := a.UserFromToken(token2); !ok {
		t.Fatalf("login token not usable")
	}
	if err := a.Logout(token2); err != nil {
		t.Fatalf("Logout: %v", err)
	}
}

func TestEntryHistoryScopedToOwner(t *testing.T) {
	a, mem := newTestApp(t, &fakeGateway{})
	owner := signUpUser(t, a, "owner@example.com")
	other := signUpUser(t, a, "other@example.com")

	entry := domain.JournalEntry{
		ID:        "e1",
		UserID:    owner.ID,
		Title:     "Mine",
		Content:   "private thoughts",
		EntryDate: "2026-08-29",
		CreatedAt: time.Now().UTC().Add(-24 * time.Hour),
	}
	if err := mem.CreateEntry(entry); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	entries, err := a.ListEntries(owner, 0)
	if err != nil || len(entries) != 1 {
		t.Fatalf("ListEntries: %v, n=%d", err, len(entries))
	}
	if _, _, err := a.GetEntry(other, "e1"); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("cross-user read: got %v, want ErrEntryNotFound", err)
	}
	if err := a.DeleteEntry(other, "e1"); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("cross-user delete: got %v, want ErrEntryNotFound", err)
	}
	if err := a.DeleteEntry(owner, "e1"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if mem.EntryCount() != 0 {
		t.Fatalf("entry not deleted")
	}
}
