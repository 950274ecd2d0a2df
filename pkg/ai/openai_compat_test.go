package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAICompatGatewayComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key-1" {
			t.Errorf("authorization header = %q", got)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "I hear you."}},
			},
			"usage": map[string]int{"prompt_tokens": 120, "completion_tokens": 80},
		})
	}))
	defer srv.Close()

	gw, err := NewOpenAICompatGateway(srv.URL+"/v1", "key-1", "test-model")
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	got, err := gw.Complete(context.Background(), "be kind", "I feel anxious")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.Text != "I hear you." {
		t.Fatalf("text = %q", got.Text)
	}
	if got.InputTokens != 120 || got.OutputTokens != 80 {
		t.Fatalf("tokens = %d/%d, want 120/80", got.InputTokens, got.OutputTokens)
	}
}

func TestOpenAICompatGatewayErrorsWrapGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limited", "type": "rate_limit"},
		})
	}))
	defer srv.Close()

	gw, err := NewOpenAICompatGateway(srv.URL+"/v1", "", "test-model")
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	_, err = gw.Complete(context.Background(), "", "hello")
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *GatewayError, got %T (%v)", err, err)
	}
}

func TestOpenAICompatGatewayEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	gw, err := NewOpenAICompatGateway(srv.URL+"/v1", "", "test-model")
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	var gwErr *GatewayError
	if _, err := gw.Complete(context.Background(), "", "hello"); !errors.As(err, &gwErr) {
		t.Fatalf("expected *GatewayError for empty choices, got %v", err)
	}
}

func TestNewOpenAICompatGatewayValidation(t *testing.T) {
	if _, err := NewOpenAICompatGateway("", "", "m"); err == nil {
		t.Fatalf("expected error for missing base URL")
	}
	if _, err := NewOpenAICompatGateway("http://localhost/v1", "", ""); err == nil {
		t.Fatalf("expected error for missing model")
	}
}
