package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultCompletionTimeout = 60 * time.Second

// OpenAICompatGateway calls any OpenAI-compatible /v1/chat/completions
// endpoint. Works with OpenAI, LiteLLM, OpenRouter, vLLM, self-hosted models.
type OpenAICompatGateway struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAICompatGateway builds an OpenAI-compatible Gateway.
// baseURL should include the /v1 prefix, e.g. "https://api.openai.com/v1".
// apiKey can be empty for local models that do not require authentication.
func NewOpenAICompatGateway(baseURL, apiKey, model string) (*OpenAICompatGateway, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("openai-compat base URL required")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("openai-compat model required")
	}
	return &OpenAICompatGateway{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(apiKey),
		model:   model,
		httpClient: &http.Client{
			Timeout: defaultCompletionTimeout,
		},
	}, nil
}

// Complete implements Gateway using the OpenAI chat completions API.
func (g *OpenAICompatGateway) Complete(ctx context.Context, systemPrompt, userMessage string) (Completion, error) {
	messages := make([]oaiMessage, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, oaiMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, oaiMessage{Role: "user", Content: userMessage})

	reqBody := oaiChatRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   1000,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return Completion{}, &GatewayError{Err: err}
	}

	url := g.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Completion{}, &GatewayError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Completion{}, &GatewayError{Err: fmt.Errorf("request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp oaiErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return Completion{}, &GatewayError{Err: fmt.Errorf("api error: %s", errResp.Error.Message)}
		}
		return Completion{}, &GatewayError{Err: fmt.Errorf("api error: %s", resp.Status)}
	}

	var chatResp oaiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return Completion{}, &GatewayError{Err: fmt.Errorf("decode: %w", err)}
	}
	if len(chatResp.Choices) == 0 {
		return Completion{}, &GatewayError{Err: errors.New("empty response")}
	}
	text := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if text == "" {
		return Completion{}, &GatewayError{Err: errors.New("empty response")}
	}
	return Completion{
		Text:         text,
		InputTokens:  chatResp.Usage.PromptTokens,
		OutputTokens: chatResp.Usage.CompletionTokens,
	}, nil
}

// OpenAI-compatible request/response types.

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiChatRequest struct {
	Model       string       `json:"model"`
	Messages    []oaiMessage `json:"messages"`
	Temperature float64      `json:"temperature,omitempty"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
}

type oaiChatResponse struct {
	Choices []struct {
		Message oaiMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type oaiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
