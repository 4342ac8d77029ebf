package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appErrors "github.com/unclebandit/salesmail-backend/internal/errors"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o"
)

// OpenAICompleter calls the chat completions endpoint.
type OpenAICompleter struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

func NewOpenAICompleter(apiKey, model, baseURL string, timeout time.Duration) *OpenAICompleter {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	return &OpenAICompleter{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (o *OpenAICompleter) Complete(ctx context.Context, c Completion) (string, error) {
	if o.APIKey == "" {
		return "", appErrors.NewUnavailable("openai", ErrNotConfigured)
	}

	messages := make([]chatMessage, 0, 2)
	if c.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: c.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: c.Prompt})

	payload, err := json.Marshal(chatRequest{
		Model:       o.Model,
		Messages:    messages,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading openai response: %w", err)
	}

	var decoded chatResponse
	_ = json.Unmarshal(body, &decoded)

	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if decoded.Error != nil && decoded.Error.Message != "" {
			msg = decoded.Error.Message
		}
		err := fmt.Errorf("openai returned %d: %s", resp.StatusCode, msg)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return "", appErrors.NewUnavailable("openai", err)
		}
		return "", err
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("openai response has no choices")
	}
	return decoded.Choices[0].Message.Content, nil
}

var _ Completer = (*OpenAICompleter)(nil)
