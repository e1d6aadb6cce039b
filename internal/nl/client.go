// Package nl talks to the structured-output service that turns free-text
// commands into intent payloads.
package nl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tcal/internal/intent"
)

const (
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "gpt-4o-mini"
	requestTimeout = 30 * time.Second

	systemPrompt = "You are an assistant that turns short natural-language task-tracker " +
		"commands into structured intents. Choose the appropriate intent and fill in the required data."
)

// ProtocolError means the upstream service rejected the request or returned a
// response that does not fit the contract. It is distinct from domain
// validation errors and never causes a store mutation.
type ProtocolError struct {
	StatusCode int
	Message    string
}

func (e *ProtocolError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Message)
	}
	return "upstream error: " + e.Message
}

// Client is a thin chat-completions client constrained to structured output.
type Client struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a client with defaults filled in. The HTTP client carries
// a request timeout so a dead upstream cannot hang the session forever.
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		APIKey:     apiKey,
		Model:      model,
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: requestTimeout},
	}
}

type chatRequest struct {
	Model               string         `json:"model"`
	Messages            []chatMessage  `json:"messages"`
	Temperature         float64        `json:"temperature"`
	MaxCompletionTokens int            `json:"max_completion_tokens"`
	ResponseFormat      responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string         `json:"type"`
	JSONSchema map[string]any `json:"json_schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends the user's free-text command and returns the raw JSON intent
// payload produced by the service.
func (c *Client) Complete(ctx context.Context, userText string) ([]byte, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userText},
		},
		Temperature:         0,
		MaxCompletionTokens: 256,
		ResponseFormat: responseFormat{
			Type:       "json_schema",
			JSONSchema: intent.ResponseSchema(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("nl: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("nl: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &ProtocolError{Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProtocolError{Message: "read response: " + err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProtocolError{StatusCode: resp.StatusCode, Message: upstreamMessage(raw)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ProtocolError{Message: "unparseable response: " + err.Error()}
	}
	if parsed.Error != nil {
		return nil, &ProtocolError{Message: parsed.Error.Type + ": " + parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, &ProtocolError{Message: "response carried no content"}
	}
	return []byte(parsed.Choices[0].Message.Content), nil
}

// upstreamMessage pulls the error message out of an error body, falling back
// to a trimmed snippet of the raw payload.
func upstreamMessage(raw []byte) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	snippet := string(raw)
	if len(snippet) > 200 {
		snippet = snippet[:200] + "..."
	}
	if snippet == "" {
		snippet = "unknown error"
	}
	return snippet
}
