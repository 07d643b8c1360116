// Package openai provides a summarizer backed by the OpenAI chat
// completion API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driven"
)

// Ensure Summarizer implements the interface.
var _ driven.Summarizer = (*Summarizer)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI summarizer.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Summarizer produces summaries through the chat completion endpoint.
type Summarizer struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// chatCompletionRequest is the OpenAI /chat/completions request format.
type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the OpenAI /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// New creates an OpenAI summarizer.
func New(cfg Config) (*Summarizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Summarizer{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Summarize implements driven.Summarizer.
func (s *Summarizer) Summarize(ctx context.Context, docs []domain.DocumentContent, maxLength int) (*domain.Summary, error) {
	summary := &domain.Summary{
		Documents: make([]domain.SummaryDocument, 0, len(docs)),
	}
	for _, doc := range docs {
		summary.Documents = append(summary.Documents, domain.SummaryDocument{
			ID:     doc.ID,
			Title:  doc.Title,
			Source: doc.Source,
		})
	}
	if len(docs) == 0 {
		return summary, nil
	}

	content, err := s.chatCompletion(ctx, buildPrompt(docs, maxLength))
	if err != nil {
		return nil, err
	}

	text, keyPoints := parseResponse(content)
	summary.Summary = text
	summary.KeyPoints = keyPoints
	return summary, nil
}

func (s *Summarizer) chatCompletion(ctx context.Context, prompt string) (string, error) {
	reqBody := chatCompletionRequest{
		Model: s.model,
		Messages: []message{
			{Role: "system", Content: "You summarize workplace documents concisely and factually."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai: read response: %w", err)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("openai: decode response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai: API error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai: unexpected status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai: empty completion")
	}
	return parsed.Choices[0].Message.Content, nil
}

// buildPrompt assembles the documents into one instruction. Content is
// already capped upstream, but the join is bounded again defensively.
func buildPrompt(docs []domain.DocumentContent, maxLength int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Summarize the following %d documents in at most %d characters. ", len(docs), maxLength)
	sb.WriteString("Then list one key point per document, each on its own line starting with \"- \".\n\n")

	for i, doc := range docs {
		fmt.Fprintf(&sb, "Document %d [%s] %s:\n%s\n\n", i+1, doc.Source, doc.Title, doc.Content)
	}
	return sb.String()
}

// parseResponse splits the completion into summary text and key points.
// Lines starting with "- " are key points; the rest is the summary.
func parseResponse(content string) (string, []string) {
	var summaryLines, keyPoints []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") {
			keyPoints = append(keyPoints, strings.TrimPrefix(trimmed, "- "))
			continue
		}
		if trimmed != "" {
			summaryLines = append(summaryLines, trimmed)
		}
	}
	return strings.Join(summaryLines, " "), keyPoints
}
