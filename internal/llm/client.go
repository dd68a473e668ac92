// Package llm wraps the OpenAI-compatible generation and embedding endpoints
// used as the extraction, verification, and embedding backends. Any endpoint
// speaking the chat-completions and embeddings protocols works (OpenAI,
// Gemini's compatibility layer, Ollama); only the base URL changes.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/truelens/truelens/internal/model"
	"github.com/truelens/truelens/internal/rules"
)

// Client is the OpenAI-compatible backend implementation. The returned text
// is raw and may be malformed or truncated; callers must feed it through the
// resilient parser and never assume well-formed output.
type Client struct {
	api    *openai.Client
	config model.LLMConfig
}

// NewClient creates a backend client from configuration.
func NewClient(cfg model.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:    openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

// ExtractClaims asks the backend to extract claims and flagged terms from
// session entries. Returns the raw response text.
func (c *Client) ExtractClaims(ctx context.Context, entries []model.Entry, mediaCtx *model.MediaContext, defs []rules.FlagDefinition) (string, error) {
	prompt := BuildExtractionPrompt(entries, mediaCtx, defs)
	return c.complete(ctx, extractionSystemPrompt, prompt)
}

// VerifyClaim asks the backend to classify a claim against evidence
// snippets. Returns the raw response text.
func (c *Client) VerifyClaim(ctx context.Context, claimText, domain string, evidence []model.EvidenceSnippet) (string, error) {
	prompt := BuildVerificationPrompt(claimText, domain, evidence)
	return c.complete(ctx, verificationSystemPrompt, prompt)
}

// Embed generates an embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	embModel := c.config.EmbeddingModel
	if embModel == "" {
		embModel = string(openai.SmallEmbedding3)
	}

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(embModel),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("llm: empty embedding response")
	}

	return resp.Data[0].Embedding, nil
}

func (c *Client) complete(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	chatModel := c.config.Model
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	maxTokens := c.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 8192
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: empty completion response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) timeout() time.Duration {
	if c.config.Timeout > 0 {
		return time.Duration(c.config.Timeout) * time.Second
	}
	return 30 * time.Second
}
