// Package anthropic implements text generation on the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = anthropic.ModelClaudeSonnet4_20250514

	// DefaultMaxTokens bounds each completion.
	DefaultMaxTokens int64 = 2048

	systemPrompt = "You are a travel planning assistant. Respond with valid JSON only, no prose."
)

// ErrEmptyResponse is returned when the model produces no text.
var ErrEmptyResponse = errors.New("empty response from model")

// Options configures a Client.
type Options struct {
	APIKey     string
	Model      string
	MaxTokens  int64
	BaseURL    string
	MaxRetries int
	Timeout    time.Duration
}

// Client generates text with Claude.
type Client struct {
	inner     anthropic.Client
	model     anthropic.Model
	maxTokens int64
	logger    *zap.Logger
}

// NewClient creates a new Anthropic client.
func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(opts.MaxRetries),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}

	model := anthropic.Model(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &Client{
		inner:     anthropic.NewClient(reqOpts...),
		model:     model,
		maxTokens: maxTokens,
		logger:    logger,
	}, nil
}

// Generate sends a single-turn prompt and returns the concatenated text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(variant.Text)
		}
	}

	c.logger.Debug("completion received",
		zap.String("model", string(c.model)),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("duration", time.Since(start)))

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
