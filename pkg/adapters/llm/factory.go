package llm

import (
	"fmt"
	"time"

	"github.com/aescanero/tripplanner/pkg/adapters/llm/anthropic"
	"github.com/aescanero/tripplanner/pkg/ports"
	"go.uber.org/zap"
)

// Config holds LLM client configuration
type Config struct {
	Provider   string
	APIKey     string
	Model      string
	MaxTokens  int64
	BaseURL    string
	MaxRetries int
	Timeout    time.Duration
	Logger     *zap.Logger
}

// NewClient creates a new text generator based on provider
func NewClient(cfg *Config) (ports.TextGenerator, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropic.NewClient(anthropic.Options{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			MaxTokens:  cfg.MaxTokens,
			BaseURL:    cfg.BaseURL,
			MaxRetries: cfg.MaxRetries,
			Timeout:    cfg.Timeout,
		}, cfg.Logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
