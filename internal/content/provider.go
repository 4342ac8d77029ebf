package content

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/unclebandit/salesmail-backend/internal/config"
)

// New builds the generator selected by cfg.Provider.
func New(ctx context.Context, cfg config.ContentConfig, log *zap.Logger) (Generator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var completer Completer
	switch cfg.Provider {
	case "", "openai":
		completer = NewOpenAICompleter(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, cfg.Timeout)
	case "bedrock":
		c, err := NewBedrockCompleter(ctx, cfg.Bedrock.Region, cfg.Bedrock.ModelID)
		if err != nil {
			return nil, err
		}
		completer = c
	default:
		return nil, fmt.Errorf("unknown content provider %q", cfg.Provider)
	}

	var gen Generator = NewLLMGenerator(completer, cfg.RequestsPerSec, log)
	if cfg.FallbackHTML {
		fb, err := NewFallbackGenerator(gen, log)
		if err != nil {
			return nil, err
		}
		gen = fb
	}
	log.Info("content generator ready",
		zap.String("provider", cfg.Provider),
		zap.Bool("fallback_html", cfg.FallbackHTML),
	)
	return gen, nil
}
