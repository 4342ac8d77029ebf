package content

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/unclebandit/salesmail-backend/internal/metrics"
)

// LLMGenerator implements Generator on top of any Completer. Outbound calls
// are paced by Limiter when set.
type LLMGenerator struct {
	Completer Completer
	Limiter   *rate.Limiter
	Logger    *zap.Logger
}

// NewLLMGenerator paces calls at perSecond requests per second; zero or
// less disables pacing.
func NewLLMGenerator(c Completer, perSecond float64, log *zap.Logger) *LLMGenerator {
	g := &LLMGenerator{Completer: c, Logger: log}
	if perSecond > 0 {
		g.Limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	if g.Logger == nil {
		g.Logger = zap.NewNop()
	}
	return g
}

func (g *LLMGenerator) complete(ctx context.Context, kind string, c Completion) (string, error) {
	if g.Limiter != nil {
		if err := g.Limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	text, err := g.Completer.Complete(ctx, c)
	if err != nil {
		metrics.ContentRequests.WithLabelValues(kind, "error").Inc()
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		metrics.ContentRequests.WithLabelValues(kind, "error").Inc()
		return "", fmt.Errorf("%s: empty reply from model", kind)
	}
	metrics.ContentRequests.WithLabelValues(kind, "ok").Inc()
	return text, nil
}

func (g *LLMGenerator) GenerateHTML(ctx context.Context, req HTMLRequest) (string, error) {
	req = req.withDefaults()
	raw, err := g.complete(ctx, "html", Completion{
		System:      htmlSystemPrompt,
		Prompt:      htmlPrompt(req),
		MaxTokens:   4096,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("generating HTML: %w", err)
	}
	html := CleanHTML(raw)
	if html != raw {
		g.Logger.Debug("cleaned model HTML reply", zap.Int("raw_len", len(raw)), zap.Int("html_len", len(html)))
	}
	return html, nil
}

func (g *LLMGenerator) GenerateContent(ctx context.Context, req ContentRequest) (*GeneratedContent, error) {
	raw, err := g.complete(ctx, "content", Completion{
		Prompt:      contentPrompt(req),
		MaxTokens:   2048,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}
	return parseGeneratedContent(raw), nil
}

func (g *LLMGenerator) GeneratePersonalized(ctx context.Context, req PersonalizeRequest) (*PersonalizedContent, error) {
	raw, err := g.complete(ctx, "personalized", Completion{
		System:      personalizeSystemPrompt,
		Prompt:      personalizePrompt(req),
		MaxTokens:   1000,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("generating personalized content for %s: %w", req.Customer.Name, err)
	}
	return parsePersonalized(raw, req.Subject), nil
}

var _ Generator = (*LLMGenerator)(nil)
