package content

import (
	"context"
	"fmt"

	"github.com/osteele/liquid"
	"go.uber.org/zap"
)

const fallbackLayout = `<div style="max-width:600px;margin:0 auto;padding:40px;background:#ffffff;font-family:{{ font | escape }};border:1px solid #dddddd;border-radius:8px;">
  <p style="line-height:1.6;color:#333333;font-size:16px;white-space:pre-wrap;border-left:4px solid {{ primary_color | escape }};padding-left:16px;">{{ text | escape }}</p>
</div>`

// FallbackGenerator renders a plain layout whenever the wrapped generator
// fails to produce HTML. Other requests pass through.
type FallbackGenerator struct {
	Generator
	layout *liquid.Template
	logger *zap.Logger
}

func NewFallbackGenerator(inner Generator, log *zap.Logger) (*FallbackGenerator, error) {
	tpl, err := liquid.NewEngine().ParseString(fallbackLayout)
	if err != nil {
		return nil, fmt.Errorf("parsing fallback layout: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FallbackGenerator{Generator: inner, layout: tpl, logger: log}, nil
}

func (f *FallbackGenerator) GenerateHTML(ctx context.Context, req HTMLRequest) (string, error) {
	html, err := f.Generator.GenerateHTML(ctx, req)
	if err == nil {
		return html, nil
	}
	f.logger.Warn("HTML generation failed, using fallback layout", zap.Error(err))
	return f.Render(req)
}

// Render fills the fallback layout without calling the model.
func (f *FallbackGenerator) Render(req HTMLRequest) (string, error) {
	req = req.withDefaults()
	out, err := f.layout.RenderString(liquid.Bindings{
		"text":          req.Text,
		"font":          req.Font,
		"primary_color": req.PrimaryColor,
		"accent_color":  req.AccentColor,
	})
	if err != nil {
		return "", fmt.Errorf("rendering fallback layout: %w", err)
	}
	return out, nil
}
