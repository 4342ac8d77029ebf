package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "<div>hi</div>", "<div>hi</div>"},
		{"html fence", "```html\n<div>hi</div>\n```", "<div>hi</div>"},
		{"bare fence", "```\n<p>x</p>\n```", "<p>x</p>"},
		{"leading prose", "Here is your email:\n<table><tr><td>x</td></tr></table>", "<table><tr><td>x</td></tr></table>"},
		{"doctype", "Sure!\n<!DOCTYPE html><html></html>", "<!DOCTYPE html><html></html>"},
		{"no tags", "just text", "just text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanHTML(tt.raw))
		})
	}
}

func TestParseGeneratedContent(t *testing.T) {
	t.Run("json reply", func(t *testing.T) {
		got := parseGeneratedContent("```json\n{\"content\":\"本文\",\"primaryColor\":\"#112233\",\"accentColor\":\"#445566\"}\n```")
		assert.Equal(t, &GeneratedContent{Content: "本文", PrimaryColor: "#112233", AccentColor: "#445566"}, got)
	})

	t.Run("missing colors falls back", func(t *testing.T) {
		raw := `{"content":"本文"}`
		got := parseGeneratedContent(raw)
		assert.Equal(t, raw, got.Content)
		assert.Equal(t, DefaultPrimaryColor, got.PrimaryColor)
		assert.Equal(t, DefaultAccentColor, got.AccentColor)
	})

	t.Run("prose reply", func(t *testing.T) {
		got := parseGeneratedContent("いつもお世話になっております。")
		assert.Equal(t, "いつもお世話になっております。", got.Content)
		assert.Equal(t, DefaultPrimaryColor, got.PrimaryColor)
	})
}

func TestParsePersonalized(t *testing.T) {
	t.Run("both markers", func(t *testing.T) {
		got := parsePersonalized("件名: 新サービスのご案内\n\n本文:\n山田様\nご紹介です。", "")
		assert.Equal(t, "新サービスのご案内", got.Subject)
		assert.Equal(t, "山田様\nご紹介です。", got.Body)
	})

	t.Run("full-width colon", func(t *testing.T) {
		got := parsePersonalized("件名：ご挨拶\n本文：よろしくお願いします", "")
		assert.Equal(t, "ご挨拶", got.Subject)
		assert.Equal(t, "よろしくお願いします", got.Body)
	})

	t.Run("no markers uses requested subject", func(t *testing.T) {
		got := parsePersonalized("本文だけの返答", "ご案内")
		assert.Equal(t, "ご案内", got.Subject)
		assert.Equal(t, "本文だけの返答", got.Body)

		got = parsePersonalized("返答", "")
		assert.Equal(t, DefaultSubject, got.Subject)
		assert.Equal(t, "返答", got.Body)
	})
}
