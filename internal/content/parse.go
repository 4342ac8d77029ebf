package content

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	htmlFenceOpen = regexp.MustCompile("(?i)^```(?:html)?\\s*")
	jsonFenceOpen = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	fenceClose    = regexp.MustCompile("\\s*```\\s*$")
	strayTicks    = regexp.MustCompile("^`+\\s*|\\s*`+$")
	firstTag      = regexp.MustCompile(`(?i)<[a-z!]`)
	subjectMarker = regexp.MustCompile(`件名[：:]\s*(.+)`)
	bodyMarker    = regexp.MustCompile(`(?s)本文[：:]\s*(.+)`)
)

// CleanHTML strips markdown code fences and any prose the model put before
// the first tag.
func CleanHTML(raw string) string {
	html := strings.TrimSpace(raw)
	html = htmlFenceOpen.ReplaceAllString(html, "")
	html = fenceClose.ReplaceAllString(html, "")
	html = strayTicks.ReplaceAllString(html, "")
	html = strings.TrimSpace(html)

	if !strings.HasPrefix(html, "<") {
		if loc := firstTag.FindStringIndex(html); loc != nil {
			html = html[loc[0]:]
		}
	}
	return html
}

// parseGeneratedContent decodes the JSON reply of a content request. A reply
// that is not the expected JSON is used verbatim with the default colors.
func parseGeneratedContent(raw string) *GeneratedContent {
	text := strings.TrimSpace(raw)
	body := jsonFenceOpen.ReplaceAllString(text, "")
	body = fenceClose.ReplaceAllString(body, "")

	var parsed GeneratedContent
	if err := json.Unmarshal([]byte(body), &parsed); err == nil &&
		parsed.Content != "" && parsed.PrimaryColor != "" && parsed.AccentColor != "" {
		return &parsed
	}
	return &GeneratedContent{
		Content:      text,
		PrimaryColor: DefaultPrimaryColor,
		AccentColor:  DefaultAccentColor,
	}
}

// parsePersonalized splits a "件名: ... 本文: ..." reply. Without a subject
// marker the requested subject, or DefaultSubject, is used; without a body
// marker the whole reply is the body.
func parsePersonalized(raw, requestedSubject string) *PersonalizedContent {
	out := &PersonalizedContent{Subject: requestedSubject, Body: strings.TrimSpace(raw)}
	if out.Subject == "" {
		out.Subject = DefaultSubject
	}
	if m := subjectMarker.FindStringSubmatch(raw); m != nil {
		out.Subject = strings.TrimSpace(m[1])
	}
	if m := bodyMarker.FindStringSubmatch(raw); m != nil {
		out.Body = strings.TrimSpace(m[1])
	}
	return out
}
