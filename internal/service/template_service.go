// internal/service/template_service.go
package service

import (
	"context"
	"regexp"
	"slices"
	"strings"

	appErrors "github.com/unclebandit/salesmail-backend/internal/errors"
	"github.com/unclebandit/salesmail-backend/internal/model"
)

var placeholderPattern = regexp.MustCompile(`\{([^{}\s]+)\}`)

// RenderTemplate fills {name}, {email}, {company} and {position} from the
// recipient, then any {key} found in its custom fields. Substitutions run one
// after another, so a value holding placeholder syntax is expanded by later
// steps. Anything else is left as written.
func RenderTemplate(template string, r model.Recipient) string {
	result := template
	for _, f := range [...]struct{ key, value string }{
		{"name", r.Name},
		{"email", r.Email},
		{"company", r.Company},
		{"position", r.Position},
	} {
		result = strings.ReplaceAll(result, "{"+f.key+"}", f.value)
	}

	keys := make([]string, 0, len(r.CustomFields))
	for k := range r.CustomFields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		result = strings.ReplaceAll(result, "{"+k+"}", r.CustomFields[k])
	}
	return result
}

// DetectPlaceholders lists the distinct placeholder names in order of first
// appearance.
func DetectPlaceholders(template string) []string {
	names := []string{}
	seen := map[string]bool{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Preview is a template rendered for one stored customer.
type Preview struct {
	CustomerID   int      `json:"customer_id"`
	Subject      string   `json:"subject"`
	Body         string   `json:"body"`
	Placeholders []string `json:"placeholders"`
	Unresolved   []string `json:"unresolved"`
}

// RenderPreview renders subject and body for the customer with the given
// extra values. Placeholders still present after rendering are reported as
// unresolved.
func (s *CustomerService) RenderPreview(ctx context.Context, customerID int, subject, body string, fields map[string]string) (*Preview, error) {
	if strings.TrimSpace(subject) == "" && strings.TrimSpace(body) == "" {
		return nil, appErrors.NewValidation("template cannot be empty")
	}
	customer, err := s.CustomerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	r := customer.AsRecipient()
	r.CustomFields = fields
	p := &Preview{
		CustomerID:   customerID,
		Subject:      RenderTemplate(subject, r),
		Body:         RenderTemplate(body, r),
		Placeholders: DetectPlaceholders(subject + "\n" + body),
	}
	p.Unresolved = DetectPlaceholders(p.Subject + "\n" + p.Body)
	return p, nil
}
