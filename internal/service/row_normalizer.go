package service

import "strings"

// NormalizedCustomer is one import row after field extraction and cleanup.
type NormalizedCustomer struct {
	Name     string
	Email    string
	Company  string
	Position string
	Industry string
	Category string
}

// fieldRule lists the column names accepted for one logical field, in
// priority order.
type fieldRule struct {
	field   string
	aliases []string
}

var (
	nameRule        = fieldRule{"name", []string{"代表者名", "担当者名", "氏名", "名前", "name"}}
	emailRule       = fieldRule{"email", []string{"メールアドレス", "Email", "mail", "email"}}
	companyRule     = fieldRule{"company", []string{"法人名称", "会社名", "社名", "法人名", "company"}}
	positionRule    = fieldRule{"position", []string{"役職", "肩書き", "部署", "position"}}
	rawCategoryRule = fieldRule{"category", []string{"業種(中分類1)", "業種中分類"}}
)

// extract returns the first non-empty value among the rule's aliases.
func (r fieldRule) extract(record map[string]string) string {
	for _, alias := range r.aliases {
		if v := strings.TrimSpace(record[alias]); v != "" {
			return v
		}
	}
	return ""
}

// firstAddress keeps the first non-empty segment of a "/"-separated cell.
func firstAddress(cell string) string {
	if !strings.Contains(cell, "/") {
		return cell
	}
	for _, part := range strings.Split(cell, "/") {
		if p := strings.TrimSpace(part); p != "" {
			return p
		}
	}
	return ""
}

// NormalizeRow extracts a customer from a loosely structured CSV record.
// industry is applied as-is to every row of a file. The second result is
// false when the row must be skipped.
func NormalizeRow(record map[string]string, industry string) (*NormalizedCustomer, bool) {
	email := firstAddress(emailRule.extract(record))
	company := companyRule.extract(record)

	if email == "" && company == "" {
		return nil, false
	}
	if !IsValidEmail(email) {
		return nil, false
	}

	category := CategoryOther
	if raw := rawCategoryRule.extract(record); raw != "" {
		category = MapCategory(raw)
	}

	name := nameRule.extract(record)
	if name == "" {
		name = company
	}

	return &NormalizedCustomer{
		Name:     name,
		Email:    email,
		Company:  company,
		Position: positionRule.extract(record),
		Industry: industry,
		Category: category,
	}, true
}
