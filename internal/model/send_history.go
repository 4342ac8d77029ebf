// internal/model/send_history.go
package model

import "time"

type SendHistory struct {
	ID              int         `db:"id" json:"id"`
	Subject         string      `db:"subject" json:"subject"`
	BodyTemplate    string      `db:"body_template" json:"body_template"`
	HTMLContent     *string     `db:"html_content" json:"html_content"`
	TotalRecipients int         `db:"total_recipients" json:"total_recipients"`
	SuccessCount    int         `db:"success_count" json:"success_count"`
	FailedCount     int         `db:"failed_count" json:"failed_count"`
	PrimaryColor    string      `db:"primary_color" json:"primary_color"`
	AccentColor     string      `db:"accent_color" json:"accent_color"`
	Font            string      `db:"font" json:"font"`
	Recipients      []Recipient `db:"recipients" json:"customers"`
	SentAt          time.Time   `db:"sent_at" json:"sent_at"`
}

// SuccessRate is the rounded success percentage, 0 when nothing was sent.
func (h *SendHistory) SuccessRate() int {
	if h.TotalRecipients <= 0 {
		return 0
	}
	return int(float64(h.SuccessCount)/float64(h.TotalRecipients)*100 + 0.5)
}
