package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	appErrors "github.com/unclebandit/salesmail-backend/internal/errors"
	"github.com/unclebandit/salesmail-backend/internal/model"
)

type SendHistoryRepositoryInterface interface {
	Create(ctx context.Context, h *model.SendHistory) error
	List(ctx context.Context, offset, limit int) ([]model.SendHistory, int, error)
	ListAll(ctx context.Context) ([]model.SendHistory, error)
	GetByID(ctx context.Context, id int) (*model.SendHistory, error)
	Delete(ctx context.Context, id int) error
	DeleteAll(ctx context.Context) (int64, error)
}

type SendHistoryRepository struct {
	DB *sql.DB
}

const sendHistoryColumns = `
    id, subject, body_template, html_content, total_recipients, success_count, failed_count,
    primary_color, accent_color, font, recipients, sent_at`

func scanSendHistory(row rowScanner) (*model.SendHistory, error) {
	var h model.SendHistory
	var recipients []byte
	err := row.Scan(&h.ID, &h.Subject, &h.BodyTemplate, &h.HTMLContent, &h.TotalRecipients,
		&h.SuccessCount, &h.FailedCount, &h.PrimaryColor, &h.AccentColor, &h.Font, &recipients, &h.SentAt)
	if err != nil {
		return nil, err
	}
	h.Recipients = []model.Recipient{}
	if len(recipients) > 0 {
		if err := json.Unmarshal(recipients, &h.Recipients); err != nil {
			return nil, fmt.Errorf("decoding recipients of send history %d: %w", h.ID, err)
		}
	}
	return &h, nil
}

// Create appends a send history; the recipient list is stored as JSON.
func (r *SendHistoryRepository) Create(ctx context.Context, h *model.SendHistory) error {
	recipients, err := json.Marshal(h.Recipients)
	if err != nil {
		return fmt.Errorf("encoding recipients: %w", err)
	}
	query := `
        INSERT INTO send_histories
        (subject, body_template, html_content, total_recipients, success_count, failed_count,
         primary_color, accent_color, font, recipients, sent_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
        RETURNING id, sent_at
    `
	return r.DB.QueryRowContext(ctx, query,
		h.Subject, h.BodyTemplate, h.HTMLContent, h.TotalRecipients, h.SuccessCount, h.FailedCount,
		h.PrimaryColor, h.AccentColor, h.Font, recipients,
	).Scan(&h.ID, &h.SentAt)
}

// List returns one page of histories, newest first, and the total count.
func (r *SendHistoryRepository) List(ctx context.Context, offset, limit int) ([]model.SendHistory, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM send_histories`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT`+sendHistoryColumns+` FROM send_histories ORDER BY sent_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	histories, err := collectSendHistories(rows)
	if err != nil {
		return nil, 0, err
	}
	return histories, total, nil
}

// ListAll returns every history, newest first. Used by the CSV export.
func (r *SendHistoryRepository) ListAll(ctx context.Context) ([]model.SendHistory, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT`+sendHistoryColumns+` FROM send_histories ORDER BY sent_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSendHistories(rows)
}

func collectSendHistories(rows *sql.Rows) ([]model.SendHistory, error) {
	histories := []model.SendHistory{}
	for rows.Next() {
		h, err := scanSendHistory(rows)
		if err != nil {
			return nil, err
		}
		histories = append(histories, *h)
	}
	return histories, rows.Err()
}

func (r *SendHistoryRepository) GetByID(ctx context.Context, id int) (*model.SendHistory, error) {
	h, err := scanSendHistory(r.DB.QueryRowContext(ctx,
		`SELECT`+sendHistoryColumns+` FROM send_histories WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("send history", id)
		}
		return nil, err
	}
	return h, nil
}

func (r *SendHistoryRepository) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM send_histories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "send history", id)
}

func (r *SendHistoryRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM send_histories`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ SendHistoryRepositoryInterface = (*SendHistoryRepository)(nil)
