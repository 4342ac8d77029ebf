package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	appErrors "github.com/unclebandit/salesmail-backend/internal/errors"
	"github.com/unclebandit/salesmail-backend/internal/model"
)

// CustomerRepositoryInterface defines methods used by services
type CustomerRepositoryInterface interface {
	Ping(ctx context.Context) error
	GetByID(ctx context.Context, id int) (*model.Customer, error)
	List(ctx context.Context, filter model.CustomerFilter, offset, limit int) ([]model.Customer, int, error)
	UpsertByEmail(ctx context.Context, c *model.Customer) error
	Update(ctx context.Context, c *model.Customer) error
	EmailTakenByOther(ctx context.Context, email string, id int) (bool, error)
	Delete(ctx context.Context, id int) error
	DeleteAll(ctx context.Context) (int64, error)
}

// CustomerRepository is the concrete implementation
type CustomerRepository struct {
	DB *sql.DB
}

const customerColumns = `
    c.id, c.name, c.email, c.company, c.position, c.industry_id, c.category_id,
    i.name, s.name, c.created_at, c.updated_at`

const customerFrom = `
    FROM customers c
    LEFT JOIN industries i ON i.id = c.industry_id
    LEFT JOIN categories s ON s.id = c.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Company, &c.Position, &c.IndustryID, &c.CategoryID,
		&c.IndustryName, &c.CategoryName, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Ping reports whether the store is reachable.
func (r *CustomerRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

// GetByID fetches a customer by ID
func (r *CustomerRepository) GetByID(ctx context.Context, id int) (*model.Customer, error) {
	query := `SELECT` + customerColumns + customerFrom + ` WHERE c.id = $1`
	c, err := scanCustomer(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("customer", id)
		}
		return nil, err
	}
	return c, nil
}

// List returns one page of customers, newest first, plus the filtered total.
func (r *CustomerRepository) List(ctx context.Context, filter model.CustomerFilter, offset, limit int) ([]model.Customer, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argPos := 1

	if filter.IndustryID != nil {
		where += fmt.Sprintf(" AND c.industry_id=$%d", argPos)
		args = append(args, *filter.IndustryID)
		argPos++
	}
	if filter.CategoryID != nil {
		where += fmt.Sprintf(" AND c.category_id=$%d", argPos)
		args = append(args, *filter.CategoryID)
		argPos++
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		where += fmt.Sprintf(" AND (c.name ILIKE $%d OR c.email ILIKE $%d OR c.company ILIKE $%d)", argPos, argPos, argPos)
		args = append(args, "%"+s+"%")
		argPos++
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*)`+customerFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT` + customerColumns + customerFrom + where +
		fmt.Sprintf(" ORDER BY c.created_at DESC, c.id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	customers := []model.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, *c)
	}
	return customers, total, rows.Err()
}

// UpsertByEmail inserts the customer or overwrites the row with the same
// (lower-cased) email. c.ID and c.CreatedAt are filled from the stored row.
func (r *CustomerRepository) UpsertByEmail(ctx context.Context, c *model.Customer) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	query := `
        INSERT INTO customers (name, email, company, position, industry_id, category_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        ON CONFLICT (email) DO UPDATE
        SET name=EXCLUDED.name, company=EXCLUDED.company, position=EXCLUDED.position,
            industry_id=EXCLUDED.industry_id, category_id=EXCLUDED.category_id, updated_at=NOW()
        RETURNING id, created_at
    `
	return r.DB.QueryRowContext(ctx, query,
		c.Name, c.Email, c.Company, c.Position, c.IndustryID, c.CategoryID,
	).Scan(&c.ID, &c.CreatedAt)
}

// Update overwrites an existing customer by ID.
func (r *CustomerRepository) Update(ctx context.Context, c *model.Customer) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	query := `
        UPDATE customers
        SET name=$1, email=$2, company=$3, position=$4, industry_id=$5, category_id=$6, updated_at=NOW()
        WHERE id=$7
    `
	res, err := r.DB.ExecContext(ctx, query, c.Name, c.Email, c.Company, c.Position, c.IndustryID, c.CategoryID, c.ID)
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return appErrors.NewConflict("email %s is already used by another customer", c.Email)
		}
		return err
	}
	return requireAffected(res, "customer", c.ID)
}

// EmailTakenByOther reports whether another customer already uses email.
func (r *CustomerRepository) EmailTakenByOther(ctx context.Context, email string, id int) (bool, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM customers WHERE email = $1 AND id <> $2`,
		strings.ToLower(strings.TrimSpace(email)), id,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM customers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "customer", id)
}

// DeleteAll removes every customer and returns how many were deleted.
func (r *CustomerRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM customers`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isPQCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

func requireAffected(res sql.Result, entity string, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewNotFound(entity, id)
	}
	return nil
}

var _ CustomerRepositoryInterface = (*CustomerRepository)(nil)
