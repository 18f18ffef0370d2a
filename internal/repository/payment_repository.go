package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/thumbsmith/thumbsmith/internal/models"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	const query = `
INSERT INTO payments (user_id, order_id, payment_id, status)
VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, payment.UserID, payment.OrderID, payment.PaymentID, payment.Status)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	payment.ID = id
	return nil
}

// Confirm flips a pending order owned by userID to confirmed, recording the
// provider payment id. The status precondition makes the transition a
// compare-and-swap: only the first caller sees true, concurrent duplicates
// see false and must inspect the row to distinguish already-confirmed from
// absent.
func (r *PaymentRepository) Confirm(ctx context.Context, orderID string, userID int64, paymentID string) (bool, error) {
	const query = `
UPDATE payments SET payment_id = ?, status = ?, updated_at = NOW()
WHERE order_id = ? AND user_id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, query, paymentID, models.PaymentStatusConfirmed, orderID, userID, models.PaymentStatusPending)
	if err != nil {
		return false, fmt.Errorf("confirm payment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("confirm rows affected: %w", err)
	}
	return affected > 0, nil
}

// FindByOrder returns nil without error when no order matches.
func (r *PaymentRepository) FindByOrder(ctx context.Context, orderID string, userID int64) (*models.Payment, error) {
	const query = `
SELECT id, user_id, order_id, payment_id, status, created_at, updated_at
FROM payments WHERE order_id = ? AND user_id = ? LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, orderID, userID)
	var p models.Payment
	if err := row.Scan(&p.ID, &p.UserID, &p.OrderID, &p.PaymentID, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	return &p, nil
}

// ListAll returns every payment newest-first with owner name/email joined in.
func (r *PaymentRepository) ListAll(ctx context.Context) ([]models.PaymentWithOwner, error) {
	const query = `
SELECT p.id, p.user_id, p.order_id, p.payment_id, p.status, p.created_at, p.updated_at, u.name, u.email
FROM payments p
JOIN users u ON u.id = p.user_id
ORDER BY p.created_at DESC, p.id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []models.PaymentWithOwner
	for rows.Next() {
		var p models.PaymentWithOwner
		if err := rows.Scan(&p.ID, &p.UserID, &p.OrderID, &p.PaymentID, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.UserName, &p.UserEmail); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PaymentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count payments: %w", err)
	}
	return count, nil
}
