package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/thumbsmith/thumbsmith/internal/models"
)

// ErrDuplicateEmail is returned when an insert trips the unique email index.
var ErrDuplicateEmail = errors.New("email already registered")

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, is_premium, generation_count, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	const query = `
INSERT INTO users (name, email, password_hash, role)
VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.Role)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	user.ID = id
	return user, nil
}

// FindByEmail returns nil without error when no user matches.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		var premium int
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &premium, &u.GenerationCount, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.IsPremium = premium != 0
		users = append(users, u)
	}
	return users, rows.Err()
}

// ReserveGeneration increments the usage counter only while the user is
// still entitled to generate: premium users always pass, free users pass
// while their counter is below freeLimit. The precondition and the
// increment are a single storage operation, so concurrent requests from
// the same free user cannot overrun the limit.
func (r *UserRepository) ReserveGeneration(ctx context.Context, userID int64, freeLimit int) (bool, error) {
	const query = `
UPDATE users SET generation_count = generation_count + 1, updated_at = NOW()
WHERE id = ? AND (is_premium = 1 OR generation_count < ?)`
	res, err := r.db.ExecContext(ctx, query, userID, freeLimit)
	if err != nil {
		return false, fmt.Errorf("reserve generation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reserve rows affected: %w", err)
	}
	return affected > 0, nil
}

// ReleaseGeneration undoes a reservation whose pipeline run failed.
func (r *UserRepository) ReleaseGeneration(ctx context.Context, userID int64) error {
	return r.AdjustGenerationCount(ctx, userID, -1)
}

// AdjustGenerationCount applies a corrective delta clamped at zero.
func (r *UserRepository) AdjustGenerationCount(ctx context.Context, userID int64, delta int) error {
	const query = `
UPDATE users SET generation_count = GREATEST(generation_count + ?, 0), updated_at = NOW()
WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, delta, userID); err != nil {
		return fmt.Errorf("adjust generation count: %w", err)
	}
	return nil
}

func (r *UserRepository) SetPremium(ctx context.Context, userID int64, premium bool) error {
	value := 0
	if premium {
		value = 1
	}
	const query = `UPDATE users SET is_premium = ?, updated_at = NOW() WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, value, userID); err != nil {
		return fmt.Errorf("set premium: %w", err)
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	return r.countWhere(ctx, `SELECT COUNT(*) FROM users`)
}

func (r *UserRepository) CountPremium(ctx context.Context) (int, error) {
	return r.countWhere(ctx, `SELECT COUNT(*) FROM users WHERE is_premium = 1`)
}

func (r *UserRepository) countWhere(ctx context.Context, query string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	var u models.User
	var premium int
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &premium, &u.GenerationCount, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.IsPremium = premium != 0
	return &u, nil
}
