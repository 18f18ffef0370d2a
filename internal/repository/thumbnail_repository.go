package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/thumbsmith/thumbsmith/internal/models"
)

type ThumbnailRepository struct {
	db *sql.DB
}

func NewThumbnailRepository(db *sql.DB) *ThumbnailRepository {
	return &ThumbnailRepository{db: db}
}

const thumbnailColumns = `id, user_id, original_prompt, enhanced_prompt, image_url, size, layout, style, created_at`

func (r *ThumbnailRepository) Create(ctx context.Context, t *models.Thumbnail) error {
	const query = `
INSERT INTO thumbnails (user_id, original_prompt, enhanced_prompt, image_url, size, layout, style)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, t.UserID, t.OriginalPrompt, t.EnhancedPrompt, t.ImageURL, t.Size, t.Layout, t.Style)
	if err != nil {
		return fmt.Errorf("insert thumbnail: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	t.ID = id
	return nil
}

func (r *ThumbnailRepository) FindByID(ctx context.Context, id int64) (*models.Thumbnail, error) {
	const query = `SELECT ` + thumbnailColumns + ` FROM thumbnails WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	var t models.Thumbnail
	if err := row.Scan(&t.ID, &t.UserID, &t.OriginalPrompt, &t.EnhancedPrompt, &t.ImageURL, &t.Size, &t.Layout, &t.Style, &t.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan thumbnail: %w", err)
	}
	return &t, nil
}

func (r *ThumbnailRepository) ListByUser(ctx context.Context, userID int64) ([]models.Thumbnail, error) {
	const query = `SELECT ` + thumbnailColumns + ` FROM thumbnails WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list thumbnails: %w", err)
	}
	defer rows.Close()
	return scanThumbnails(rows)
}

// FindByIDs loads the subset of ids that exist; missing ids are simply
// absent from the result.
func (r *ThumbnailRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.Thumbnail, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `SELECT ` + thumbnailColumns + ` FROM thumbnails WHERE id IN (` + placeholders + `)`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find thumbnails: %w", err)
	}
	defer rows.Close()
	return scanThumbnails(rows)
}

// Delete removes a single thumbnail and reports whether this call actually
// consumed the row. Concurrent deletes of the same id see true exactly once.
func (r *ThumbnailRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const query = `DELETE FROM thumbnails WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete thumbnail: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListAll returns the most recent thumbnails across all users with the
// owner's email joined in, capped at limit.
func (r *ThumbnailRepository) ListAll(ctx context.Context, limit int) ([]models.ThumbnailWithOwner, error) {
	const query = `
SELECT t.id, t.user_id, t.original_prompt, t.enhanced_prompt, t.image_url, t.size, t.layout, t.style, t.created_at, u.email
FROM thumbnails t
JOIN users u ON u.id = t.user_id
ORDER BY t.created_at DESC, t.id DESC
LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list all thumbnails: %w", err)
	}
	defer rows.Close()

	var out []models.ThumbnailWithOwner
	for rows.Next() {
		var t models.ThumbnailWithOwner
		if err := rows.Scan(&t.ID, &t.UserID, &t.OriginalPrompt, &t.EnhancedPrompt, &t.ImageURL, &t.Size, &t.Layout, &t.Style, &t.CreatedAt, &t.UserEmail); err != nil {
			return nil, fmt.Errorf("scan thumbnail: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *ThumbnailRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM thumbnails`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count thumbnails: %w", err)
	}
	return count, nil
}

func scanThumbnails(rows *sql.Rows) ([]models.Thumbnail, error) {
	var out []models.Thumbnail
	for rows.Next() {
		var t models.Thumbnail
		if err := rows.Scan(&t.ID, &t.UserID, &t.OriginalPrompt, &t.EnhancedPrompt, &t.ImageURL, &t.Size, &t.Layout, &t.Style, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan thumbnail: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
