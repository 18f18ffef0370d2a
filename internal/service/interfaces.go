package service

import (
	"context"

	"github.com/thumbsmith/thumbsmith/internal/hf"
	"github.com/thumbsmith/thumbsmith/internal/models"
)

// UserStore is the durable user record: identity, quota counter, premium
// flag. Implemented by repository.UserRepository.
type UserStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// ReserveGeneration atomically increments the usage counter when the
	// user is premium or still under freeLimit; it reports whether the
	// reservation was granted.
	ReserveGeneration(ctx context.Context, userID int64, freeLimit int) (bool, error)
	ReleaseGeneration(ctx context.Context, userID int64) error
	AdjustGenerationCount(ctx context.Context, userID int64, delta int) error
	SetPremium(ctx context.Context, userID int64, premium bool) error
	Count(ctx context.Context) (int, error)
	CountPremium(ctx context.Context) (int, error)
}

// ThumbnailStore persists generated assets. Implemented by
// repository.ThumbnailRepository.
type ThumbnailStore interface {
	Create(ctx context.Context, t *models.Thumbnail) error
	FindByID(ctx context.Context, id int64) (*models.Thumbnail, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Thumbnail, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Thumbnail, error)
	ListAll(ctx context.Context, limit int) ([]models.ThumbnailWithOwner, error)
	// Delete reports whether this call consumed the row.
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
}

// PaymentStore persists upgrade orders. Implemented by
// repository.PaymentRepository.
type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	// Confirm is the pending-to-confirmed compare-and-swap.
	Confirm(ctx context.Context, orderID string, userID int64, paymentID string) (bool, error)
	FindByOrder(ctx context.Context, orderID string, userID int64) (*models.Payment, error)
	ListAll(ctx context.Context) ([]models.PaymentWithOwner, error)
	Count(ctx context.Context) (int, error)
}

// Enhancer is the strict prompt-rewrite call. Implemented by gemini.Client.
type Enhancer interface {
	Enhance(ctx context.Context, prompt, style string) (string, error)
}

// ImageGenerator produces image bytes for a prompt. Implemented by hf.Client.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, opts hf.GenerateOptions) (*hf.Image, error)
}

// Uploader stores image bytes and returns a public URL. Implemented by
// storage.Uploader; may be absent, in which case images are inlined.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// Notifier delivers best-effort user notifications. Implemented by
// mailer.Mailer.
type Notifier interface {
	SendThumbnailReady(to, name, prompt, imageURL string)
	SendPremiumActivated(to, name string)
}
