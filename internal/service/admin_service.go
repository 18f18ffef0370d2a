package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thumbsmith/thumbsmith/internal/models"
)

// adminThumbnailLimit caps the admin asset listing at the most recent rows.
const adminThumbnailLimit = 100

type AdminService struct {
	log      *slog.Logger
	users    UserStore
	thumbs   ThumbnailStore
	payments PaymentStore
}

func NewAdminService(log *slog.Logger, users UserStore, thumbs ThumbnailStore, payments PaymentStore) *AdminService {
	return &AdminService{
		log:      log,
		users:    users,
		thumbs:   thumbs,
		payments: payments,
	}
}

type Stats struct {
	TotalUsers       int `json:"totalUsers"`
	TotalGenerations int `json:"totalGenerations"`
	TotalPayments    int `json:"totalPayments"`
	PremiumUsers     int `json:"premiumUsers"`
}

func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	totalThumbs, err := s.thumbs.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count thumbnails: %w", err)
	}
	totalPayments, err := s.payments.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count payments: %w", err)
	}
	premium, err := s.users.CountPremium(ctx)
	if err != nil {
		return nil, fmt.Errorf("count premium users: %w", err)
	}
	return &Stats{
		TotalUsers:       totalUsers,
		TotalGenerations: totalThumbs,
		TotalPayments:    totalPayments,
		PremiumUsers:     premium,
	}, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *AdminService) ListPayments(ctx context.Context) ([]models.PaymentWithOwner, error) {
	return s.payments.ListAll(ctx)
}

func (s *AdminService) ListThumbnails(ctx context.Context) ([]models.ThumbnailWithOwner, error) {
	return s.thumbs.ListAll(ctx, adminThumbnailLimit)
}

// TogglePremium flips the premium flag for an arbitrary user and returns
// the updated record. Two calls return the user to their original state.
func (s *AdminService) TogglePremium(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, notFoundf("user not found")
	}

	if err := s.users.SetPremium(ctx, userID, !user.IsPremium); err != nil {
		return nil, fmt.Errorf("set premium: %w", err)
	}
	user.IsPremium = !user.IsPremium
	s.log.Info("premium toggled", "user", userID, "premium", user.IsPremium)
	return user, nil
}

// BulkDeleteThumbnails deletes the targeted assets and reconciles each
// owner's usage counter by the number of their assets actually removed.
// Ids that resolve to nothing contribute nothing; each asset row is
// consumed exactly once even when concurrent deletes overlap.
func (s *AdminService) BulkDeleteThumbnails(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, invalidf("no thumbnail ids provided")
	}

	thumbs, err := s.thumbs.FindByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("find thumbnails: %w", err)
	}

	deletedPerOwner := make(map[int64]int)
	total := 0
	for _, thumb := range thumbs {
		deleted, err := s.thumbs.Delete(ctx, thumb.ID)
		if err != nil {
			return total, fmt.Errorf("delete thumbnail %d: %w", thumb.ID, err)
		}
		if deleted {
			deletedPerOwner[thumb.UserID]++
			total++
		}
	}

	for owner, count := range deletedPerOwner {
		if err := s.users.AdjustGenerationCount(ctx, owner, -count); err != nil {
			return total, fmt.Errorf("adjust generation count for user %d: %w", owner, err)
		}
	}

	s.log.Info("thumbnails bulk deleted", "requested", len(ids), "deleted", total)
	return total, nil
}
