package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/thumbsmith/thumbsmith/internal/models"
	"github.com/thumbsmith/thumbsmith/internal/razorpay"
)

type PaymentService struct {
	log      *slog.Logger
	users    UserStore
	payments PaymentStore
	provider *razorpay.Client
	notifier Notifier
	amount   int
	currency string
}

func NewPaymentService(log *slog.Logger, users UserStore, payments PaymentStore, provider *razorpay.Client, notifier Notifier, amountMinor int, currency string) *PaymentService {
	return &PaymentService{
		log:      log,
		users:    users,
		payments: payments,
		provider: provider,
		notifier: notifier,
		amount:   amountMinor,
		currency: currency,
	}
}

// CreateOrderResult is everything the client needs to open the provider's
// checkout UI.
type CreateOrderResult struct {
	OrderID  string `json:"orderId"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
}

func (s *PaymentService) CreateOrder(ctx context.Context, userID int64) (*CreateOrderResult, error) {
	if !s.provider.Configured() {
		return nil, ErrUnavailable
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, notFoundf("user not found")
	}
	if user.IsPremium {
		return nil, conflictf("already premium")
	}

	receipt := receiptID()
	order, err := s.provider.CreateOrder(ctx, s.amount, s.currency, receipt)
	if err != nil {
		return nil, fmt.Errorf("create provider order: %w", err)
	}

	if err := s.payments.Create(ctx, &models.Payment{
		UserID:    user.ID,
		OrderID:   order.ID,
		PaymentID: models.PaymentIDPlaceholder,
		Status:    models.PaymentStatusPending,
	}); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	return &CreateOrderResult{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    s.provider.KeyID(),
	}, nil
}

// Verify checks the checkout signature and promotes the user to premium.
// The signature recomputation is the sole authority; client-reported success
// is never trusted on its own. A repeated valid call for an order this user
// already confirmed is an idempotent no-op.
func (s *PaymentService) Verify(ctx context.Context, userID int64, orderID, paymentID, signature string) error {
	if !s.provider.Configured() {
		return ErrUnavailable
	}
	if orderID == "" || paymentID == "" || signature == "" {
		return invalidf("order id, payment id and signature are required")
	}

	if !s.provider.VerifySignature(orderID, paymentID, signature) {
		s.log.Warn("payment signature mismatch", "user", userID, "order", orderID)
		return ErrVerification
	}

	confirmed, err := s.payments.Confirm(ctx, orderID, userID, paymentID)
	if err != nil {
		return fmt.Errorf("confirm payment: %w", err)
	}
	if !confirmed {
		existing, err := s.payments.FindByOrder(ctx, orderID, userID)
		if err != nil {
			return fmt.Errorf("find payment: %w", err)
		}
		if existing == nil {
			return notFoundf("payment not found")
		}
		if existing.Status == models.PaymentStatusConfirmed {
			// Already processed, possibly by a concurrent duplicate call or
			// a retry after the premium write failed mid-flight. Re-assert
			// the flag so a confirmed order always ends with a premium user.
			if err := s.users.SetPremium(ctx, userID, true); err != nil {
				return fmt.Errorf("set premium: %w", err)
			}
			return nil
		}
		return fmt.Errorf("payment in unexpected state %q", existing.Status)
	}

	if err := s.users.SetPremium(ctx, userID, true); err != nil {
		return fmt.Errorf("set premium: %w", err)
	}

	if user, err := s.users.FindByID(ctx, userID); err == nil && user != nil {
		go s.notifier.SendPremiumActivated(user.Email, user.Name)
	}

	s.log.Info("premium activated", "user", userID, "order", orderID)
	return nil
}

func receiptID() string {
	receipt := "prem_" + uuid.NewString()
	// The provider caps receipts at 40 characters.
	if len(receipt) > 40 {
		receipt = receipt[:40]
	}
	return receipt
}
