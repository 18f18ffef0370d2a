package httpapi

import (
	"net/http"

	"github.com/thumbsmith/thumbsmith/internal/auth"
)

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		s.writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	result, err := s.payments.CreateOrder(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

type verifyPaymentRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		s.writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req verifyPaymentRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := s.payments.Verify(r.Context(), claims.UserID, req.OrderID, req.PaymentID, req.Signature); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "premium activated",
	})
}
