package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/thumbsmith/thumbsmith/internal/models"
)

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.admin.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.admin.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleAdminTogglePremium(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}
	user, err := s.admin.TogglePremium(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleAdminPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.admin.ListPayments(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if payments == nil {
		payments = []models.PaymentWithOwner{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (s *Server) handleAdminThumbnails(w http.ResponseWriter, r *http.Request) {
	thumbs, err := s.admin.ListThumbnails(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if thumbs == nil {
		thumbs = []models.ThumbnailWithOwner{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"thumbnails": thumbs})
}

type bulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

func (s *Server) handleAdminBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	deleted, err := s.admin.BulkDeleteThumbnails(r.Context(), req.IDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"deletedCount": deleted,
	})
}
