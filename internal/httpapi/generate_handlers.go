package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/thumbsmith/thumbsmith/internal/auth"
	"github.com/thumbsmith/thumbsmith/internal/models"
	"github.com/thumbsmith/thumbsmith/internal/service"
)

type generateRequest struct {
	Prompt         string `json:"prompt"`
	Enhance        *bool  `json:"enhance"`
	Size           string `json:"size"`
	Layout         string `json:"layout"`
	Style          string `json:"style"`
	NegativePrompt string `json:"negativePrompt"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		s.writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req generateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	in := service.GenerateInput{
		Prompt:         req.Prompt,
		Enhance:        true,
		Size:           "medium",
		Layout:         "landscape",
		Style:          "default",
		NegativePrompt: req.NegativePrompt,
	}
	if req.Enhance != nil {
		in.Enhance = *req.Enhance
	}
	if req.Size != "" {
		in.Size = req.Size
	}
	if req.Layout != "" {
		in.Layout = req.Layout
	}
	if req.Style != "" {
		in.Style = req.Style
	}

	thumb, err := s.generation.Generate(r.Context(), claims.UserID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"thumbnail": thumb})
}

type enhanceRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	var req enhanceRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	enhanced, err := s.generation.EnhancePrompt(r.Context(), req.Prompt, req.Style)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"enhancedPrompt": enhanced})
}

type imageRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	imageURL, size, err := s.generation.GenerateImage(r.Context(), req.Prompt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"imageUrl": imageURL,
		"size":     size,
	})
}

func (s *Server) handleListThumbnails(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		s.writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	thumbs, err := s.generation.ListThumbnails(r.Context(), claims.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if thumbs == nil {
		thumbs = []models.Thumbnail{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"thumbnails": thumbs})
}

func (s *Server) handleDeleteThumbnail(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		s.writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid thumbnail id")
		return
	}
	if err := s.generation.DeleteThumbnail(r.Context(), claims.UserID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
