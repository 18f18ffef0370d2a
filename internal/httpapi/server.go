package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/thumbsmith/thumbsmith/internal/auth"
	"github.com/thumbsmith/thumbsmith/internal/service"
)

type Server struct {
	addr       string
	log        *slog.Logger
	tokens     *auth.TokenService
	authSvc    *service.AuthService
	generation *service.GenerationService
	payments   *service.PaymentService
	admin      *service.AdminService
	router     *chi.Mux
}

func NewServer(addr string, log *slog.Logger, tokens *auth.TokenService, authSvc *service.AuthService, generation *service.GenerationService, payments *service.PaymentService, admin *service.AdminService) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	s := &Server{
		addr:       addr,
		log:        log,
		tokens:     tokens,
		authSvc:    authSvc,
		generation: generation,
		payments:   payments,
		admin:      admin,
		router:     r,
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", s.handleRegister)
		api.Post("/auth/login", s.handleLogin)

		api.Group(func(protected chi.Router) {
			protected.Use(s.tokens.RequireAuth)
			protected.Get("/auth/me", s.handleMe)

			protected.Post("/generate", s.handleGenerate)
			protected.Post("/generate/enhance", s.handleEnhance)
			protected.Post("/generate/image", s.handleGenerateImage)

			protected.Get("/thumbnails", s.handleListThumbnails)
			protected.Delete("/thumbnails/{id}", s.handleDeleteThumbnail)

			protected.Post("/payments/create-order", s.handleCreateOrder)
			protected.Post("/payments/verify", s.handleVerifyPayment)

			protected.Route("/admin", func(adm chi.Router) {
				adm.Use(auth.RequireAdmin)
				adm.Get("/stats", s.handleAdminStats)
				adm.Get("/users", s.handleAdminUsers)
				adm.Patch("/users/{id}/premium", s.handleAdminTogglePremium)
				adm.Get("/payments", s.handleAdminPayments)
				adm.Get("/thumbnails", s.handleAdminThumbnails)
				adm.Delete("/thumbnails", s.handleAdminBulkDelete)
			})
		})
	})

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.router,
		// Write timeout must cover the worst-case image retry loop
		// (3 attempts with provider-estimated waits in between).
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("server shutdown error", "err", err)
		}
	}()

	s.log.Info("api server listening", "addr", s.addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api listen: %w", err)
	}
	return nil
}
