package http

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/webseeker/server/internal/http/handlers"
	"github.com/webseeker/server/internal/middleware"
	"github.com/webseeker/server/internal/session"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(
	verificationHandler *handlers.VerificationHandler,
	suggestHandler *handlers.SuggestHandler,
	searchHandler *handlers.SearchHandler,
	sessionVerifier session.Verifier,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	healthHandler := handlers.NewHealthHandler()
	r.Get("/health", healthHandler.ServeHTTP)

	pagesHandler := handlers.NewPagesHandler()
	r.Get(middleware.SignInPath, pagesHandler.HandleSignIn)

	// Suggestions degrade to [] on any failure and are not session-gated.
	r.Post("/api/getSimilarQuestions", suggestHandler.HandleSimilarQuestions)

	// Protected routes (require a session; redirect to /sign-in otherwise)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(sessionVerifier))
		r.Get("/", pagesHandler.HandleHome)
		r.Post("/api/send-verification", verificationHandler.HandleSendVerification)
		r.Post("/api/check-verification", verificationHandler.HandleCheckVerification)
		r.Post("/api/search", searchHandler.HandleSearch)
	})

	return r
}
