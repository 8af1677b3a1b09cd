package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/quizretry/internal/auth"
	authmw "github.com/mind-engage/quizretry/internal/auth/middleware"
	"github.com/mind-engage/quizretry/internal/quiz"
	"github.com/mind-engage/quizretry/internal/rbac"
	"github.com/mind-engage/quizretry/internal/storage"
)

type Deps struct {
	Quiz  *quiz.Service
	Auth  *authmw.AuthService
	Blobs storage.BlobStore // nil disables the export archive browser

	Title          string
	AdminUser      string
	AdminPassHash  string
	SecureCookies  bool
	MaxUploadBytes int64
}

// Mount registers the page, the session API and the admin endpoints on r.
func Mount(r chi.Router, d Deps) {
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 10 << 20
	}
	if d.Title == "" {
		d.Title = "Quiz"
	}

	r.Get("/", PageHandler(d.Title))
	r.Post("/api/session", auth.GuestSessionHandler(d.Auth, d.Quiz.Create, d.SecureCookies))

	// Session API (token → session id + role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(d.Auth))

		pr.With(rbac.RequireAny("session:play", "session:export")).
			Get("/api/state", StateHandler(d.Quiz))

		pr.Group(func(play chi.Router) {
			play.Use(rbac.Require("session:play"))
			play.Post("/api/bank", UploadBankHandler(d.Quiz, d.MaxUploadBytes))
			play.Post("/api/errors", UploadMissedHandler(d.Quiz, d.MaxUploadBytes))
			play.Post("/api/pass", StartPassHandler(d.Quiz))
			play.Post("/api/answer", AnswerHandler(d.Quiz))
			play.Post("/api/next", NextHandler(d.Quiz))
			play.Post("/api/retry", RetryHandler(d.Quiz))
			play.Post("/api/reset", ResetHandler(d.Quiz))
		})

		pr.With(rbac.Require("session:export")).
			Get("/api/export", ExportHandler(d.Quiz))
	})

	// Admin (basic auth → admin role → RBAC)
	r.Route("/admin", func(ar chi.Router) {
		ar.Use(authmw.AdminBasicAuth(d.AdminUser, d.AdminPassHash))
		ar.With(rbac.Require("events:view")).
			Get("/events", AdminEventsHandler(d.Quiz))
		if d.Blobs != nil {
			ar.Route("/exports", func(er chi.Router) {
				er.Use(rbac.Require("exports:view"))
				MountExports(er, d.Blobs)
			})
		}
	})
}
