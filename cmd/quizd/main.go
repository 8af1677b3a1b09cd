package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	api "github.com/mind-engage/quizretry/internal/api/http"
	auth "github.com/mind-engage/quizretry/internal/auth/middleware"
	"github.com/mind-engage/quizretry/internal/bank"
	"github.com/mind-engage/quizretry/internal/config"
	"github.com/mind-engage/quizretry/internal/db"
	"github.com/mind-engage/quizretry/internal/match"
	"github.com/mind-engage/quizretry/internal/quiz"
	"github.com/mind-engage/quizretry/internal/storage"
	syncx "github.com/mind-engage/quizretry/internal/sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.Load()

	policy, err := match.ParsePolicy(cfg.MatchBy)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// --- Storage ---
	var (
		dbh    *sql.DB
		store  quiz.Store
		events syncx.Log
	)
	if cfg.DBDriver == "memory" {
		store = quiz.NewInMemoryStore()
		events = syncx.NewMemoryLog()
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		dbh, err = db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		cancel()
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		defer dbh.Close()
		store = quiz.NewSQLStore(dbh)
		events = syncx.NewEventRepo(dbh)
	}

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	svc := quiz.NewService(store, events, bs, quiz.Options{
		BankSheet: cfg.BankSheet,
		BankColumns: bank.Columns{
			Question: cfg.QuestionColumn,
			Correct:  cfg.CorrectColumn,
			Options:  cfg.OptionColumns,
		},
		MissedColumns: match.Columns{
			Question: cfg.MissedQuestionColumn,
			Index:    cfg.MissedIndexColumn,
			Result:   cfg.MissedResultColumn,
		},
		Policy:        policy,
		ProgressCells: cfg.ProgressCells,
		AutoAdvance:   cfg.AutoAdvanceDelay,
	})

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret, cfg.SessionTTL)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition", "X-Archive-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api.Mount(r, api.Deps{
		Quiz:           svc,
		Auth:           authSvc,
		Blobs:          bs,
		Title:          "Quiz: retry the missed questions",
		AdminUser:      cfg.AdminUser,
		AdminPassHash:  cfg.AdminPassHash,
		SecureCookies:  cfg.SecureCookies,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if dbh != nil {
			if err := dbh.PingContext(r.Context()); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(200)
	})

	log.Printf("listening on %s (db=%s, match=%s, auto-advance=%s)", cfg.HTTPAddr, cfg.DBDriver, policy, cfg.AutoAdvanceDelay)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
