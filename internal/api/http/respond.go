package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/mind-engage/quizretry/internal/bank"
	"github.com/mind-engage/quizretry/internal/match"
	"github.com/mind-engage/quizretry/internal/quiz"
	"github.com/mind-engage/quizretry/internal/results"
	"github.com/mind-engage/quizretry/internal/session"
	"github.com/mind-engage/quizretry/internal/tabular"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, quiz.ErrSessionNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, tabular.ErrUnreadable),
		errors.Is(err, tabular.ErrSheetNotFound),
		errors.Is(err, bank.ErrMissingColumn),
		errors.Is(err, bank.ErrEmptyBank),
		errors.Is(err, match.ErrMissingColumn):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNoBank),
		errors.Is(err, session.ErrNoPass),
		errors.Is(err, session.ErrEmptyPass),
		errors.Is(err, session.ErrWrongPhase),
		errors.Is(err, session.ErrUnanswerable),
		errors.Is(err, results.ErrNothingToRetry):
		return http.StatusConflict
	case errors.Is(err, session.ErrInvalidChoice),
		errors.Is(err, quiz.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		msg = "internal error"
	}
	respondJSON(w, status, map[string]string{"error": msg})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
