package http

import (
	"net/http"
	"strings"

	"github.com/mind-engage/quizretry/internal/quiz"
)

// AdminEventsHandler lists the event log, optionally for one session.
// GET /admin/events?session=<id>&limit=<n>
func AdminEventsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.URL.Query().Get("session"))
		limit := parseIntDefault(r.URL.Query().Get("limit"), 100)
		evs, err := svc.Events(r.Context(), id, limit)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, evs)
	}
}
