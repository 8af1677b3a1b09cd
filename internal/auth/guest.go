package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	authmw "github.com/mind-engage/quizretry/internal/auth/middleware"
)

// SessionCreator makes a new empty quiz session and returns its id.
type SessionCreator func(ctx context.Context) (string, error)

// GuestSessionHandler starts an anonymous quiz session for this browser and
// hands back a learner token, both as JSON and as a cookie.
func GuestSessionHandler(a *authmw.AuthService, create SessionCreator, secureCookie bool) http.HandlerFunc {
	type out struct {
		AccessToken string `json:"access_token"`
		SessionID   string `json:"session_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := create(r.Context())
		if err != nil {
			log.Printf("create session: %v", err)
			http.Error(w, "create session", http.StatusInternalServerError)
			return
		}
		tok, err := a.IssueJWT(id, "learner")
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		sameSite := http.SameSiteLaxMode
		if secureCookie {
			sameSite = http.SameSiteNoneMode
		}
		http.SetCookie(w, &http.Cookie{
			Name:     authmw.CookieName,
			Value:    tok,
			Path:     "/",
			HttpOnly: true,
			Secure:   secureCookie,
			SameSite: sameSite,
			Expires:  time.Now().Add(a.TTL()),
		})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out{AccessToken: tok, SessionID: id})
	}
}
