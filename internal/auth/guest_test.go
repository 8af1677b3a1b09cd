package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authmw "github.com/mind-engage/quizretry/internal/auth/middleware"
)

func TestGuestSessionHandlerIssuesCookieAndToken(t *testing.T) {
	a := authmw.NewAuthService("test-secret", time.Hour)
	h := GuestSessionHandler(a, func(context.Context) (string, error) { return "sess-42", nil }, false)

	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodPost, "/api/session", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body struct {
		AccessToken string `json:"access_token"`
		SessionID   string `json:"session_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims, err := a.Parse(body.AccessToken)
	if err != nil || claims.Sub != "sess-42" || claims.Role != "learner" || body.SessionID != "sess-42" {
		t.Fatalf("unexpected token: %+v %v", claims, err)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != authmw.CookieName || cookies[0].Value != body.AccessToken {
		t.Fatalf("unexpected cookies: %+v", cookies)
	}
}

func TestGuestSessionHandlerCreateFails(t *testing.T) {
	a := authmw.NewAuthService("test-secret", time.Hour)
	h := GuestSessionHandler(a, func(context.Context) (string, error) { return "", errors.New("db down") }, false)
	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodPost, "/api/session", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}
