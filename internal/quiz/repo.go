package quiz

import (
	"context"
	"errors"

	"github.com/mind-engage/quizretry/internal/session"
)

var ErrSessionNotFound = errors.New("quiz: session not found")

// Store keeps one snapshot per session. Get returns a private copy; changes
// are only visible after Put.
type Store interface {
	Get(ctx context.Context, id string) (*session.Session, error)
	Put(ctx context.Context, s *session.Session) error
}

// ErrBadRequest marks malformed input that is not a domain rule violation.
var ErrBadRequest = errors.New("quiz: bad request")
