package quiz

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mind-engage/quizretry/internal/bank"
	"github.com/mind-engage/quizretry/internal/db"
	"github.com/mind-engage/quizretry/internal/match"
	"github.com/mind-engage/quizretry/internal/session"
)

func TestSQLStoreUpsert(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "quiz.db") + "?_pragma=busy_timeout(5000)"
	sqlDB, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer sqlDB.Close()
	store := NewSQLStore(sqlDB)

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("get missing: %v", err)
	}

	s := session.New("s1")
	s.UpdatedAt = time.Unix(100, 0)
	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("put: %v", err)
	}
	s.LoadBank(bank.Bank{Name: "b.xlsx", Questions: []bank.Question{
		{Row: 0, Text: "Q1", Options: []bank.Option{{Label: "A", Text: "a"}}, Correct: "A"},
	}})
	if err := s.StartFull(match.NormalizedText); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := s.Submit("a", time.Unix(200, 0)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("second put: %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	fb, ok := got.Pass.State.(session.ShowingFeedback)
	if !ok || !fb.Record.IsCorrect || got.Pass.Score != 1 || got.Bank.Name != "b.xlsx" {
		t.Fatalf("round trip lost state: %+v", got.Pass)
	}
}
