package syncx_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mind-engage/quizretry/internal/db"
	syncx "github.com/mind-engage/quizretry/internal/sync"
)

func exercise(t *testing.T, log syncx.Log) {
	t.Helper()
	ctx := context.Background()
	for _, e := range []syncx.Event{
		{Type: "bank_loaded", Key: "s1", DataJSON: `{}`},
		{Type: "answered", Key: "s2", DataJSON: `{}`},
		{Type: "answered", Key: "s1", DataJSON: `{"correct":true}`},
	} {
		if err := log.Append(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := log.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all = %d events, want 3", len(all))
	}

	s1, err := log.List(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("list s1: %v", err)
	}
	if len(s1) != 2 || s1[0].Type != "bank_loaded" || s1[1].DataJSON != `{"correct":true}` {
		t.Fatalf("unexpected s1 events: %+v", s1)
	}
	if s1[0].Seq >= s1[1].Seq {
		t.Fatalf("events out of order: %+v", s1)
	}

	one, err := log.List(ctx, "", 1)
	if err != nil || len(one) != 1 {
		t.Fatalf("limit ignored: %d (%v)", len(one), err)
	}
}

func TestMemoryLog(t *testing.T) {
	exercise(t, syncx.NewMemoryLog())
}

func TestEventRepoSQLite(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "events.db")
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dbh.Close()
	exercise(t, syncx.NewEventRepo(dbh))
}
