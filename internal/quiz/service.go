// Package quiz runs learner actions against stored sessions: each action
// loads a snapshot, drives the state machine and saves the result.
package quiz

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/quizretry/internal/bank"
	"github.com/mind-engage/quizretry/internal/match"
	"github.com/mind-engage/quizretry/internal/results"
	"github.com/mind-engage/quizretry/internal/session"
	"github.com/mind-engage/quizretry/internal/storage"
	syncx "github.com/mind-engage/quizretry/internal/sync"
)

// Event types written to the log.
const (
	EventSessionCreated = "session_created"
	EventBankLoaded     = "bank_loaded"
	EventPassStarted    = "pass_started"
	EventAnswered       = "answered"
	EventPassFinished   = "pass_finished"
	EventReset          = "reset"
	EventExport         = "export"
)

type Options struct {
	BankSheet     string
	BankColumns   bank.Columns
	MissedColumns match.Columns
	Policy        match.Policy
	ProgressCells int
	AutoAdvance   time.Duration
}

func DefaultOptions() Options {
	return Options{
		BankSheet:     "Sheet1",
		BankColumns:   bank.DefaultColumns(),
		MissedColumns: match.DefaultColumns(),
		Policy:        match.NormalizedText,
	}
}

type Service struct {
	store  Store
	events syncx.Log
	blobs  storage.BlobStore
	opts   Options
	locks  *keyedLocks

	now   func() time.Time
	perm  func(int) []int
	newID func() string
}

// NewService wires the stores. events and blobs may be nil, which disables
// the event log and export archiving.
func NewService(store Store, events syncx.Log, blobs storage.BlobStore, opts Options) *Service {
	if opts.Policy == "" {
		opts.Policy = match.NormalizedText
	}
	return &Service{
		store:  store,
		events: events,
		blobs:  blobs,
		opts:   opts,
		locks:  newKeyedLocks(),
		now:    time.Now,
		perm:   rand.Perm,
		newID:  uuid.NewString,
	}
}

// Create stores a fresh session awaiting its bank upload.
func (s *Service) Create(ctx context.Context) (string, error) {
	sess := session.New(s.newID())
	sess.UpdatedAt = s.now()
	if err := s.store.Put(ctx, sess); err != nil {
		return "", err
	}
	ev := &eventBatch{key: sess.ID}
	ev.add(EventSessionCreated, nil)
	s.flush(ctx, ev)
	return sess.ID, nil
}

// action mutates the session under its lock. Nothing is saved when fn fails,
// so the previous snapshot stays in place.
// Events queued by fn are written only after the save succeeds.
func (s *Service) action(ctx context.Context, id string, fn func(sess *session.Session, ev *eventBatch) (*Notice, error)) (View, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	ev := &eventBatch{key: sess.ID}
	n, err := fn(sess, ev)
	if err != nil {
		return View{}, err
	}
	sess.UpdatedAt = s.now()
	if err := s.store.Put(ctx, sess); err != nil {
		return View{}, fmt.Errorf("save session: %w", err)
	}
	s.flush(ctx, ev)
	return s.view(sess, n), nil
}

// State returns the current view, first applying auto-advance.
func (s *Service) State(ctx context.Context, id string) (View, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	if sess.Tick(s.now(), s.opts.AutoAdvance) {
		sess.UpdatedAt = s.now()
		if err := s.store.Put(ctx, sess); err != nil {
			return View{}, fmt.Errorf("save session: %w", err)
		}
		ev := &eventBatch{key: sess.ID}
		afterAdvance(ev, sess)
		s.flush(ctx, ev)
	}
	return s.view(sess, nil), nil
}

// LoadBank replaces the session's bank with the uploaded file.
func (s *Service) LoadBank(ctx context.Context, id string, r io.Reader, filename string) (View, error) {
	b, err := bank.Read(r, filename, s.opts.BankSheet, s.opts.BankColumns)
	if err != nil {
		return View{}, err
	}
	return s.action(ctx, id, func(sess *session.Session, ev *eventBatch) (*Notice, error) {
		sess.LoadBank(b)
		ev.add(EventBankLoaded, map[string]any{
			"name": b.Name, "questions": len(b.Questions), "dropped": b.Dropped,
		})
		msg := fmt.Sprintf("Loaded %d questions from %s.", len(b.Questions), b.Name)
		if b.Dropped > 0 {
			msg += fmt.Sprintf(" %d incomplete rows skipped.", b.Dropped)
		}
		return &Notice{Level: NoticeInfo, Message: msg}, nil
	})
}

// LoadMissed reads a missed list and starts a retry pass over the matching
// questions. When nothing matches the session is left as it was and the
// view carries a warning.
func (s *Service) LoadMissed(ctx context.Context, id string, r io.Reader, filename string) (View, error) {
	missed, err := match.ReadMissed(r, filename, s.opts.MissedColumns, s.opts.Policy)
	if err != nil {
		return View{}, err
	}
	return s.action(ctx, id, func(sess *session.Session, ev *eventBatch) (*Notice, error) {
		err := sess.StartRetry(missed, s.opts.Policy)
		if errors.Is(err, match.ErrNoMatches) {
			return &Notice{Level: NoticeWarning, Message: "None of the questions in " + filename + " were found in the loaded bank."}, nil
		}
		if err != nil {
			return nil, err
		}
		passStarted(ev, sess, filename)
		return nil, nil
	})
}

// StartPass begins a full pass, or a random one over count questions.
func (s *Service) StartPass(ctx context.Context, id string, mode session.Mode, count int) (View, error) {
	return s.action(ctx, id, func(sess *session.Session, ev *eventBatch) (*Notice, error) {
		var err error
		switch mode {
		case session.ModeFull, "":
			err = sess.StartFull(s.opts.Policy)
		case session.ModeRandom:
			err = sess.StartRandom(count, s.opts.Policy, s.perm)
		default:
			return nil, fmt.Errorf("%w: mode %q", ErrBadRequest, mode)
		}
		if err != nil {
			return nil, err
		}
		passStarted(ev, sess, "")
		return nil, nil
	})
}

func (s *Service) Answer(ctx context.Context, id, choice string) (View, error) {
	return s.action(ctx, id, func(sess *session.Session, ev *eventBatch) (*Notice, error) {
		rec, err := sess.Submit(choice, s.now())
		if err != nil {
			return nil, err
		}
		ev.add(EventAnswered, rec)
		return nil, nil
	})
}

func (s *Service) Next(ctx context.Context, id string) (View, error) {
	return s.action(ctx, id, func(sess *session.Session, ev *eventBatch) (*Notice, error) {
		if err := sess.Advance(); err != nil {
			return nil, err
		}
		afterAdvance(ev, sess)
		return nil, nil
	})
}

// Retry starts a pass over the incorrect answers of the finished pass.
func (s *Service) Retry(ctx context.Context, id string) (View, error) {
	return s.action(ctx, id, func(sess *session.Session, ev *eventBatch) (*Notice, error) {
		p, err := finishedPass(sess)
		if err != nil {
			return nil, err
		}
		missed, err := results.Missed(p.Records)
		if err != nil {
			return nil, err
		}
		if err := sess.StartRetry(missed, p.Policy); err != nil {
			return nil, err
		}
		passStarted(ev, sess, "")
		return nil, nil
	})
}

func (s *Service) Reset(ctx context.Context, id string) (View, error) {
	return s.action(ctx, id, func(sess *session.Session, ev *eventBatch) (*Notice, error) {
		sess.Reset()
		ev.add(EventReset, nil)
		return nil, nil
	})
}

// ExportFile is a generated errors export.
type ExportFile struct {
	Name string // download file name
	Key  string // blob key of the archived copy, "" when not archived
	Data []byte
}

// Export writes the incorrect records of the finished pass as CSV and
// archives a copy under exports/<session>/.
func (s *Service) Export(ctx context.Context, id string) (ExportFile, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return ExportFile{}, err
	}
	p, err := finishedPass(sess)
	if err != nil {
		return ExportFile{}, err
	}
	_, incorrect := results.Partition(p.Records)
	if len(incorrect) == 0 {
		return ExportFile{}, results.ErrNothingToRetry
	}
	var buf bytes.Buffer
	if err := results.WriteCSV(&buf, incorrect); err != nil {
		return ExportFile{}, err
	}

	stamp := s.now().UTC().Format("20060102T150405Z")
	out := ExportFile{Name: "errors-" + stamp + ".csv", Data: buf.Bytes()}
	if s.blobs != nil {
		key, err := s.blobs.Put("exports/"+sess.ID+"/"+stamp+".csv", bytes.NewReader(out.Data))
		if err != nil {
			// the download still works without the archive copy
			log.Printf("archive export %s: %v", sess.ID, err)
		} else {
			out.Key = key
		}
	}
	ev := &eventBatch{key: sess.ID}
	ev.add(EventExport, map[string]any{"key": out.Key, "rows": len(incorrect)})
	s.flush(ctx, ev)
	return out, nil
}

// Events lists the event log for one session, or all sessions when id is "".
func (s *Service) Events(ctx context.Context, id string, limit int) ([]syncx.Event, error) {
	if s.events == nil {
		return []syncx.Event{}, nil
	}
	return s.events.List(ctx, strings.TrimSpace(id), limit)
}

func finishedPass(sess *session.Session) (*session.Pass, error) {
	if sess.Pass == nil {
		return nil, session.ErrNoPass
	}
	if !sess.Pass.Finished() {
		return nil, fmt.Errorf("%w: pass is %s", session.ErrWrongPhase, sess.Pass.State.Phase())
	}
	return sess.Pass, nil
}

func passStarted(ev *eventBatch, sess *session.Session, source string) {
	data := map[string]any{"mode": sess.Pass.Mode, "questions": len(sess.Pass.Questions)}
	if source != "" {
		data["source"] = source
	}
	ev.add(EventPassStarted, data)
}

func afterAdvance(ev *eventBatch, sess *session.Session) {
	if p := sess.Pass; p != nil && p.Finished() {
		ev.add(EventPassFinished, map[string]any{
			"mode": p.Mode, "score": p.Score, "total": len(p.Questions),
		})
	}
}

type eventBatch struct {
	key   string
	types []string
	data  []any
}

func (b *eventBatch) add(typ string, data any) {
	b.types = append(b.types, typ)
	b.data = append(b.data, data)
}

// flush appends to the event log. Failures are logged, never returned:
// the log is an audit trail, not part of the session.
func (s *Service) flush(ctx context.Context, b *eventBatch) {
	if s.events == nil {
		return
	}
	for i, typ := range b.types {
		payload := "{}"
		if b.data[i] != nil {
			raw, err := json.Marshal(b.data[i])
			if err != nil {
				log.Printf("event %s: %v", typ, err)
				continue
			}
			payload = string(raw)
		}
		if err := s.events.Append(ctx, syncx.Event{Type: typ, Key: b.key, DataJSON: payload}); err != nil {
			log.Printf("event %s for %s: %v", typ, b.key, err)
		}
	}
}
