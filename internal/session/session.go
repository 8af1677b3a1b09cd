// Package session is the quiz state machine: a pass moves from
// AwaitingAnswer to ShowingFeedback on submit and back (or to Finished) on
// advance.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mind-engage/quizretry/internal/bank"
	"github.com/mind-engage/quizretry/internal/match"
)

var (
	ErrNoBank        = errors.New("session: no question bank loaded")
	ErrNoPass        = errors.New("session: no active pass")
	ErrEmptyPass     = errors.New("session: pass has no questions")
	ErrWrongPhase    = errors.New("session: action not allowed now")
	ErrUnanswerable  = errors.New("session: question has no options")
	ErrInvalidChoice = errors.New("session: choice is not an option of this question")
)

func New(id string) *Session { return &Session{ID: id} }

// LoadBank replaces the bank. Any pass over the old bank is dropped.
func (s *Session) LoadBank(b bank.Bank) {
	s.Bank = &b
	s.Pass = nil
}

// Reset returns the session to the awaiting-upload stage, keeping its id.
func (s *Session) Reset() {
	*s = Session{ID: s.ID}
}

// StartPass begins a fresh pass over qs; the previous pass and its log are
// discarded.
func (s *Session) StartPass(mode Mode, qs []bank.Question, policy match.Policy) error {
	if s.Bank == nil {
		return ErrNoBank
	}
	if len(qs) == 0 {
		return ErrEmptyPass
	}
	s.Pass = &Pass{
		Mode:      mode,
		Policy:    policy,
		Questions: append([]bank.Question(nil), qs...),
		Records:   []AnswerRecord{},
		State:     AwaitingAnswer{Index: 0},
	}
	return nil
}

func (s *Session) StartFull(policy match.Policy) error {
	if s.Bank == nil {
		return ErrNoBank
	}
	return s.StartPass(ModeFull, s.Bank.Questions, policy)
}

// StartRandom runs a pass over n questions drawn by perm, which must return a
// permutation of [0,n) like rand.Perm. n <= 0 or beyond the bank size means
// the whole bank, shuffled.
func (s *Session) StartRandom(n int, policy match.Policy, perm func(int) []int) error {
	if s.Bank == nil {
		return ErrNoBank
	}
	all := s.Bank.Questions
	if n <= 0 || n > len(all) {
		n = len(all)
	}
	order := perm(len(all))
	qs := make([]bank.Question, 0, n)
	for _, i := range order[:n] {
		qs = append(qs, all[i])
	}
	return s.StartPass(ModeRandom, qs, policy)
}

// StartRetry matches missed against the bank and starts a retry pass over
// the result. match.ErrNoMatches leaves the session untouched.
func (s *Session) StartRetry(missed []match.Missed, policy match.Policy) error {
	if s.Bank == nil {
		return ErrNoBank
	}
	qs, err := match.Match(s.Bank.Questions, missed, policy)
	if err != nil {
		return err
	}
	return s.StartPass(ModeRetry, qs, policy)
}

// Submit records an answer for the current question. The chosen label is
// the first character of the trimmed, uppercased selection, so "b) Blue"
// selects B.
func (s *Session) Submit(selection string, now time.Time) (AnswerRecord, error) {
	if s.Pass == nil {
		return AnswerRecord{}, ErrNoPass
	}
	p := s.Pass
	st, ok := p.State.(AwaitingAnswer)
	if !ok {
		return AnswerRecord{}, fmt.Errorf("%w: submit in %s", ErrWrongPhase, p.State.Phase())
	}
	q := p.Questions[st.Index]
	if !q.Answerable() {
		return AnswerRecord{}, ErrUnanswerable
	}
	chosen := firstLabel(selection)
	if chosen == "" || !q.HasLabel(chosen) {
		return AnswerRecord{}, fmt.Errorf("%w: %q", ErrInvalidChoice, selection)
	}

	rec := AnswerRecord{
		Mode:       p.Mode,
		Row:        q.Row,
		Identity:   p.Policy.Identity(q),
		Text:       q.Text,
		Chosen:     chosen,
		Correct:    q.Correct,
		IsCorrect:  chosen == q.Correct,
		AnsweredAt: now,
	}
	p.Records = append(p.Records, rec)
	if rec.IsCorrect {
		p.Score++
	}
	p.State = ShowingFeedback{Index: st.Index, Record: rec, ShownAt: now}
	return rec, nil
}

// Advance moves past the feedback of the current question.
func (s *Session) Advance() error {
	if s.Pass == nil {
		return ErrNoPass
	}
	p := s.Pass
	st, ok := p.State.(ShowingFeedback)
	if !ok {
		return fmt.Errorf("%w: advance in %s", ErrWrongPhase, p.State.Phase())
	}
	next := st.Index + 1
	if next >= len(p.Questions) {
		p.State = Finished{}
		return nil
	}
	p.State = AwaitingAnswer{Index: next}
	return nil
}

// Tick advances automatically once feedback has been shown for delay.
// A non-positive delay disables it. It reports whether it advanced.
func (s *Session) Tick(now time.Time, delay time.Duration) bool {
	if delay <= 0 || s.Pass == nil {
		return false
	}
	st, ok := s.Pass.State.(ShowingFeedback)
	if !ok || now.Sub(st.ShownAt) < delay {
		return false
	}
	return s.Advance() == nil
}

func firstLabel(selection string) string {
	sel := strings.ToUpper(strings.TrimSpace(selection))
	if sel == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(sel)
	return string(r)
}
