package session

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/mind-engage/quizretry/internal/bank"
	"github.com/mind-engage/quizretry/internal/match"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func abc() []bank.Question {
	opts := []bank.Option{{Label: "A", Text: "a"}, {Label: "B", Text: "b"}, {Label: "C", Text: "c"}}
	return []bank.Question{
		{Row: 0, Text: "Q1", Options: opts, Correct: "A"},
		{Row: 1, Text: "Q2", Options: opts, Correct: "B"},
		{Row: 2, Text: "Q3", Options: opts, Correct: "C"},
	}
}

func loaded(t *testing.T, qs []bank.Question) *Session {
	t.Helper()
	s := New("s1")
	s.LoadBank(bank.Bank{Name: "bank.xlsx", Questions: qs})
	if err := s.StartFull(match.NormalizedText); err != nil {
		t.Fatalf("start: %v", err)
	}
	return s
}

func scoreOf(recs []AnswerRecord) int {
	n := 0
	for _, r := range recs {
		if r.IsCorrect {
			n++
		}
	}
	return n
}

func TestScenarioAnswersAAC(t *testing.T) {
	s := loaded(t, abc())
	advances := 0
	for _, choice := range []string{"A", "a) a", " c"} {
		if _, err := s.Submit(choice, t0); err != nil {
			t.Fatalf("submit %q: %v", choice, err)
		}
		if s.Pass.Score != scoreOf(s.Pass.Records) {
			t.Fatalf("score %d != correct records %d", s.Pass.Score, scoreOf(s.Pass.Records))
		}
		if err := s.Advance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
		advances++
	}
	if advances != 3 || !s.Pass.Finished() || s.Stage() != Stage(PhaseFinished) {
		t.Fatalf("expected finished after 3 advances, stage=%s", s.Stage())
	}
	if s.Pass.Score != 2 {
		t.Fatalf("score = %d, want 2", s.Pass.Score)
	}
	got := []bool{}
	for _, r := range s.Pass.Records {
		got = append(got, r.IsCorrect)
		if r.IsCorrect != (r.Chosen == r.Correct) {
			t.Fatalf("IsCorrect disagrees with labels: %+v", r)
		}
	}
	if want := []bool{true, false, true}; !reflect.DeepEqual(got, want) {
		t.Fatalf("results = %v, want %v", got, want)
	}
	if s.Pass.Records[1].Identity != "q2" || s.Pass.Records[1].Mode != ModeFull {
		t.Fatalf("unexpected record: %+v", s.Pass.Records[1])
	}
}

func TestWrongPhaseLeavesStateUntouched(t *testing.T) {
	s := loaded(t, abc())
	if err := s.Advance(); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("advance before answer: %v", err)
	}
	if _, err := s.Submit("A", t0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := s.Submit("B", t0); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("double submit: %v", err)
	}
	if len(s.Pass.Records) != 1 || s.Pass.State.Phase() != PhaseShowingFeedback {
		t.Fatalf("state changed after rejected submit: %+v", s.Pass)
	}
}

func TestInvalidChoice(t *testing.T) {
	s := loaded(t, abc())
	for _, sel := range []string{"", "  ", "Z", "D"} {
		if _, err := s.Submit(sel, t0); !errors.Is(err, ErrInvalidChoice) {
			t.Fatalf("Submit(%q) err = %v, want ErrInvalidChoice", sel, err)
		}
	}
	if len(s.Pass.Records) != 0 {
		t.Fatalf("records created for invalid choices")
	}
}

func TestUnanswerableQuestionBlocksSubmit(t *testing.T) {
	qs := []bank.Question{{Row: 0, Text: "empty", Correct: "A"}}
	s := loaded(t, qs)
	if _, err := s.Submit("A", t0); !errors.Is(err, ErrUnanswerable) {
		t.Fatalf("err = %v, want ErrUnanswerable", err)
	}
	if len(s.Pass.Records) != 0 || s.Pass.State.Phase() != PhaseAwaitingAnswer {
		t.Fatalf("unanswerable question produced a record: %+v", s.Pass)
	}
}

func TestTerminationAfterLenAdvances(t *testing.T) {
	qs := abc()
	s := loaded(t, qs)
	for i := 0; i < len(qs); i++ {
		if s.Pass.Index() != i {
			t.Fatalf("index = %d, want %d", s.Pass.Index(), i)
		}
		if _, err := s.Submit("B", t0); err != nil {
			t.Fatalf("submit: %v", err)
		}
		if err := s.Advance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	if !s.Pass.Finished() {
		t.Fatalf("not finished after %d advances", len(qs))
	}
	if _, ok := s.Pass.Current(); ok {
		t.Fatalf("finished pass still has a current question")
	}
	if _, err := s.Submit("A", t0); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("submit after finish: %v", err)
	}
}

func TestTickAutoAdvance(t *testing.T) {
	s := loaded(t, abc())
	if _, err := s.Submit("A", t0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if s.Tick(t0.Add(5*time.Second), 0) {
		t.Fatalf("tick with disabled delay advanced")
	}
	if s.Tick(t0.Add(500*time.Millisecond), time.Second) {
		t.Fatalf("tick advanced before delay")
	}
	if !s.Tick(t0.Add(time.Second), time.Second) {
		t.Fatalf("tick did not advance after delay")
	}
	if s.Pass.Index() != 1 || s.Pass.State.Phase() != PhaseAwaitingAnswer {
		t.Fatalf("unexpected state after tick: %+v", s.Pass.State)
	}
}

func TestStartRequiresBank(t *testing.T) {
	s := New("s1")
	if err := s.StartFull(match.NormalizedText); !errors.Is(err, ErrNoBank) {
		t.Fatalf("err = %v, want ErrNoBank", err)
	}
	if _, err := s.Submit("A", t0); !errors.Is(err, ErrNoPass) {
		t.Fatalf("err = %v, want ErrNoPass", err)
	}
}

func TestNewPassResetsLogButKeepsBank(t *testing.T) {
	s := loaded(t, abc())
	if _, err := s.Submit("A", t0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := s.StartFull(match.NormalizedText); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if len(s.Pass.Records) != 0 || s.Pass.Score != 0 || s.Pass.Index() != 0 {
		t.Fatalf("new pass not reset: %+v", s.Pass)
	}
	if s.Bank == nil || len(s.Bank.Questions) != 3 {
		t.Fatalf("bank lost on new pass")
	}
}

func TestResetClearsEverythingButID(t *testing.T) {
	s := loaded(t, abc())
	s.Reset()
	if s.ID != "s1" || s.Bank != nil || s.Pass != nil || s.Stage() != StageAwaitingUpload {
		t.Fatalf("reset incomplete: %+v", s)
	}
}

func TestStartRandomTakesPermutationPrefix(t *testing.T) {
	s := New("s1")
	s.LoadBank(bank.Bank{Questions: abc()})
	reverse := func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = n - 1 - i
		}
		return out
	}
	if err := s.StartRandom(2, match.NormalizedText, reverse); err != nil {
		t.Fatalf("start random: %v", err)
	}
	if s.Pass.Mode != ModeRandom || len(s.Pass.Questions) != 2 || s.Pass.Questions[0].Text != "Q3" {
		t.Fatalf("unexpected random pass: %+v", s.Pass.Questions)
	}
	if err := s.StartRandom(0, match.NormalizedText, reverse); err != nil || len(s.Pass.Questions) != 3 {
		t.Fatalf("count 0 should take whole bank, got %d (%v)", len(s.Pass.Questions), err)
	}
}

func TestStartRetryNoMatchesKeepsPass(t *testing.T) {
	s := loaded(t, abc())
	before := s.Pass
	err := s.StartRetry([]match.Missed{{Text: "nope"}}, match.NormalizedText)
	if !errors.Is(err, match.ErrNoMatches) {
		t.Fatalf("err = %v, want ErrNoMatches", err)
	}
	if s.Pass != before {
		t.Fatalf("failed retry replaced the pass")
	}
	if err := s.StartRetry([]match.Missed{{Text: " q2"}}, match.NormalizedText); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if s.Pass.Mode != ModeRetry || len(s.Pass.Questions) != 1 || s.Pass.Questions[0].Row != 1 {
		t.Fatalf("unexpected retry pass: %+v", s.Pass)
	}
}

func TestLoadBankDropsPass(t *testing.T) {
	s := loaded(t, abc())
	s.LoadBank(bank.Bank{Questions: abc()[:1]})
	if s.Pass != nil || s.Stage() != StageReady {
		t.Fatalf("pass survived a new bank: stage=%s", s.Stage())
	}
}
