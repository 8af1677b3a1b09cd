package session

import (
	"time"

	"github.com/mind-engage/quizretry/internal/bank"
	"github.com/mind-engage/quizretry/internal/match"
)

// Mode says which kind of pass produced a record.
type Mode string

const (
	ModeFull   Mode = "full"
	ModeRandom Mode = "random"
	ModeRetry  Mode = "retry"
)

type Phase string

const (
	PhaseAwaitingAnswer  Phase = "awaiting_answer"
	PhaseShowingFeedback Phase = "showing_feedback"
	PhaseFinished        Phase = "finished"
)

// Stage is the coarse position of a session, pass phases included.
type Stage string

const (
	StageAwaitingUpload Stage = "awaiting_upload"
	StageReady          Stage = "ready" // bank loaded, no pass
)

// State is one of AwaitingAnswer, ShowingFeedback or Finished.
type State interface {
	Phase() Phase
}

type AwaitingAnswer struct {
	Index int
}

type ShowingFeedback struct {
	Index   int
	Record  AnswerRecord
	ShownAt time.Time
}

type Finished struct{}

func (AwaitingAnswer) Phase() Phase  { return PhaseAwaitingAnswer }
func (ShowingFeedback) Phase() Phase { return PhaseShowingFeedback }
func (Finished) Phase() Phase        { return PhaseFinished }

// AnswerRecord is never modified once appended to a pass.
type AnswerRecord struct {
	Mode       Mode      `json:"mode"`
	Row        int       `json:"row"`
	Identity   string    `json:"identity"`
	Text       string    `json:"text"`
	Chosen     string    `json:"chosen"`
	Correct    string    `json:"correct"`
	IsCorrect  bool      `json:"is_correct"`
	AnsweredAt time.Time `json:"answered_at"`
}

// Pass is one traversal of an active question set.
type Pass struct {
	Mode      Mode
	Policy    match.Policy
	Questions []bank.Question
	Records   []AnswerRecord
	Score     int
	State     State
}

// Index is the position of the current question; len(Questions) once finished.
func (p *Pass) Index() int {
	switch st := p.State.(type) {
	case AwaitingAnswer:
		return st.Index
	case ShowingFeedback:
		return st.Index
	default:
		return len(p.Questions)
	}
}

// Current returns the question being asked or reviewed.
func (p *Pass) Current() (bank.Question, bool) {
	i := p.Index()
	if i < 0 || i >= len(p.Questions) {
		return bank.Question{}, false
	}
	return p.Questions[i], true
}

func (p *Pass) Finished() bool { return p.State.Phase() == PhaseFinished }

// Session is everything one learner has in flight.
type Session struct {
	ID        string
	Bank      *bank.Bank
	Pass      *Pass
	UpdatedAt time.Time
}

func (s *Session) Stage() Stage {
	switch {
	case s.Bank == nil:
		return StageAwaitingUpload
	case s.Pass == nil:
		return StageReady
	default:
		return Stage(s.Pass.State.Phase())
	}
}
