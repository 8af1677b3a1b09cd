package quiz

import (
	"github.com/mind-engage/quizretry/internal/bank"
	"github.com/mind-engage/quizretry/internal/progress"
	"github.com/mind-engage/quizretry/internal/results"
	"github.com/mind-engage/quizretry/internal/session"
)

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
)

type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

type BankView struct {
	Name      string `json:"name"`
	Questions int    `json:"questions"`
	Dropped   int    `json:"dropped"`
}

type QuestionView struct {
	Number     int           `json:"number"` // 1-based position in the pass
	Text       string        `json:"text"`
	Options    []bank.Option `json:"options"`
	Answerable bool          `json:"answerable"`
	Warning    string        `json:"warning,omitempty"`
}

type FeedbackView struct {
	Chosen    string `json:"chosen"`
	Correct   string `json:"correct"`
	IsCorrect bool   `json:"is_correct"`
}

// View is what the page renders after every action.
type View struct {
	SessionID     string           `json:"session_id"`
	Stage         session.Stage    `json:"stage"`
	Phase         session.Phase    `json:"phase,omitempty"`
	Mode          session.Mode     `json:"mode,omitempty"`
	Bank          *BankView        `json:"bank,omitempty"`
	Question      *QuestionView    `json:"question,omitempty"`
	Feedback      *FeedbackView    `json:"feedback,omitempty"`
	Progress      *progress.View   `json:"progress,omitempty"`
	Summary       *results.Summary `json:"summary,omitempty"`
	Notice        *Notice          `json:"notice,omitempty"`
	AutoAdvanceMs int64            `json:"auto_advance_ms,omitempty"`
}

const unanswerableWarning = "This question has no answer options; start another pass or reset."

func (s *Service) view(sess *session.Session, n *Notice) View {
	v := View{SessionID: sess.ID, Stage: sess.Stage(), Notice: n}
	if sess.Bank != nil {
		v.Bank = &BankView{Name: sess.Bank.Name, Questions: len(sess.Bank.Questions), Dropped: sess.Bank.Dropped}
	}
	p := sess.Pass
	if p == nil {
		return v
	}
	v.Phase = p.State.Phase()
	v.Mode = p.Mode
	pv := progress.Render(p, s.opts.ProgressCells)
	v.Progress = &pv

	if q, ok := p.Current(); ok {
		qv := &QuestionView{Number: p.Index() + 1, Text: q.Text, Options: q.Options, Answerable: q.Answerable()}
		if !qv.Answerable {
			qv.Warning = unanswerableWarning
		}
		v.Question = qv
	}
	switch st := p.State.(type) {
	case session.ShowingFeedback:
		v.Feedback = &FeedbackView{Chosen: st.Record.Chosen, Correct: st.Record.Correct, IsCorrect: st.Record.IsCorrect}
		if s.opts.AutoAdvance > 0 {
			v.AutoAdvanceMs = s.opts.AutoAdvance.Milliseconds()
		}
	case session.Finished:
		sum := results.Summarize(p)
		v.Summary = &sum
	}
	return v
}
