package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mind-engage/quizretry/internal/bank"
	"github.com/mind-engage/quizretry/internal/match"
)

// snapshot is the stored form of a Session; the state union is flattened
// into a phase tag plus the fields its variants need.
type snapshot struct {
	ID        string        `json:"id"`
	Bank      *bank.Bank    `json:"bank,omitempty"`
	Pass      *passSnapshot `json:"pass,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type passSnapshot struct {
	Mode      Mode            `json:"mode"`
	Policy    match.Policy    `json:"policy"`
	Questions []bank.Question `json:"questions"`
	Records   []AnswerRecord  `json:"records"`
	Score     int             `json:"score"`
	Phase     Phase           `json:"phase"`
	Index     int             `json:"index"`
	Feedback  *AnswerRecord   `json:"feedback,omitempty"`
	ShownAt   *time.Time      `json:"shown_at,omitempty"`
}

func Marshal(s *Session) ([]byte, error) {
	snap := snapshot{ID: s.ID, Bank: s.Bank, UpdatedAt: s.UpdatedAt}
	if p := s.Pass; p != nil {
		ps := &passSnapshot{
			Mode:      p.Mode,
			Policy:    p.Policy,
			Questions: p.Questions,
			Records:   p.Records,
			Score:     p.Score,
			Phase:     p.State.Phase(),
			Index:     p.Index(),
		}
		if fb, ok := p.State.(ShowingFeedback); ok {
			rec, at := fb.Record, fb.ShownAt
			ps.Feedback, ps.ShownAt = &rec, &at
		}
		snap.Pass = ps
	}
	return json.Marshal(snap)
}

func Unmarshal(data []byte) (*Session, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	s := &Session{ID: snap.ID, Bank: snap.Bank, UpdatedAt: snap.UpdatedAt}
	if ps := snap.Pass; ps != nil {
		p := &Pass{
			Mode:      ps.Mode,
			Policy:    ps.Policy,
			Questions: ps.Questions,
			Records:   ps.Records,
			Score:     ps.Score,
		}
		if p.Records == nil {
			p.Records = []AnswerRecord{}
		}
		switch ps.Phase {
		case PhaseAwaitingAnswer:
			p.State = AwaitingAnswer{Index: ps.Index}
		case PhaseShowingFeedback:
			if ps.Feedback == nil || ps.ShownAt == nil {
				return nil, fmt.Errorf("session: feedback snapshot without record")
			}
			p.State = ShowingFeedback{Index: ps.Index, Record: *ps.Feedback, ShownAt: *ps.ShownAt}
		case PhaseFinished:
			p.State = Finished{}
		default:
			return nil, fmt.Errorf("session: unknown phase %q", ps.Phase)
		}
		s.Pass = p
	}
	return s, nil
}
