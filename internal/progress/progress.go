// Package progress projects a pass's answer log into counts and a fixed
// width status bar. It never mutates the pass.
package progress

import "github.com/mind-engage/quizretry/internal/session"

// DefaultCells is the bar width used when none is configured.
const DefaultCells = 18

type Status string

const (
	Pending   Status = "pending"
	Correct   Status = "correct"
	Incorrect Status = "incorrect"
)

type View struct {
	Correct    int      `json:"correct"`
	Incorrect  int      `json:"incorrect"`
	Unanswered int      `json:"unanswered"`
	Total      int      `json:"total"`
	Position   int      `json:"position"` // 1-based number of the question on screen, 0 when done
	Cells      []Status `json:"cells"`
}

// Render samples the active set into cells: cell i shows the question at
// i*total/cells, colored by the first record carrying that question's
// identity.
func Render(p *session.Pass, cells int) View {
	if cells <= 0 {
		cells = DefaultCells
	}
	v := View{Cells: make([]Status, cells)}
	for i := range v.Cells {
		v.Cells[i] = Pending
	}
	if p == nil {
		return v
	}

	first := make(map[string]bool, len(p.Records))
	for _, r := range p.Records {
		if r.IsCorrect {
			v.Correct++
		} else {
			v.Incorrect++
		}
		if _, seen := first[r.Identity]; !seen {
			first[r.Identity] = r.IsCorrect
		}
	}
	v.Total = len(p.Questions)
	v.Unanswered = v.Total - v.Correct - v.Incorrect
	if v.Unanswered < 0 {
		v.Unanswered = 0
	}
	if !p.Finished() {
		v.Position = p.Index() + 1
	}
	if v.Total == 0 {
		return v
	}

	for i := range v.Cells {
		q := p.Questions[i*v.Total/cells]
		ok, answered := first[p.Policy.Identity(q)]
		switch {
		case !answered:
		case ok:
			v.Cells[i] = Correct
		default:
			v.Cells[i] = Incorrect
		}
	}
	return v
}
