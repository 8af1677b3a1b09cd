// Package match filters a question bank down to the questions named in a
// previously exported list of missed questions.
package match

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mind-engage/quizretry/internal/bank"
)

var (
	ErrNoMatches     = errors.New("match: no missed question found in the bank")
	ErrMissingColumn = errors.New("match: required column missing")
	ErrUnknownPolicy = errors.New("match: unknown policy")
)

// Policy selects how a missed entry is correlated with a bank question.
type Policy string

const (
	ExactText      Policy = "exact_text"
	NormalizedText Policy = "normalized_text"
	// Index matches on the bank row position. It silently mismatches when the
	// bank is reloaded from a different or reordered file.
	Index Policy = "index"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return NormalizedText, nil
	case ExactText, NormalizedText, Index:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

func Normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Identity is the key under which q is correlated with missed entries.
func (p Policy) Identity(q bank.Question) string {
	switch p {
	case ExactText:
		return q.Text
	case Index:
		return strconv.Itoa(q.Row)
	default:
		return Normalize(q.Text)
	}
}

// Missed is one entry of a missed-question list.
type Missed struct {
	Text   string `json:"text,omitempty"`
	Row    int    `json:"row"`
	HasRow bool   `json:"has_row"`
}

func (p Policy) key(m Missed) (string, bool) {
	switch p {
	case ExactText:
		return m.Text, m.Text != ""
	case Index:
		return strconv.Itoa(m.Row), m.HasRow
	default:
		n := Normalize(m.Text)
		return n, n != ""
	}
}

// Match returns, in bank order, every question whose identity appears in
// missed. Questions sharing an identity all match.
func Match(questions []bank.Question, missed []Missed, p Policy) ([]bank.Question, error) {
	want := make(map[string]struct{}, len(missed))
	for _, m := range missed {
		if k, ok := p.key(m); ok {
			want[k] = struct{}{}
		}
	}
	var out []bank.Question
	for _, q := range questions {
		if _, ok := want[p.Identity(q)]; ok {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoMatches
	}
	return out, nil
}
