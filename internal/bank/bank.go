package bank

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mind-engage/quizretry/internal/tabular"
)

var (
	ErrMissingColumn = errors.New("bank: required column missing")
	ErrEmptyBank     = errors.New("bank: no complete questions")
)

// Labels are the option columns a bank may carry, in display order.
var Labels = []string{"A", "B", "C", "D", "E", "F"}

type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

type Question struct {
	Row     int      `json:"row"` // 0-based data row in the uploaded bank
	Text    string   `json:"text"`
	Options []Option `json:"options,omitempty"`
	Correct string   `json:"correct"` // trimmed, uppercased label
}

// Answerable reports whether the question offers at least one option.
func (q Question) Answerable() bool { return len(q.Options) > 0 }

// HasLabel reports whether label is one of the question's options.
func (q Question) HasLabel(label string) bool {
	for _, o := range q.Options {
		if o.Label == label {
			return true
		}
	}
	return false
}

// Columns names the bank's header cells.
type Columns struct {
	Question string
	Correct  string
	Options  []string // header names, positionally mapped onto Labels
}

func DefaultColumns() Columns {
	return Columns{
		Question: "Вопрос",
		Correct:  "Правильный ответ",
		Options:  append([]string(nil), Labels...),
	}
}

// Bank is a loaded question set.
type Bank struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
	Dropped   int        `json:"dropped"` // rows without question text or correct label
}

// Load builds a bank from a parsed table. Incomplete rows are skipped and
// counted; a missing required column fails the whole load.
func Load(t tabular.Table, cols Columns) (Bank, error) {
	qc := t.Col(cols.Question)
	if qc < 0 {
		return Bank{}, fmt.Errorf("%w: %q", ErrMissingColumn, cols.Question)
	}
	cc := t.Col(cols.Correct)
	if cc < 0 {
		return Bank{}, fmt.Errorf("%w: %q", ErrMissingColumn, cols.Correct)
	}
	optCols := make([]int, len(Labels))
	for i := range Labels {
		optCols[i] = -1
		if i < len(cols.Options) {
			optCols[i] = t.Col(cols.Options[i])
		}
	}

	out := Bank{Questions: make([]Question, 0, len(t.Rows))}
	for row := range t.Rows {
		text := t.Cell(row, qc)
		correct := strings.ToUpper(t.Cell(row, cc))
		if text == "" || correct == "" {
			out.Dropped++
			continue
		}
		q := Question{Row: row, Text: t.Raw(row, qc), Correct: correct}
		for i, label := range Labels {
			if v := t.Cell(row, optCols[i]); v != "" {
				q.Options = append(q.Options, Option{Label: label, Text: v})
			}
		}
		out.Questions = append(out.Questions, q)
	}
	if len(out.Questions) == 0 {
		return Bank{}, ErrEmptyBank
	}
	return out, nil
}

// Read parses an uploaded file and loads it as a bank named after the file.
func Read(r io.Reader, filename, sheet string, cols Columns) (Bank, error) {
	t, err := tabular.Read(r, filename, sheet)
	if err != nil {
		return Bank{}, err
	}
	b, err := Load(t, cols)
	if err != nil {
		return Bank{}, err
	}
	b.Name = filename
	return b, nil
}
