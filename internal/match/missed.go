package match

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mind-engage/quizretry/internal/tabular"
)

// Columns names the header cells of a missed-question list.
type Columns struct {
	Question string
	Index    string
	Result   string
}

func DefaultColumns() Columns {
	return Columns{Question: "Вопрос", Index: "Индекс", Result: "Результат"}
}

var incorrectMarkers = []string{"неверно", "incorrect", "wrong", "false", "❌"}

// IsIncorrectMark reports whether a result cell marks the row as missed.
func IsIncorrectMark(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, m := range incorrectMarkers {
		if strings.Contains(v, m) {
			return true
		}
	}
	return false
}

// ParseMissed reads a missed list from a table. The question column is
// required for text policies and the index column for the index policy. When
// a result column exists only rows marked incorrect are kept. Duplicates are
// collapsed.
func ParseMissed(t tabular.Table, cols Columns, p Policy) ([]Missed, error) {
	qc, ic, rc := t.Col(cols.Question), t.Col(cols.Index), t.Col(cols.Result)
	switch {
	case p == Index && ic < 0:
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, cols.Index)
	case p != Index && qc < 0:
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, cols.Question)
	}

	seen := map[Missed]struct{}{}
	var out []Missed
	for row := range t.Rows {
		if rc >= 0 && !IsIncorrectMark(t.Cell(row, rc)) {
			continue
		}
		var m Missed
		if qc >= 0 {
			m.Text = t.Raw(row, qc)
		}
		if ic >= 0 {
			if n, err := strconv.Atoi(t.Cell(row, ic)); err == nil && n >= 0 {
				m.Row, m.HasRow = n, true
			}
		}
		if _, ok := p.key(m); !ok {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out, nil
}

// ReadMissed parses an uploaded missed list (csv or xlsx, first sheet).
func ReadMissed(r io.Reader, filename string, cols Columns, p Policy) ([]Missed, error) {
	t, err := tabular.Read(r, filename, "")
	if err != nil {
		return nil, err
	}
	return ParseMissed(t, cols, p)
}
