// Package results summarizes a finished pass and exports its missed
// questions in a form the matcher can read back.
package results

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"

	"github.com/mind-engage/quizretry/internal/match"
	"github.com/mind-engage/quizretry/internal/session"
)

var ErrNothingToRetry = errors.New("results: no incorrect answers")

const (
	MarkCorrect   = "✅ Верно"
	MarkIncorrect = "❌ Неверно"
)

// Header is the export column order.
var Header = []string{"Режим", "Индекс", "Вопрос", "Вы выбрали", "Правильный ответ", "Результат"}

type Summary struct {
	Score     int                    `json:"score"`
	Total     int                    `json:"total"`
	Percent   float64                `json:"percent"`
	Correct   []session.AnswerRecord `json:"correct"`
	Incorrect []session.AnswerRecord `json:"incorrect"`
	Mastery   bool                   `json:"mastery"`
	CanRetry  bool                   `json:"can_retry"`
}

// Partition splits records by outcome, preserving order.
func Partition(recs []session.AnswerRecord) (correct, incorrect []session.AnswerRecord) {
	for _, r := range recs {
		if r.IsCorrect {
			correct = append(correct, r)
		} else {
			incorrect = append(incorrect, r)
		}
	}
	return correct, incorrect
}

func Summarize(p *session.Pass) Summary {
	var s Summary
	if p == nil {
		return s
	}
	s.Correct, s.Incorrect = Partition(p.Records)
	s.Score = len(s.Correct)
	s.Total = len(p.Questions)
	if s.Total > 0 {
		s.Percent = float64(s.Score) * 100 / float64(s.Total)
	}
	s.CanRetry = len(s.Incorrect) > 0
	s.Mastery = p.Finished() && !s.CanRetry
	return s
}

func mark(ok bool) string {
	if ok {
		return MarkCorrect
	}
	return MarkIncorrect
}

// WriteCSV writes records under Header, prefixed with a UTF-8 BOM so
// spreadsheet tools detect the encoding.
func WriteCSV(w io.Writer, recs []session.AnswerRecord) error {
	if _, err := io.WriteString(w, "\xef\xbb\xbf"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{string(r.Mode), strconv.Itoa(r.Row), r.Text, r.Chosen, r.Correct, mark(r.IsCorrect)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Missed turns the incorrect records of a log into a missed list.
func Missed(recs []session.AnswerRecord) ([]match.Missed, error) {
	_, incorrect := Partition(recs)
	if len(incorrect) == 0 {
		return nil, ErrNothingToRetry
	}
	out := make([]match.Missed, 0, len(incorrect))
	for _, r := range incorrect {
		out = append(out, match.Missed{Text: r.Text, Row: r.Row, HasRow: true})
	}
	return out, nil
}

// Columns is the matcher column set that reads WriteCSV output.
func Columns() match.Columns {
	return match.Columns{Question: Header[2], Index: Header[1], Result: Header[5]}
}
