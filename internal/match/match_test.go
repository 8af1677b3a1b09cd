package match

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/mind-engage/quizretry/internal/bank"
	"github.com/mind-engage/quizretry/internal/tabular"
)

func questions(texts ...string) []bank.Question {
	out := make([]bank.Question, len(texts))
	for i, t := range texts {
		out[i] = bank.Question{Row: i, Text: t, Correct: "A"}
	}
	return out
}

func rows(qs []bank.Question) []int {
	out := make([]int, len(qs))
	for i, q := range qs {
		out[i] = q.Row
	}
	return out
}

func TestNormalizedMatchesNearDuplicates(t *testing.T) {
	got, err := Match(questions("q2 ", "Q2", "Q3"), []Missed{{Text: "Q2"}}, NormalizedText)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if want := []int{0, 1}; !reflect.DeepEqual(rows(got), want) {
		t.Fatalf("rows = %v, want %v", rows(got), want)
	}
}

func TestExactTextIsByteIdentical(t *testing.T) {
	got, err := Match(questions("q2 ", "Q2", "Q3"), []Missed{{Text: "Q2"}}, ExactText)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if want := []int{1}; !reflect.DeepEqual(rows(got), want) {
		t.Fatalf("rows = %v, want %v", rows(got), want)
	}
}

func TestIndexPolicyUsesRow(t *testing.T) {
	qs := questions("a", "b", "c")
	got, err := Match(qs, []Missed{{Row: 2, HasRow: true}, {Text: "a"}}, Index)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if want := []int{2}; !reflect.DeepEqual(rows(got), want) {
		t.Fatalf("rows = %v, want %v", rows(got), want)
	}
}

func TestNormalizedMatchIgnoresInputOrder(t *testing.T) {
	qs := questions("Alpha", "beta", " Gamma ", "delta")
	missed := []Missed{{Text: "GAMMA"}, {Text: "alpha"}}

	first, err := Match(qs, missed, NormalizedText)
	if err != nil {
		t.Fatalf("match: %v", err)
	}

	reversedQs := make([]bank.Question, len(qs))
	for i, q := range qs {
		reversedQs[len(qs)-1-i] = q
	}
	reversedMissed := []Missed{missed[1], missed[0]}
	second, err := Match(reversedQs, reversedMissed, NormalizedText)
	if err != nil {
		t.Fatalf("match: %v", err)
	}

	set := func(qs []bank.Question) map[int]bool {
		m := map[int]bool{}
		for _, q := range qs {
			m[q.Row] = true
		}
		return m
	}
	if !reflect.DeepEqual(set(first), set(second)) {
		t.Fatalf("subsets differ: %v vs %v", rows(first), rows(second))
	}
}

func TestNoMatches(t *testing.T) {
	_, err := Match(questions("a"), []Missed{{Text: "zzz"}}, NormalizedText)
	if !errors.Is(err, ErrNoMatches) {
		t.Fatalf("err = %v, want ErrNoMatches", err)
	}
}

func TestParseMissedFiltersByResult(t *testing.T) {
	tbl := tabular.Table{
		Header: []string{"Индекс", "Вопрос", "Результат"},
		Rows: [][]string{
			{"0", "Q1", "✅ Верно"},
			{"1", "Q2", "❌ Неверно"},
			{"1", "Q2", "❌ Неверно"},
			{"2", "Q3", "incorrect"},
		},
	}
	got, err := ParseMissed(tbl, DefaultColumns(), NormalizedText)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []Missed{{Text: "Q2", Row: 1, HasRow: true}, {Text: "Q3", Row: 2, HasRow: true}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("missed = %+v, want %+v", got, want)
	}
}

func TestParseMissedRequiresColumnForPolicy(t *testing.T) {
	tbl := tabular.Table{Header: []string{"Вопрос"}, Rows: [][]string{{"Q1"}}}
	if _, err := ParseMissed(tbl, DefaultColumns(), Index); !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("index policy err = %v, want ErrMissingColumn", err)
	}
	if _, err := ParseMissed(tabular.Table{Header: []string{"x"}}, DefaultColumns(), ExactText); !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("text policy err = %v, want ErrMissingColumn", err)
	}
}

func TestReadMissedCSV(t *testing.T) {
	in := "Вопрос\nQ1\nQ1\n\nQ2\n"
	got, err := ReadMissed(strings.NewReader(in), "errors.csv", DefaultColumns(), NormalizedText)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("missed = %+v, want 2 entries", got)
	}
}

func TestParsePolicy(t *testing.T) {
	cases := map[string]Policy{"": NormalizedText, "INDEX": Index, " exact_text ": ExactText}
	for in, want := range cases {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Fatalf("ParsePolicy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParsePolicy("fuzzy"); !errors.Is(err, ErrUnknownPolicy) {
		t.Fatalf("err = %v, want ErrUnknownPolicy", err)
	}
}
