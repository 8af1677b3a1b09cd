package tabular

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func xlsxBytes(t *testing.T, sheet string, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	return buf.Bytes()
}

func TestReadCSVStripsBOMAndTrailingBlankRows(t *testing.T) {
	in := "\xef\xbb\xbfВопрос,Правильный ответ\nQ1,a\n,\n"
	tbl, err := Read(strings.NewReader(in), "errors.csv", "")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := tbl.Col("Вопрос"); got != 0 {
		t.Fatalf("Col(Вопрос) = %d, want 0", got)
	}
	if len(tbl.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(tbl.Rows))
	}
	if got := tbl.Cell(0, 1); got != "a" {
		t.Fatalf("cell = %q", got)
	}
	if got := tbl.Cell(0, 9); got != "" {
		t.Fatalf("out of range cell = %q", got)
	}
}

func TestReadXLSXBySheetName(t *testing.T) {
	data := xlsxBytes(t, "Sheet1", [][]string{{"Вопрос", "A"}, {"Q1", "opt"}})
	tbl, err := Read(bytes.NewReader(data), "bank.xlsx", "Sheet1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if tbl.Col("A") != 1 || tbl.Cell(0, 1) != "opt" {
		t.Fatalf("unexpected table: %+v", tbl)
	}
}

func TestReadXLSXSniffsWithoutExtension(t *testing.T) {
	data := xlsxBytes(t, "Sheet1", [][]string{{"h"}, {"v"}})
	tbl, err := Read(bytes.NewReader(data), "upload", "")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if tbl.Cell(0, 0) != "v" {
		t.Fatalf("unexpected table: %+v", tbl)
	}
}

func TestReadXLSXMissingSheet(t *testing.T) {
	data := xlsxBytes(t, "Data", [][]string{{"h"}, {"v"}})
	_, err := Read(bytes.NewReader(data), "bank.xlsx", "Sheet1")
	if !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("err = %v, want ErrSheetNotFound", err)
	}
}

func TestReadMalformedXLSX(t *testing.T) {
	_, err := Read(strings.NewReader("not a zip"), "bank.xlsx", "")
	if !errors.Is(err, ErrUnreadable) {
		t.Fatalf("err = %v, want ErrUnreadable", err)
	}
}
