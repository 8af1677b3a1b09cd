// Package tabular reads uploaded spreadsheets (xlsx or csv) into a plain
// header + rows table.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnreadable    = errors.New("tabular: unreadable file")
	ErrSheetNotFound = errors.New("tabular: sheet not found")
)

// Table is a header row plus data rows. Rows may be shorter than Header.
type Table struct {
	Header []string
	Rows   [][]string
}

// Col returns the index of the named header column, or -1.
func (t Table) Col(name string) int {
	name = strings.TrimSpace(name)
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed cell value, "" when the row is short or col < 0.
func (t Table) Cell(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// Raw is Cell without trimming.
func (t Table) Raw(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

var zipMagic = []byte("PK\x03\x04")

// Read parses r as xlsx or csv. The format is taken from the filename
// extension and falls back to sniffing the zip signature. sheet selects the
// xlsx worksheet; "" means the first one.
func Read(r io.Reader, filename, sheet string) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return readXLSX(data, sheet)
	case ".csv", ".txt":
		return readCSV(data)
	}
	if bytes.HasPrefix(data, zipMagic) {
		return readXLSX(data, sheet)
	}
	return readCSV(data)
}

func readXLSX(data []byte, sheet string) (Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return Table{}, fmt.Errorf("%w: workbook has no sheets", ErrUnreadable)
		}
		sheet = list[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return Table{}, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return fromRows(rows), nil
}

func readCSV(data []byte) (Table, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return fromRows(rows), nil
}

// fromRows splits off the header and drops fully blank trailing rows.
func fromRows(rows [][]string) Table {
	if len(rows) == 0 {
		return Table{}
	}
	body := rows[1:]
	for len(body) > 0 && blank(body[len(body)-1]) {
		body = body[:len(body)-1]
	}
	return Table{Header: rows[0], Rows: body}
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
