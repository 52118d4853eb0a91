package importer

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SampleLimit caps the number of sample values collected per column.
var SampleLimit = 5

// supportedExtensions lists workbook formats the pipeline accepts. Legacy
// binary .xls is rejected up front; callers are told to re-save as .xlsx.
var supportedExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
}

// Session holds one parsed workbook for the lifetime of an import attempt.
// It is read-only after Open: discovery, mapping suggestion and row
// processing all work from the same in-memory rows, so preview and commit
// see identical data. Discarding a Session discards all transient state.
type Session struct {
	fileName string
	sheets   []Sheet
	rows     map[string][][]string // raw rows per sheet, header included
	headers  map[string]int        // 0-based header row index per sheet
}

// Open parses workbook bytes into a Session.
//
// The size ceiling is enforced before any parsing (FileTooLargeError), as is
// the extension check (UnsupportedFormatError). Unreadable workbooks and
// workbooks without sheets fail with DiscoveryError.
func Open(fileName string, data []byte, maxSize int64) (*Session, error) {
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, &FileTooLargeError{FileName: fileName, Size: int64(len(data)), Limit: maxSize}
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if !supportedExtensions[ext] {
		return nil, &UnsupportedFormatError{FileName: fileName, Ext: ext}
	}

	// RawCellValue keeps date cells as their serial numbers instead of
	// locale-formatted strings, so date coercion sees one stable encoding.
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &DiscoveryError{FileName: fileName, Reason: "cannot parse workbook", Err: err}
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, &DiscoveryError{FileName: fileName, Reason: "workbook has no sheets"}
	}

	s := &Session{
		fileName: fileName,
		rows:     make(map[string][][]string, len(names)),
		headers:  make(map[string]int, len(names)),
	}

	for _, name := range names {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, &DiscoveryError{FileName: fileName, Reason: "cannot read sheet " + name, Err: err}
		}
		s.rows[name] = rows

		sheet := discoverSheet(f, name, rows)
		s.headers[name] = sheet.DataStartRow - 2 // back to 0-based header index
		s.sheets = append(s.sheets, sheet)
	}

	return s, nil
}

// FileName returns the name of the uploaded workbook.
func (s *Session) FileName() string { return s.fileName }

// Sheets returns the discovery result for every tab, empty ones included.
func (s *Session) Sheets() []Sheet {
	out := make([]Sheet, len(s.sheets))
	copy(out, s.sheets)
	return out
}

// Sheet returns the discovery result for one tab by name.
func (s *Session) Sheet(name string) (Sheet, bool) {
	for _, sh := range s.sheets {
		if sh.Name == name {
			return sh, true
		}
	}
	return Sheet{}, false
}

// DefaultSheet returns the first non-empty sheet, falling back to the first
// sheet when every tab is empty.
func (s *Session) DefaultSheet() Sheet {
	for _, sh := range s.sheets {
		if !sh.IsEmpty {
			return sh
		}
	}
	return s.sheets[0]
}

// discoverSheet builds the per-sheet column metadata. The first non-empty
// row is treated as the header; one column descriptor is built per populated
// header cell.
func discoverSheet(f *excelize.File, name string, rows [][]string) Sheet {
	headerIdx := firstNonEmptyRow(rows)
	if headerIdx < 0 {
		return Sheet{Name: name, DataStartRow: 2, IsEmpty: true}
	}

	headerRow := rows[headerIdx]
	dataRows := rows[headerIdx+1:]

	dataCount := 0
	for _, row := range dataRows {
		if !isEmptyRow(row) {
			dataCount++
		}
	}

	sheet := Sheet{
		Name:         name,
		RowCount:     dataCount,
		DataStartRow: headerIdx + 2, // 1-based, row after the header
		IsEmpty:      dataCount == 0,
	}

	for i, cell := range headerRow {
		header := CleanCell(cell)
		if header == "" {
			continue
		}

		letter, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}

		visible := true
		if v, err := f.GetColVisible(name, letter); err == nil {
			visible = v
		}

		samples := collectSamples(dataRows, i, SampleLimit)

		sheet.Columns = append(sheet.Columns, Column{
			Index:   i,
			Letter:  letter,
			Header:  header,
			Type:    InferType(header, samples),
			Visible: visible,
			Samples: samples,
		})
	}

	return sheet
}

// collectSamples gathers up to limit distinct non-empty values from one
// column of the data rows.
func collectSamples(rows [][]string, col, limit int) []string {
	var samples []string
	for _, row := range rows {
		if len(samples) >= limit {
			break
		}
		if col >= len(row) {
			continue
		}
		val := CleanCell(row[col])
		if val == "" {
			continue
		}
		dup := false
		for _, s := range samples {
			if s == val {
				dup = true
				break
			}
		}
		if !dup {
			samples = append(samples, val)
		}
	}
	return samples
}

func firstNonEmptyRow(rows [][]string) int {
	for i, row := range rows {
		if !isEmptyRow(row) {
			return i
		}
	}
	return -1
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
