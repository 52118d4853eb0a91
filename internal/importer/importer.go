package importer

import (
	"context"
	"fmt"
	"time"
)

// ProgressInterval is how often (in rows) progress is reported and context
// cancellation is checked during row processing.
var ProgressInterval = 100

// Process runs the confirmed mapping over every data row of its sheet and
// returns the transient import result.
//
// Rows with missing required fields are skipped by default; with
// ProcessOptions.AbortOnError the first such row fails the batch instead.
// Before the result is returned, records are deduplicated by
// (businessId, sheetName): the later row wins and each discarded earlier
// row is counted and flagged with a warning.
//
// Only structural failures return an error: a malformed mapping, an unknown
// sheet, or context cancellation. Data-quality problems surface exclusively
// through Result.Errors and Result.Warnings.
func (s *Session) Process(ctx context.Context, m *Mapping, opts ProcessOptions) (*Result, error) {
	if m == nil || m.Fields == nil {
		return nil, fmt.Errorf("mapping is not initialized")
	}
	sheet, ok := s.Sheet(m.SheetName)
	if !ok {
		return nil, fmt.Errorf("unknown sheet: %s", m.SheetName)
	}

	start := time.Now()
	importedAt := start.UTC()

	rows := s.rows[m.SheetName]
	headerIdx := s.headers[m.SheetName]

	var dataRows [][]string
	if headerIdx+1 < len(rows) {
		dataRows = rows[headerIdx+1:]
	}

	result := &Result{}

	// First pass over the sheet to know the total for progress reporting,
	// honoring the row cap.
	total := 0
	for _, row := range dataRows {
		if !isEmptyRow(row) {
			total++
		}
	}
	if opts.MaxRows > 0 && total > opts.MaxRows {
		total = opts.MaxRows
	}
	result.Summary.TotalRows = total

	type keyed struct {
		index int // position in result.Records
		row   int // spreadsheet row, for the duplicate warning
	}
	seen := make(map[string]keyed)

	processed := 0
	for i, row := range dataRows {
		if processed >= total {
			break
		}
		if isEmptyRow(row) {
			continue
		}

		if processed%ProgressInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if opts.OnProgress != nil {
				opts.OnProgress(processed, total)
			}
		}

		rowNum := sheet.DataStartRow + i // 1-based spreadsheet row
		outcome := processRow(row, rowNum, m, s.fileName, importedAt)
		processed++

		result.Warnings = append(result.Warnings, outcome.warnings...)

		if len(outcome.errors) > 0 {
			if opts.AbortOnError {
				return nil, &RowRejectedError{Row: rowNum, Issues: outcome.errors}
			}
			result.Errors = append(result.Errors, outcome.errors...)
			result.Summary.ErrorCount++
			continue
		}

		key := dedupKey(outcome.record.BusinessID, m.SheetName)
		if prev, dup := seen[key]; dup {
			// Later row wins: replace the earlier record in place.
			result.Records[prev.index] = outcome.record
			result.Summary.DuplicateCount++
			result.Warnings = append(result.Warnings, RowIssue{
				Row:     rowNum,
				Field:   FieldBusinessID,
				Value:   outcome.record.BusinessID,
				Message: fmt.Sprintf("duplicate of row %d, later row wins", prev.row),
			})
			seen[key] = keyed{index: prev.index, row: rowNum}
			continue
		}

		seen[key] = keyed{index: len(result.Records), row: rowNum}
		result.Records = append(result.Records, outcome.record)
	}

	result.Summary.SuccessCount = len(result.Records)
	result.Summary.DurationMs = time.Since(start).Milliseconds()

	if opts.OnProgress != nil {
		opts.OnProgress(processed, total)
	}

	return result, nil
}

// dedupKey builds the deduplication key for a record: the business ID
// combined with the sheet it came from.
func dedupKey(businessID, sheetName string) string {
	return businessID + "\x00" + sheetName
}
