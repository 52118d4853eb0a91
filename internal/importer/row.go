package importer

import (
	"strconv"
	"time"

	"github.com/contractreg/contractreg/internal/contract"
)

// rowOutcome is the result of normalizing one raw row. A row with one or
// more errors is rejected; warnings alone never reject a row.
type rowOutcome struct {
	record   contract.Contract
	errors   []RowIssue
	warnings []RowIssue
}

// processRow normalizes one raw row against a confirmed mapping.
//
// Data-quality problems never panic and never abort the batch: every issue
// is collected as a structured RowIssue. The steps are extraction, the
// required-field check, type coercion, status normalization and record
// assembly, in that order.
func processRow(row []string, rowNum int, m *Mapping, fileName string, importedAt time.Time) rowOutcome {
	out := rowOutcome{}

	// Extraction: raw cell per mapped field, "" for unmapped fields.
	raw := make(map[Field]string, len(fieldSpecs))
	for _, spec := range fieldSpecs {
		fm, ok := m.Fields[spec.Field]
		if !ok {
			continue
		}
		if fm.ColumnIndex < len(row) {
			raw[spec.Field] = CleanCell(row[fm.ColumnIndex])
		}
	}

	// Required-field check: missing required values block the row, missing
	// optional values only downgrade to a warning and a null field.
	for _, spec := range fieldSpecs {
		if raw[spec.Field] != "" {
			continue
		}
		if spec.Required {
			out.errors = append(out.errors, RowIssue{
				Row:     rowNum,
				Field:   spec.Field,
				Message: "required field is missing",
			})
		} else if _, mapped := m.Fields[spec.Field]; mapped {
			out.warnings = append(out.warnings, RowIssue{
				Row:     rowNum,
				Field:   spec.Field,
				Message: "optional field is empty, stored as null",
			})
		}
	}
	if len(out.errors) > 0 {
		return out
	}

	// Type coercion per field spec.
	values := make(map[Field]*string, len(raw))
	for _, spec := range fieldSpecs {
		v, warn := coerceValue(raw[spec.Field], spec)
		values[spec.Field] = v
		if warn != "" {
			out.warnings = append(out.warnings, RowIssue{
				Row:     rowNum,
				Field:   spec.Field,
				Value:   raw[spec.Field],
				Message: warn,
			})
		}
	}

	// Status normalization: unmatched text is kept verbatim and flagged,
	// not rejected. Validity is enforced at the repository-write boundary.
	status := contract.StatusCreated
	if rawStatus := raw[FieldStatus]; rawStatus != "" {
		normalized, ok := contract.NormalizeStatus(rawStatus)
		status = normalized
		if !ok {
			out.warnings = append(out.warnings, RowIssue{
				Row:     rowNum,
				Field:   FieldStatus,
				Value:   rawStatus,
				Message: "unrecognized status kept verbatim",
			})
		}
	}

	out.record = contract.Contract{
		BusinessID:   contract.StringValue(values[FieldBusinessID]),
		Title:        values[FieldTitle],
		Location:     values[FieldLocation],
		RoomArea:     values[FieldRoomArea],
		EquipmentID:  values[FieldEquipmentID],
		Description:  values[FieldDescription],
		SerialNumber: values[FieldSerialNumber],
		Status:       status,
		PlannedStart: values[FieldPlannedStart],
		ReportedDate: values[FieldReportedDate],
		IsComplete:   status == contract.StatusCompleted,
		Source: contract.Provenance{
			FileName:   fileName,
			SheetName:  m.SheetName,
			RowIndex:   rowNum,
			ImportedAt: importedAt,
		},
	}

	return out
}

// coerceValue converts one raw value according to the field's expected type.
// The returned pointer is nil for empty or uncoercible input; a non-empty
// warning explains any value that was dropped.
func coerceValue(raw string, spec FieldSpec) (*string, string) {
	if raw == "" {
		return nil, ""
	}

	switch spec.Type {
	case TypeDate:
		iso, ok := ParseDate(raw)
		if !ok {
			return nil, "unparseable date, stored as null"
		}
		return &iso, ""

	case TypeNumber:
		f, ok := ParseNumber(raw)
		if !ok {
			return nil, "unparseable number, stored as null"
		}
		formatted := strconv.FormatFloat(f, 'f', -1, 64)
		return &formatted, ""

	default:
		return contract.OptString(raw), ""
	}
}
