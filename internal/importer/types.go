// Package importer implements the spreadsheet import pipeline: sheet
// discovery, column-to-field mapping with confidence scoring, row
// normalization and validation, and the orchestration that turns a raw
// workbook into canonical contract records plus a reviewable result.
//
// The pipeline never mutates the repository. A Session holds the parsed
// workbook; callers discover sheets, confirm or override the suggested
// mapping, process rows into a Result, review it, and only then commit the
// records through the repository in one bulk operation.
package importer

import (
	"github.com/contractreg/contractreg/internal/contract"
)

// CellType classifies a column's values.
type CellType string

const (
	TypeString CellType = "string"
	TypeNumber CellType = "number"
	TypeDate   CellType = "date"
)

// Field identifies a logical contract field that spreadsheet columns map to.
type Field string

const (
	FieldBusinessID   Field = "businessId"
	FieldTitle        Field = "title"
	FieldLocation     Field = "location"
	FieldRoomArea     Field = "roomArea"
	FieldEquipmentID  Field = "equipmentId"
	FieldDescription  Field = "description"
	FieldSerialNumber Field = "serialNumber"
	FieldStatus       Field = "status"
	FieldPlannedStart Field = "plannedStart"
	FieldReportedDate Field = "reportedDate"
)

// FieldSpec defines how one logical field is recognized in sheet headers.
type FieldSpec struct {
	Field    Field
	Required bool     // Rows missing this field are rejected
	Type     CellType // Expected value type after coercion
	Patterns []string // Lowercase header patterns; first entry is the preferred name
}

// fieldSpecs is the fixed logical field table. Pattern lists carry German
// first because the registers this service ingests are German exports.
var fieldSpecs = []FieldSpec{
	{Field: FieldBusinessID, Required: true, Type: TypeString,
		Patterns: []string{"anlage", "anlagennummer", "vertragsnummer", "auftragsnummer", "contract number", "contract", "nummer"}},
	{Field: FieldTitle, Required: true, Type: TypeString,
		Patterns: []string{"titel", "bezeichnung", "title", "name"}},
	{Field: FieldLocation, Type: TypeString,
		Patterns: []string{"standort", "ort", "gebäude", "gebaeude", "location", "site"}},
	{Field: FieldRoomArea, Type: TypeString,
		Patterns: []string{"raum", "raumbereich", "bereich", "room", "area"}},
	{Field: FieldEquipmentID, Type: TypeString,
		Patterns: []string{"gerät", "geraet", "gerätenummer", "geraetenummer", "equipment", "inventarnummer"}},
	{Field: FieldDescription, Type: TypeString,
		Patterns: []string{"beschreibung", "bemerkung", "kommentar", "description", "notes"}},
	{Field: FieldSerialNumber, Type: TypeString,
		Patterns: []string{"seriennummer", "serien-nr", "serial number", "serial", "s/n"}},
	{Field: FieldStatus, Type: TypeString,
		Patterns: []string{"status", "zustand", "bearbeitungsstand", "state"}},
	{Field: FieldPlannedStart, Type: TypeDate,
		Patterns: []string{"geplanter beginn", "geplant", "beginn", "starttermin", "planned start", "start"}},
	{Field: FieldReportedDate, Type: TypeDate,
		Patterns: []string{"gemeldet am", "meldedatum", "gemeldet", "reported", "datum"}},
}

// FieldSpecs returns a copy of the logical field table.
func FieldSpecs() []FieldSpec {
	out := make([]FieldSpec, len(fieldSpecs))
	copy(out, fieldSpecs)
	return out
}

// Column describes one populated header cell of a discovered sheet.
type Column struct {
	Index   int      `json:"index"`  // 0-based position in the row
	Letter  string   `json:"letter"` // Spreadsheet letter position: "A", "B", ...
	Header  string   `json:"header"`
	Type    CellType `json:"type"`
	Visible bool     `json:"visible"`
	Samples []string `json:"samples"` // Capped list of non-empty values
}

// Sheet is the discovery result for one workbook tab.
type Sheet struct {
	Name         string   `json:"name"`
	RowCount     int      `json:"rowCount"`     // Data rows below the header
	DataStartRow int      `json:"dataStartRow"` // 1-based index of the first data row
	IsEmpty      bool     `json:"isEmpty"`
	Columns      []Column `json:"columns"`
}

// FieldMapping assigns one discovered column to a logical field.
type FieldMapping struct {
	Field        Field    `json:"field"`
	SourceColumn string   `json:"sourceColumn"` // Column letter
	ColumnIndex  int      `json:"columnIndex"`
	Header       string   `json:"header"`
	Confidence   float64  `json:"confidence"` // 0..1, strength of the header match
	Type         CellType `json:"type"`
}

// MappingWarning flags one suggested assignment a reviewer should
// double-check: a column tie or a weak header match. Warnings never block
// an import; overriding the named field clears its warning.
type MappingWarning struct {
	Field   Field  `json:"field"`
	Message string `json:"message"`
}

// Mapping is the full column assignment for one sheet. It is transient
// configuration: regenerated per import session and optionally adjusted by a
// reviewer before rows are processed. It never blocks an import by itself.
type Mapping struct {
	SheetName         string                 `json:"sheetName"`
	Fields            map[Field]FieldMapping `json:"fields"`
	AverageConfidence float64                `json:"averageConfidence"`
	Quality           string                 `json:"quality"` // "high", "medium" or "low"
	MissingRequired   []Field                `json:"missingRequired"`
	UnmappedColumns   []Column               `json:"unmappedColumns"`
	Warnings          []MappingWarning       `json:"warnings,omitempty"`
}

// RowIssue is a structured per-row problem. Blocking problems reject the row;
// warnings leave the row imported with the affected field empty or verbatim.
type RowIssue struct {
	Row     int    `json:"row"` // 1-based spreadsheet row number
	Field   Field  `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// Summary aggregates counts for a processed import.
type Summary struct {
	TotalRows      int   `json:"totalRows"`
	SuccessCount   int   `json:"successCount"`
	ErrorCount     int   `json:"errorCount"`
	DuplicateCount int   `json:"duplicateCount"`
	DurationMs     int64 `json:"durationMs"`
}

// Result is the transient aggregate produced by processing a sheet. It is
// reviewed by the caller and either committed to the repository or
// discarded; it is never mutated in place after Process returns.
type Result struct {
	Records  []contract.Contract `json:"records"`
	Errors   []RowIssue          `json:"errors"`
	Warnings []RowIssue          `json:"warnings"`
	Summary  Summary             `json:"summary"`
}

// ProgressFunc is called periodically during row processing.
type ProgressFunc func(row, total int)

// ProcessOptions tunes row processing for one run.
type ProcessOptions struct {
	// MaxRows caps the number of data rows processed (0 = no cap).
	MaxRows int

	// AbortOnError fails the whole batch with a RowRejectedError at the
	// first row missing a required field, instead of skipping the row and
	// continuing (the default).
	AbortOnError bool

	// OnProgress, if set, is invoked about once per ProgressInterval rows
	// and once at completion.
	OnProgress ProgressFunc
}
