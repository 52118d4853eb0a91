// Package contract defines the canonical contract record and its invariants.
// This package has no import or HTTP dependencies and is shared by the
// import pipeline and the repository.
package contract

import (
	"strings"
	"time"
)

// Provenance records which file, sheet and row a record originated from.
// It is set once when the record is created and never mutated.
type Provenance struct {
	FileName   string    `json:"fileName"`
	SheetName  string    `json:"sheetName"`
	RowIndex   int       `json:"rowIndex"`
	ImportedAt time.Time `json:"importedAt"`
}

// Contract is the canonical unit of storage.
//
// Optional descriptive fields use *string: a nil pointer means the value is
// absent. Empty or whitespace-only input is normalized to nil before a record
// is stored, never kept as "".
type Contract struct {
	// ID is process-unique, assigned by the repository at creation, immutable.
	ID string `json:"id"`

	// BusinessID is the external contract number. It is not guaranteed unique
	// across re-imports; deduplication keys it together with the source sheet.
	BusinessID string `json:"businessId"`

	Title        *string `json:"title,omitempty"`
	Location     *string `json:"location,omitempty"`
	RoomArea     *string `json:"roomArea,omitempty"`
	EquipmentID  *string `json:"equipmentId,omitempty"`
	Description  *string `json:"description,omitempty"`
	SerialNumber *string `json:"serialNumber,omitempty"`

	Status Status `json:"status"`

	// PlannedStart and ReportedDate hold ISO-8601 dates (YYYY-MM-DD) or nil.
	// Raw spreadsheet date encodings are never stored.
	PlannedStart *string `json:"plannedStart,omitempty"`
	ReportedDate *string `json:"reportedDate,omitempty"`

	Source Provenance `json:"sourceProvenance"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	IsComplete bool `json:"isComplete"`
}

// OptString trims s and returns a pointer to it, or nil for empty input.
func OptString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Violation describes a single failed record invariant.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks the record invariants enforced at the repository-write
// boundary and returns all violations, not just the first.
func (c *Contract) Validate() []Violation {
	var violations []Violation

	if strings.TrimSpace(c.BusinessID) == "" {
		violations = append(violations, Violation{
			Field:   "businessId",
			Message: "business ID must not be empty",
		})
	}
	if StringValue(c.Title) == "" {
		violations = append(violations, Violation{
			Field:   "title",
			Message: "title must not be empty",
		})
	}
	if !c.Status.Valid() {
		violations = append(violations, Violation{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(statusCodes(), ", "),
		})
	}

	return violations
}

// SearchText returns the concatenation of all string fields, lowercased,
// for free-text filtering.
func (c *Contract) SearchText() string {
	parts := []string{
		c.BusinessID,
		StringValue(c.Title),
		StringValue(c.Location),
		StringValue(c.RoomArea),
		StringValue(c.EquipmentID),
		StringValue(c.Description),
		StringValue(c.SerialNumber),
		string(c.Status),
	}
	return strings.ToLower(strings.Join(parts, " "))
}
