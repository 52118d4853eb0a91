package repository

// query.go provides the read side of the repository: filtered, sorted and
// paginated views plus statistics. Reads are synchronous and never suspend;
// they are safe to interleave with writes because writes swap in a complete
// collection under the lock instead of mutating records in place.

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/contractreg/contractreg/internal/contract"
)

// Filter describes read criteria. Zero values mean "no constraint".
type Filter struct {
	// Partial, case-insensitive matches.
	BusinessID  string
	Title       string
	Location    string
	EquipmentID string

	// Exact canonical status code.
	Status contract.Status

	// Inclusive ISO date range on plannedStart.
	PlannedFrom string
	PlannedTo   string

	// Free-text search across all string fields.
	Search string
}

// Sort names a sortable field and direction.
type Sort struct {
	Field string // businessId, title, location, status, plannedStart, reportedDate, createdAt, updatedAt
	Desc  bool
}

// PageQuery describes one paginated read.
type PageQuery struct {
	Page     int // 1-based; values < 1 are treated as 1
	PageSize int
	Filter   Filter
	Sort     *Sort
}

// Page is one slice of the filtered collection.
type Page struct {
	Items      []contract.Contract `json:"items"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	TotalItems int                 `json:"totalItems"`
	TotalPages int                 `json:"totalPages"`
}

// Statistics summarizes the collection for dashboards.
type Statistics struct {
	Total           int            `json:"total"`
	ByStatus        map[string]int `json:"byStatus"`
	ByLocation      map[string]int `json:"byLocation"`
	FirstImportedAt *time.Time     `json:"firstImportedAt,omitempty"`
	LastImportedAt  *time.Time     `json:"lastImportedAt,omitempty"`
}

// GetFiltered returns all records matching the criteria in insertion order.
func (r *Repository) GetFiltered(f Filter) []contract.Contract {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []contract.Contract
	for _, c := range r.records {
		if matches(c, f) {
			out = append(out, c)
		}
	}
	return out
}

// GetPaginated returns one page of the filtered, sorted collection.
//
// Ordering is deterministic before slicing: when a sort is requested, ties
// are broken by record ID, so repeated calls with identical inputs yield
// stable pages that neither repeat nor skip records.
func (r *Repository) GetPaginated(q PageQuery) (Page, error) {
	if q.Sort != nil && !validSortField(q.Sort.Field) {
		return Page{}, fmt.Errorf("unknown sort field: %s", q.Sort.Field)
	}

	items := r.GetFiltered(q.Filter)
	if q.Sort != nil {
		sortRecords(items, *q.Sort)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	total := len(items)
	totalPages := (total + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}

	startIdx := (page - 1) * size
	if startIdx > total {
		startIdx = total
	}
	endIdx := startIdx + size
	if endIdx > total {
		endIdx = total
	}

	return Page{
		Items:      items[startIdx:endIdx],
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// GetStatistics returns the collection totals, grouped counts and the span
// of import timestamps.
func (r *Repository) GetStatistics() Statistics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Statistics{
		Total:      len(r.records),
		ByStatus:   make(map[string]int),
		ByLocation: make(map[string]int),
	}

	for _, c := range r.records {
		stats.ByStatus[string(c.Status)]++
		if loc := contract.StringValue(c.Location); loc != "" {
			stats.ByLocation[loc]++
		}

		imported := c.Source.ImportedAt
		if imported.IsZero() {
			continue
		}
		if stats.FirstImportedAt == nil || imported.Before(*stats.FirstImportedAt) {
			t := imported
			stats.FirstImportedAt = &t
		}
		if stats.LastImportedAt == nil || imported.After(*stats.LastImportedAt) {
			t := imported
			stats.LastImportedAt = &t
		}
	}

	return stats
}

func matches(c contract.Contract, f Filter) bool {
	if f.BusinessID != "" && !containsFold(c.BusinessID, f.BusinessID) {
		return false
	}
	if f.Title != "" && !containsFold(contract.StringValue(c.Title), f.Title) {
		return false
	}
	if f.Location != "" && !containsFold(contract.StringValue(c.Location), f.Location) {
		return false
	}
	if f.EquipmentID != "" && !containsFold(contract.StringValue(c.EquipmentID), f.EquipmentID) {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}

	if f.PlannedFrom != "" || f.PlannedTo != "" {
		planned := contract.StringValue(c.PlannedStart)
		if planned == "" {
			return false
		}
		// ISO dates compare correctly as strings.
		if f.PlannedFrom != "" && planned < f.PlannedFrom {
			return false
		}
		if f.PlannedTo != "" && planned > f.PlannedTo {
			return false
		}
	}

	if f.Search != "" && !strings.Contains(c.SearchText(), strings.ToLower(f.Search)) {
		return false
	}

	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

var sortFields = map[string]func(c contract.Contract) string{
	"businessId":   func(c contract.Contract) string { return c.BusinessID },
	"title":        func(c contract.Contract) string { return contract.StringValue(c.Title) },
	"location":     func(c contract.Contract) string { return contract.StringValue(c.Location) },
	"status":       func(c contract.Contract) string { return string(c.Status) },
	"plannedStart": func(c contract.Contract) string { return contract.StringValue(c.PlannedStart) },
	"reportedDate": func(c contract.Contract) string { return contract.StringValue(c.ReportedDate) },
	"createdAt":    func(c contract.Contract) string { return c.CreatedAt.Format(time.RFC3339Nano) },
	"updatedAt":    func(c contract.Contract) string { return c.UpdatedAt.Format(time.RFC3339Nano) },
}

func validSortField(field string) bool {
	_, ok := sortFields[field]
	return ok
}

func sortRecords(items []contract.Contract, s Sort) {
	key := sortFields[s.Field]

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		ka, kb := key(a), key(b)
		if ka != kb {
			if s.Desc {
				return ka > kb
			}
			return ka < kb
		}
		// Stable tiebreak keeps pages consistent across calls.
		return a.ID < b.ID
	})
}
