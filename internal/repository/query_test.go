package repository

import (
	"context"
	"testing"

	"github.com/contractreg/contractreg/internal/contract"
)

// seedRepo fills a repository with a small, varied collection.
func seedRepo(t *testing.T) *Repository {
	t.Helper()
	repo := newTestRepo(t)

	seed := []contract.Contract{
		{BusinessID: "C-300", Title: strPtr("Wartung Lüftung"), Location: strPtr("Berlin"),
			Status: contract.StatusCreated, PlannedStart: strPtr("2025-03-10")},
		{BusinessID: "C-100", Title: strPtr("Inspektion Dach"), Location: strPtr("Hamburg"),
			Status: contract.StatusInProgress, PlannedStart: strPtr("2025-01-15")},
		{BusinessID: "C-200", Title: strPtr("Austausch Filter"), Location: strPtr("Berlin"),
			Status: contract.StatusCompleted, PlannedStart: strPtr("2025-06-01"), IsComplete: true},
		{BusinessID: "C-400", Title: strPtr("Prüfung Aufzug"), Location: strPtr("München"),
			Status: contract.StatusCreated},
	}
	for i := range seed {
		seed[i].Source = contract.Provenance{SheetName: "Anlagen"}
		if _, err := repo.Add(context.Background(), seed[i]); err != nil {
			t.Fatalf("seed %s: %v", seed[i].BusinessID, err)
		}
	}
	return repo
}

func TestGetFiltered(t *testing.T) {
	repo := seedRepo(t)

	tests := []struct {
		name   string
		filter Filter
		want   []string // business IDs in insertion order
	}{
		{"no filter", Filter{}, []string{"C-300", "C-100", "C-200", "C-400"}},
		{"by status", Filter{Status: contract.StatusCreated}, []string{"C-300", "C-400"}},
		{"by location partial", Filter{Location: "berl"}, []string{"C-300", "C-200"}},
		{"by title partial", Filter{Title: "dach"}, []string{"C-100"}},
		{"by business id", Filter{BusinessID: "c-2"}, []string{"C-200"}},
		{"planned range", Filter{PlannedFrom: "2025-02-01", PlannedTo: "2025-12-31"}, []string{"C-300", "C-200"}},
		{"planned from only", Filter{PlannedFrom: "2025-06-01"}, []string{"C-200"}},
		{"free text", Filter{Search: "lüftung"}, []string{"C-300"}},
		{"free text status", Filter{Search: "in_progress"}, []string{"C-100"}},
		{"no match", Filter{Search: "nicht vorhanden"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repo.GetFiltered(tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d records, want %d", len(got), len(tt.want))
			}
			for i, want := range tt.want {
				if got[i].BusinessID != want {
					t.Errorf("record %d: got %s, want %s", i, got[i].BusinessID, want)
				}
			}
		})
	}
}

func TestGetPaginatedSorting(t *testing.T) {
	repo := seedRepo(t)

	page, err := repo.GetPaginated(PageQuery{Sort: &Sort{Field: "businessId"}})
	if err != nil {
		t.Fatalf("GetPaginated: %v", err)
	}

	want := []string{"C-100", "C-200", "C-300", "C-400"}
	for i, id := range want {
		if page.Items[i].BusinessID != id {
			t.Errorf("position %d: got %s, want %s", i, page.Items[i].BusinessID, id)
		}
	}

	desc, err := repo.GetPaginated(PageQuery{Sort: &Sort{Field: "businessId", Desc: true}})
	if err != nil {
		t.Fatalf("GetPaginated desc: %v", err)
	}
	if desc.Items[0].BusinessID != "C-400" {
		t.Errorf("desc first = %s, want C-400", desc.Items[0].BusinessID)
	}
}

func TestGetPaginatedUnknownSortField(t *testing.T) {
	repo := seedRepo(t)
	if _, err := repo.GetPaginated(PageQuery{Sort: &Sort{Field: "bogus"}}); err == nil {
		t.Fatal("expected error for unknown sort field")
	}
}

func TestGetPaginatedSlicing(t *testing.T) {
	repo := seedRepo(t)

	first, err := repo.GetPaginated(PageQuery{Page: 1, PageSize: 3, Sort: &Sort{Field: "businessId"}})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	second, err := repo.GetPaginated(PageQuery{Page: 2, PageSize: 3, Sort: &Sort{Field: "businessId"}})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}

	if first.TotalItems != 4 || first.TotalPages != 2 {
		t.Errorf("totals = %d items %d pages, want 4/2", first.TotalItems, first.TotalPages)
	}
	if len(first.Items) != 3 || len(second.Items) != 1 {
		t.Fatalf("page sizes = %d/%d, want 3/1", len(first.Items), len(second.Items))
	}

	// No overlap, no gap across the page boundary.
	seen := map[string]bool{}
	for _, c := range append(first.Items, second.Items...) {
		if seen[c.BusinessID] {
			t.Errorf("record %s appears on both pages", c.BusinessID)
		}
		seen[c.BusinessID] = true
	}
	if len(seen) != 4 {
		t.Errorf("pages cover %d records, want 4", len(seen))
	}
}

func TestGetPaginatedClampsInputs(t *testing.T) {
	repo := seedRepo(t)

	page, err := repo.GetPaginated(PageQuery{Page: -5, PageSize: 0})
	if err != nil {
		t.Fatalf("GetPaginated: %v", err)
	}
	if page.Page != 1 {
		t.Errorf("page = %d, want 1", page.Page)
	}
	if page.PageSize != DefaultPageSize {
		t.Errorf("pageSize = %d, want %d", page.PageSize, DefaultPageSize)
	}

	huge, err := repo.GetPaginated(PageQuery{PageSize: MaxPageSize + 1})
	if err != nil {
		t.Fatalf("GetPaginated: %v", err)
	}
	if huge.PageSize != MaxPageSize {
		t.Errorf("pageSize = %d, want %d", huge.PageSize, MaxPageSize)
	}
}

func TestGetPaginatedBeyondLastPage(t *testing.T) {
	repo := seedRepo(t)

	page, err := repo.GetPaginated(PageQuery{Page: 99, PageSize: 10})
	if err != nil {
		t.Fatalf("GetPaginated: %v", err)
	}
	if len(page.Items) != 0 {
		t.Errorf("got %d items beyond the last page, want 0", len(page.Items))
	}
	if page.TotalItems != 4 {
		t.Errorf("totalItems = %d, want 4", page.TotalItems)
	}
}

func TestGetPaginatedEmptyCollection(t *testing.T) {
	repo := newTestRepo(t)

	page, err := repo.GetPaginated(PageQuery{})
	if err != nil {
		t.Fatalf("GetPaginated: %v", err)
	}
	if page.TotalItems != 0 || page.TotalPages != 1 {
		t.Errorf("empty collection: %d items, %d pages, want 0/1", page.TotalItems, page.TotalPages)
	}
}

func TestGetStatistics(t *testing.T) {
	repo := seedRepo(t)

	stats := repo.GetStatistics()
	if stats.Total != 4 {
		t.Errorf("total = %d, want 4", stats.Total)
	}
	if stats.ByStatus["created"] != 2 {
		t.Errorf("byStatus[created] = %d, want 2", stats.ByStatus["created"])
	}
	if stats.ByStatus["in_progress"] != 1 || stats.ByStatus["completed"] != 1 {
		t.Errorf("byStatus = %v", stats.ByStatus)
	}
	if stats.ByLocation["Berlin"] != 2 {
		t.Errorf("byLocation[Berlin] = %d, want 2", stats.ByLocation["Berlin"])
	}
	if stats.FirstImportedAt == nil || stats.LastImportedAt == nil {
		t.Fatal("import span not populated")
	}
	if stats.FirstImportedAt.After(*stats.LastImportedAt) {
		t.Error("firstImportedAt is after lastImportedAt")
	}
}

func TestGetStatisticsEmpty(t *testing.T) {
	repo := newTestRepo(t)

	stats := repo.GetStatistics()
	if stats.Total != 0 {
		t.Errorf("total = %d, want 0", stats.Total)
	}
	if stats.FirstImportedAt != nil || stats.LastImportedAt != nil {
		t.Error("import span should be nil for an empty collection")
	}
}

func TestSortStableTiebreak(t *testing.T) {
	repo := newTestRepo(t)

	// Same title on every record forces the ID tiebreak.
	for _, id := range []string{"C-1", "C-2", "C-3"} {
		c := validContract(id)
		c.Title = strPtr("Gleich")
		if _, err := repo.Add(context.Background(), c); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	q := PageQuery{Sort: &Sort{Field: "title"}}
	first, err := repo.GetPaginated(q)
	if err != nil {
		t.Fatalf("GetPaginated: %v", err)
	}
	second, err := repo.GetPaginated(q)
	if err != nil {
		t.Fatalf("GetPaginated: %v", err)
	}

	for i := range first.Items {
		if first.Items[i].ID != second.Items[i].ID {
			t.Fatalf("order differs between identical queries at position %d", i)
		}
	}
}
