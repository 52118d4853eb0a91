package contract

import "testing"

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw       string
		want      Status
		wantMatch bool
	}{
		{"created", StatusCreated, true},
		{"angelegt", StatusCreated, true},
		{"offen", StatusCreated, true},
		{"NEU", StatusCreated, true},
		{"in_progress", StatusInProgress, true},
		{"In Bearbeitung", StatusInProgress, true},
		{"  laufend  ", StatusInProgress, true},
		{"completed", StatusCompleted, true},
		{"abgeschlossen", StatusCompleted, true},
		{"Erledigt", StatusCompleted, true},
		{"DONE", StatusCompleted, true},

		// Unmatched text comes back verbatim (trimmed) for the caller to decide.
		{"storniert", Status("storniert"), false},
		{" Storniert ", Status("Storniert"), false},
		{"", Status(""), false},
		{"   ", Status(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, match := NormalizeStatus(tt.raw)
			if got != tt.want || match != tt.wantMatch {
				t.Errorf("NormalizeStatus(%q) = (%q, %v), want (%q, %v)",
					tt.raw, got, match, tt.want, tt.wantMatch)
			}
		})
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusCreated, StatusInProgress, StatusCompleted} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []Status{"", "open", "Completed", "storniert"} {
		if s.Valid() {
			t.Errorf("%q should not be valid", s)
		}
	}
}
