package contract

import (
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		contract   Contract
		wantFields []string
	}{
		{
			name: "valid record",
			contract: Contract{
				BusinessID: "C-100",
				Title:      strPtr("Wartungsvertrag"),
				Status:     StatusCreated,
			},
			wantFields: nil,
		},
		{
			name: "missing business ID",
			contract: Contract{
				Title:  strPtr("Wartungsvertrag"),
				Status: StatusCreated,
			},
			wantFields: []string{"businessId"},
		},
		{
			name: "whitespace business ID",
			contract: Contract{
				BusinessID: "   ",
				Title:      strPtr("Wartungsvertrag"),
				Status:     StatusCreated,
			},
			wantFields: []string{"businessId"},
		},
		{
			name: "missing title",
			contract: Contract{
				BusinessID: "C-100",
				Status:     StatusCompleted,
			},
			wantFields: []string{"title"},
		},
		{
			name: "invalid status",
			contract: Contract{
				BusinessID: "C-100",
				Title:      strPtr("Wartungsvertrag"),
				Status:     Status("unbekannt"),
			},
			wantFields: []string{"status"},
		},
		{
			name:       "everything wrong",
			contract:   Contract{},
			wantFields: []string{"businessId", "title", "status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := tt.contract.Validate()
			if len(violations) != len(tt.wantFields) {
				t.Fatalf("got %d violations, want %d: %v", len(violations), len(tt.wantFields), violations)
			}
			for i, want := range tt.wantFields {
				if violations[i].Field != want {
					t.Errorf("violation %d: got field %q, want %q", i, violations[i].Field, want)
				}
			}
		})
	}
}

func TestOptString(t *testing.T) {
	if got := OptString(""); got != nil {
		t.Errorf("OptString(\"\") = %q, want nil", *got)
	}
	if got := OptString("   "); got != nil {
		t.Errorf("OptString(whitespace) = %q, want nil", *got)
	}
	got := OptString("  Halle 3  ")
	if got == nil || *got != "Halle 3" {
		t.Errorf("OptString did not trim: got %v", got)
	}
}

func TestStringValue(t *testing.T) {
	if got := StringValue(nil); got != "" {
		t.Errorf("StringValue(nil) = %q, want empty", got)
	}
	if got := StringValue(strPtr("x")); got != "x" {
		t.Errorf("StringValue = %q, want x", got)
	}
}

func TestSearchText(t *testing.T) {
	c := Contract{
		BusinessID: "C-100",
		Title:      strPtr("Wartungsvertrag Halle"),
		Location:   strPtr("Berlin"),
		Status:     StatusInProgress,
	}

	text := c.SearchText()
	for _, want := range []string{"c-100", "wartungsvertrag", "berlin", "in_progress"} {
		if !strings.Contains(text, want) {
			t.Errorf("SearchText missing %q: %q", want, text)
		}
	}
	if text != strings.ToLower(text) {
		t.Errorf("SearchText is not lowercased: %q", text)
	}
}
