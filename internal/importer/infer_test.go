package importer

import "testing"

func TestInferType(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		samples []string
		want    CellType
	}{
		// Header keywords win regardless of samples.
		{"date header german", "Meldedatum", []string{"irrelevant"}, TypeDate},
		{"date header planned", "Geplanter Beginn", nil, TypeDate},
		{"number header", "Betrag", []string{"not numeric"}, TypeNumber},
		{"number header cost", "Kosten 2025", nil, TypeNumber},

		// Serial numbers in the plausible date range.
		{"serial dates", "Spalte A", []string{"45823", "44927"}, TypeDate},
		{"serials out of range", "Spalte A", []string{"100", "200"}, TypeNumber},

		// String-encoded dates.
		{"german date strings", "Spalte B", []string{"15.06.2025", "01.01.2024"}, TypeDate},
		{"iso date strings", "Spalte B", []string{"2025-06-15"}, TypeDate},

		// Plain numbers.
		{"numbers", "Menge x", []string{"12", "7,5"}, TypeNumber},

		// Mixed or textual samples fall back to string.
		{"mixed", "Spalte C", []string{"12", "abc"}, TypeString},
		{"text", "Bezeichnung", []string{"Wartung", "Reparatur"}, TypeString},
		{"no samples no keyword", "Spalte D", nil, TypeString},
		{"empty samples", "Spalte D", []string{"", "  "}, TypeString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferType(tt.header, tt.samples); got != tt.want {
				t.Errorf("InferType(%q, %v) = %q, want %q", tt.header, tt.samples, got, tt.want)
			}
		})
	}
}
