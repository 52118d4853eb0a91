package importer

import (
	"strconv"
	"strings"
)

// Header keywords that decide a column's type regardless of its samples.
var (
	dateHeaderKeywords = []string{
		"datum", "date", "termin", "beginn", "gemeldet", "geplant", "frist",
	}
	numberHeaderKeywords = []string{
		"betrag", "amount", "anzahl", "menge", "summe", "kosten", "preis",
	}
)

// InferType classifies a column as string, number or date from its header
// text and a bounded sample of values. Rules apply in priority order and the
// earliest match wins, so the result is deterministic:
//
//  1. Header keyword match (date or number terms)
//  2. All-numeric samples inside the date-serial range → date
//  3. Samples matching common date-string patterns → date
//  4. Numeric samples → number
//  5. Default → string
//
// An empty sample set defaults to string unless the header decides.
func InferType(header string, samples []string) CellType {
	h := strings.ToLower(strings.TrimSpace(header))

	for _, kw := range dateHeaderKeywords {
		if strings.Contains(h, kw) {
			return TypeDate
		}
	}
	for _, kw := range numberHeaderKeywords {
		if strings.Contains(h, kw) {
			return TypeNumber
		}
	}

	clean := nonEmptySamples(samples)
	if len(clean) == 0 {
		return TypeString
	}

	if allSerialDates(clean) {
		return TypeDate
	}
	if allDateStrings(clean) {
		return TypeDate
	}
	if allNumbers(clean) {
		return TypeNumber
	}

	return TypeString
}

func nonEmptySamples(samples []string) []string {
	out := make([]string, 0, len(samples))
	for _, s := range samples {
		if v := CleanCell(s); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func allSerialDates(samples []string) bool {
	for _, s := range samples {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < serialMin || f > serialMax {
			return false
		}
	}
	return true
}

func allDateStrings(samples []string) bool {
	for _, s := range samples {
		if !looksLikeDate(s) {
			return false
		}
	}
	return true
}

func allNumbers(samples []string) bool {
	for _, s := range samples {
		if _, ok := ParseNumber(s); !ok {
			return false
		}
	}
	return true
}
