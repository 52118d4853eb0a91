package importer

// convert.go provides type coercion for raw spreadsheet cell values.
//
// These functions handle the messy reality of exported register data:
//   - Dates as Excel serial numbers, ISO strings, or German DD.MM.YYYY
//   - Numbers with currency symbols, thousands separators, and comma decimals
//   - Excel formula prefixes (="value") and stray quotes
//
// All Parse* functions report failure through their boolean return instead of
// an error: unparseable input is a data-quality problem, not an exception.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// numericRegex validates a numeric string after cleanup. Matches integers,
// decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Excel stores dates as days since the epoch below (the 1900 date system
// with its leap-year quirk already folded in).
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Serial values inside this range are treated as plausible dates
// (1930-01-01 .. 2099-12-31). Values outside are plain numbers.
const (
	serialMin = 10959.0
	serialMax = 73050.0
)

// Date layouts tried in order after serial and ISO parsing. Day-first
// variants come before any ambiguity because the source registers are
// European exports.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"2.1.2006",
	"02-01-2006",
}

// ISODate is the canonical serialization for all stored dates.
const ISODate = "2006-01-02"

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, Excel formula prefixes (="..."), and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}

// ParseDate coerces a raw cell value to a canonical ISO date string.
// It tries, in order: Excel serial numbers, ISO date, ISO datetime,
// DD/MM/YYYY, DD.MM.YYYY. The first successful parse wins.
func ParseDate(s string) (string, bool) {
	s = CleanCell(s)
	if s == "" {
		return "", false
	}

	// Serial date: a bare number in the plausible date range.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f >= serialMin && f <= serialMax {
			return serialToDate(f).Format(ISODate), true
		}
		return "", false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(ISODate), true
		}
	}

	return "", false
}

// serialToDate converts an Excel serial day count to a UTC date.
// Fractional parts (time of day) are discarded.
func serialToDate(serial float64) time.Time {
	days := int(math.Floor(serial))
	return serialEpoch.AddDate(0, 0, days)
}

// ParseNumber coerces a raw cell value to a float64. It strips currency
// symbols and whitespace and accepts both decimal-point and decimal-comma
// notation; when both separators appear, the last one is the decimal mark.
func ParseNumber(s string) (float64, bool) {
	s = CleanCell(s)
	if s == "" {
		return 0, false
	}

	// Accounting negative: "(123,45)"
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, sym := range []string{"€", "$", "£", "EUR", " ", " "} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)

	s = normalizeSeparators(s)

	if !numericRegex.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		f = -f
	}
	return f, true
}

// normalizeSeparators rewrites mixed European/US separator usage into plain
// decimal-point form: "1.234,56" and "1,234.56" both become "1234.56".
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// European: dot groups thousands, comma is decimal
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// US: comma groups thousands
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	return s
}

// looksLikeDate reports whether a raw value parses as a date string
// (not via the serial path). Used by type inference.
func looksLikeDate(s string) bool {
	s = CleanCell(s)
	if s == "" {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
