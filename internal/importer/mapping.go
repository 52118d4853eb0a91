package importer

import (
	"fmt"
	"sort"
	"strings"
)

// Confidence tiers for header matches. Exact beats prefix beats substring;
// anything below substring is no match.
const (
	confidenceExact   = 1.0
	confidencePrefix  = 0.8
	confidencePartial = 0.6
)

// Quality bucket thresholds on the average confidence.
const (
	qualityHighThreshold   = 0.8
	qualityMediumThreshold = 0.5
)

// SuggestMapping matches the discovered columns of one sheet against the
// logical field table and returns the best single-column assignment per
// field. The mapping is advisory: missing required fields and unmapped
// columns are reported for a reviewer, but nothing here blocks an import.
func (s *Session) SuggestMapping(sheetName string) (*Mapping, error) {
	sheet, ok := s.Sheet(sheetName)
	if !ok {
		return nil, fmt.Errorf("unknown sheet: %s", sheetName)
	}

	type candidate struct {
		specIdx    int
		column     Column
		confidence float64
	}

	var candidates []candidate
	for si, spec := range fieldSpecs {
		for _, col := range sheet.Columns {
			if c := headerConfidence(col.Header, spec.Patterns); c > 0 {
				candidates = append(candidates, candidate{specIdx: si, column: col, confidence: c})
			}
		}
	}

	// Strongest matches claim their column first. Ties resolve by field
	// table order, then column position, so suggestions are deterministic.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].confidence != candidates[j].confidence {
			return candidates[i].confidence > candidates[j].confidence
		}
		if candidates[i].specIdx != candidates[j].specIdx {
			return candidates[i].specIdx < candidates[j].specIdx
		}
		return candidates[i].column.Index < candidates[j].column.Index
	})

	m := &Mapping{
		SheetName: sheetName,
		Fields:    make(map[Field]FieldMapping, len(fieldSpecs)),
	}

	usedColumns := make(map[int]bool)
	for _, c := range candidates {
		spec := fieldSpecs[c.specIdx]
		if _, taken := m.Fields[spec.Field]; taken {
			continue
		}
		if usedColumns[c.column.Index] {
			continue
		}
		m.Fields[spec.Field] = FieldMapping{
			Field:        spec.Field,
			SourceColumn: c.column.Letter,
			ColumnIndex:  c.column.Index,
			Header:       c.column.Header,
			Confidence:   c.confidence,
			Type:         c.column.Type,
		}
		usedColumns[c.column.Index] = true
	}

	// Flag assignments a reviewer should look at: another column that
	// matched the field just as well, or a match at the weakest tier.
	for _, spec := range fieldSpecs {
		fm, ok := m.Fields[spec.Field]
		if !ok {
			continue
		}
		var rivals []string
		for _, c := range candidates {
			if fieldSpecs[c.specIdx].Field != spec.Field || c.column.Index == fm.ColumnIndex {
				continue
			}
			if c.confidence == fm.Confidence {
				rivals = append(rivals, c.column.Letter)
			}
		}
		switch {
		case len(rivals) > 0:
			m.Warnings = append(m.Warnings, MappingWarning{
				Field: spec.Field,
				Message: fmt.Sprintf("columns %s and %s match %s equally well; column %s was chosen",
					fm.SourceColumn, strings.Join(rivals, ", "), spec.Field, fm.SourceColumn),
			})
		case fm.Confidence <= confidencePartial:
			m.Warnings = append(m.Warnings, MappingWarning{
				Field:   spec.Field,
				Message: fmt.Sprintf("header %q is only a partial match for %s", fm.Header, spec.Field),
			})
		}
	}

	m.recompute(sheet)
	return m, nil
}

// Clone returns a deep copy of the mapping, so overrides can be staged and
// validated without touching the original.
func (m *Mapping) Clone() *Mapping {
	out := *m
	out.Fields = make(map[Field]FieldMapping, len(m.Fields))
	for k, v := range m.Fields {
		out.Fields[k] = v
	}
	out.MissingRequired = append([]Field(nil), m.MissingRequired...)
	out.UnmappedColumns = append([]Column(nil), m.UnmappedColumns...)
	out.Warnings = append([]MappingWarning(nil), m.Warnings...)
	return &out
}

// ApplyOverrides replaces mapping assignments with reviewer-chosen column
// letters. Every letter must exist on the mapped sheet; an empty letter
// clears the field's assignment.
func (s *Session) ApplyOverrides(m *Mapping, overrides map[Field]string) error {
	sheet, ok := s.Sheet(m.SheetName)
	if !ok {
		return fmt.Errorf("unknown sheet: %s", m.SheetName)
	}

	for field, letter := range overrides {
		if !knownField(field) {
			return fmt.Errorf("unknown logical field: %s", field)
		}

		letter = strings.ToUpper(strings.TrimSpace(letter))
		if letter == "" {
			delete(m.Fields, field)
			continue
		}

		col, ok := columnByLetter(sheet, letter)
		if !ok {
			return fmt.Errorf("column %s does not exist on sheet %s", letter, m.SheetName)
		}

		m.Fields[field] = FieldMapping{
			Field:        field,
			SourceColumn: col.Letter,
			ColumnIndex:  col.Index,
			Header:       col.Header,
			Confidence:   confidenceExact, // human choice is authoritative
			Type:         col.Type,
		}
	}

	// An explicit choice resolves the field's ambiguity.
	if len(m.Warnings) > 0 {
		kept := m.Warnings[:0]
		for _, w := range m.Warnings {
			if _, overridden := overrides[w.Field]; !overridden {
				kept = append(kept, w)
			}
		}
		m.Warnings = kept
	}

	m.recompute(sheet)
	return nil
}

// recompute refreshes the mapping aggregates: average confidence, quality
// bucket, missing required fields and columns no field claimed.
func (m *Mapping) recompute(sheet Sheet) {
	sum := 0.0
	for _, fm := range m.Fields {
		sum += fm.Confidence
	}
	if len(m.Fields) > 0 {
		m.AverageConfidence = sum / float64(len(m.Fields))
	} else {
		m.AverageConfidence = 0
	}

	switch {
	case len(m.Fields) > 0 && m.AverageConfidence >= qualityHighThreshold:
		m.Quality = "high"
	case len(m.Fields) > 0 && m.AverageConfidence >= qualityMediumThreshold:
		m.Quality = "medium"
	default:
		m.Quality = "low"
	}

	m.MissingRequired = nil
	for _, spec := range fieldSpecs {
		if !spec.Required {
			continue
		}
		if _, ok := m.Fields[spec.Field]; !ok {
			m.MissingRequired = append(m.MissingRequired, spec.Field)
		}
	}

	claimed := make(map[int]bool, len(m.Fields))
	for _, fm := range m.Fields {
		claimed[fm.ColumnIndex] = true
	}
	m.UnmappedColumns = nil
	for _, col := range sheet.Columns {
		if !claimed[col.Index] {
			m.UnmappedColumns = append(m.UnmappedColumns, col)
		}
	}
}

// headerConfidence scores a header against a field's pattern list and
// returns the strongest tier reached.
func headerConfidence(header string, patterns []string) float64 {
	h := strings.ToLower(strings.TrimSpace(header))
	if h == "" {
		return 0
	}

	best := 0.0
	for _, p := range patterns {
		var c float64
		switch {
		case h == p:
			c = confidenceExact
		case strings.HasPrefix(h, p):
			c = confidencePrefix
		case strings.Contains(h, p):
			c = confidencePartial
		}
		if c > best {
			best = c
		}
	}
	return best
}

func columnByLetter(sheet Sheet, letter string) (Column, bool) {
	for _, col := range sheet.Columns {
		if col.Letter == letter {
			return col, true
		}
	}
	return Column{}, false
}

func knownField(f Field) bool {
	for _, spec := range fieldSpecs {
		if spec.Field == f {
			return true
		}
	}
	return false
}
