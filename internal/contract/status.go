package contract

import "strings"

// Status is the processing state of a contract. The canonical codes are
// lowercase and stable across imports and exports.
type Status string

const (
	StatusCreated    Status = "created"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// statusSynonyms maps spreadsheet status text (lowercased, trimmed) to
// canonical codes. The register exports this tool ingests are mostly German,
// so German synonyms come first; English variants cover mixed-language files.
var statusSynonyms = map[string]Status{
	// created
	"created":  StatusCreated,
	"angelegt": StatusCreated,
	"erstellt": StatusCreated,
	"offen":    StatusCreated,
	"neu":      StatusCreated,
	"new":      StatusCreated,
	"open":     StatusCreated,
	"geplant":  StatusCreated,

	// in_progress
	"in_progress":    StatusInProgress,
	"in progress":    StatusInProgress,
	"in bearbeitung": StatusInProgress,
	"in arbeit":      StatusInProgress,
	"laufend":        StatusInProgress,
	"begonnen":       StatusInProgress,
	"started":        StatusInProgress,

	// completed
	"completed":     StatusCompleted,
	"complete":      StatusCompleted,
	"abgeschlossen": StatusCompleted,
	"erledigt":      StatusCompleted,
	"fertig":        StatusCompleted,
	"done":          StatusCompleted,
	"closed":        StatusCompleted,
}

// Valid reports whether s is one of the three canonical codes.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// NormalizeStatus matches raw status text case-insensitively against the
// synonym table. The second return value reports whether a match was found;
// callers decide whether unmatched text is kept (import pipeline) or
// rejected (repository writes).
func NormalizeStatus(raw string) (Status, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "", false
	}
	if s, ok := statusSynonyms[key]; ok {
		return s, true
	}
	return Status(strings.TrimSpace(raw)), false
}

// statusCodes returns the canonical codes in a fixed order for messages.
func statusCodes() []string {
	return []string{
		string(StatusCreated),
		string(StatusInProgress),
		string(StatusCompleted),
	}
}
