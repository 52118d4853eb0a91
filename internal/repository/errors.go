package repository

import (
	"fmt"
	"strings"

	"github.com/contractreg/contractreg/internal/contract"
)

// ValidationError rejects a repository write. It carries the full list of
// violated constraints, not just the first, so callers can show everything
// at once. No mutation is applied when it is returned.
type ValidationError struct {
	Violations []contract.Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// NotFoundError is returned by update and delete when no record has the
// given ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("contract not found: %s", e.ID)
}
