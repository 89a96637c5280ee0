package scope

import (
	"errors"
	"strings"
)

// ErrMissingFields is matched by every *MissingFieldsError.
var ErrMissingFields = errors.New("missing required foundation fields")

// MissingFieldsError is returned by Synthesize when foundation fields are
// absent. No partial document is produced.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "cannot synthesize scope document: missing " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingFields }
