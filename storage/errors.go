package storage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumns is returned when a source lacks one of models.RequiredColumns.
var ErrMissingColumns = errors.New("dataset is missing required columns")

// NotFoundError reports that the dataset source does not exist. It is a
// fatal startup condition: callers halt instead of running degraded.
type NotFoundError struct {
	Source string
	Err    error
}

func (e *NotFoundError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("dataset %q was not found", e.Source)
	}
	return fmt.Sprintf("dataset %q was not found: %v", e.Source, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func missingColumns(have []string, required []string) error {
	present := make(map[string]struct{}, len(have))
	for _, h := range have {
		present[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}
	var missing []string
	for _, r := range required {
		if _, ok := present[r]; !ok {
			missing = append(missing, r)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
}
