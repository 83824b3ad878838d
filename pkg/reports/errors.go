package reports

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError reports a shape violation at a path inside a payload
type FieldError struct {
	Path   string
	Reason string
}

// Error implements the error interface
func (e *FieldError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func fieldErrorf(path, format string, args ...interface{}) *FieldError {
	return &FieldError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// prefixPath qualifies the path of a FieldError with the enclosing field
func prefixPath(err error, prefix string) error {
	var fe *FieldError
	if err == nil || !errors.As(err, &fe) {
		return err
	}
	qualified := *fe
	switch {
	case qualified.Path == "":
		qualified.Path = prefix
	case strings.HasPrefix(qualified.Path, "["):
		qualified.Path = prefix + qualified.Path
	default:
		qualified.Path = prefix + "." + qualified.Path
	}
	return &qualified
}

// MigrationError is returned when a payload cannot be brought to the canonical schema
type MigrationError struct {
	Program     Program
	Kind        Kind
	FromVersion Version
	Step        string
	Path        string
	Reason      string
}

// Error implements the error interface
func (e *MigrationError) Error() string {
	from := string(e.FromVersion)
	if from == "" {
		from = "unknown version"
	}
	if e.Path != "" {
		return fmt.Sprintf("migration of %s %s from %s failed at %s (%s): %s", e.Program, e.Kind, from, e.Step, e.Path, e.Reason)
	}
	return fmt.Sprintf("migration of %s %s from %s failed at %s: %s", e.Program, e.Kind, from, e.Step, e.Reason)
}

// IsMigrationError reports whether err is or wraps a MigrationError
func IsMigrationError(err error) bool {
	var me *MigrationError
	return errors.As(err, &me)
}
