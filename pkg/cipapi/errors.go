package cipapi

import (
	"errors"
	"fmt"

	"github.com/cipapi-client/pkg/reports"
	"github.com/cipapi-client/pkg/rest"
)

// ErrPreviousData is returned when an interpretation request would overwrite an existing one
var ErrPreviousData = errors.New("case already has an interpretation request, use force to replace it")

// BlockedCaseError is returned for cases administratively blocked on the server
type BlockedCaseError struct {
	CaseID      string
	CaseVersion int
}

// Error implements the error interface
func (e *BlockedCaseError) Error() string {
	return fmt.Sprintf("case %s-%d is blocked", e.CaseID, e.CaseVersion)
}

// ProgramError is returned when a case has an unknown sample type
type ProgramError struct {
	CaseID     string
	SampleType string
}

// Error implements the error interface
func (e *ProgramError) Error() string {
	return fmt.Sprintf("case %s has unsupported sample type %q", e.CaseID, e.SampleType)
}

// ParsingError is returned when a required field is missing from a raw payload
type ParsingError struct {
	CaseID string
	Field  string
	Err    error
}

// Error implements the error interface
func (e *ParsingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("case %s: cannot parse %s: %v", e.CaseID, e.Field, e.Err)
	}
	return fmt.Sprintf("case %s: missing %s", e.CaseID, e.Field)
}

// Unwrap returns the underlying error
func (e *ParsingError) Unwrap() error {
	return e.Err
}

// ProbandError is returned when a pedigree does not flag exactly one proband
type ProbandError struct {
	FamilyID string
	Count    int
}

// Error implements the error interface
func (e *ProbandError) Error() string {
	return fmt.Sprintf("pedigree %s has %d probands, expected exactly one", e.FamilyID, e.Count)
}

// IdentityError is returned when a server response describes a different case
type IdentityError struct {
	CaseID          string
	CaseVersion     int
	ReceivedID      string
	ReceivedVersion int
}

// Error implements the error interface
func (e *IdentityError) Error() string {
	return fmt.Sprintf("response for case %s-%d describes case %s-%d",
		e.CaseID, e.CaseVersion, e.ReceivedID, e.ReceivedVersion)
}

// IsSkippable reports whether err concerns a single case only, so that an enumeration
// over many cases can log it and carry on
func IsSkippable(err error) bool {
	var (
		blocked *BlockedCaseError
		program *ProgramError
		parsing *ParsingError
	)
	return errors.As(err, &blocked) || errors.As(err, &program) || errors.As(err, &parsing) ||
		rest.IsNotFound(err) || reports.IsMigrationError(err)
}
