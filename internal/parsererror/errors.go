// Package parsererror holds the typed errors returned by statement conversion,
// comparison and the external converter client.
package parsererror

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingTransactions means the converter response had no usable
	// "normalised" transaction list.
	ErrMissingTransactions = errors.New("missing normalised transactions")
	// ErrNoValidTransactions means every record of a statement was rejected.
	ErrNoValidTransactions = errors.New("No valid transactions found")
	// ErrStatementRequired means a comparison input was nil.
	ErrStatementRequired = errors.New("both statements are required")
	// ErrEmptyStatement means a comparison input had no transactions or categories.
	ErrEmptyStatement = errors.New("statement has no transactions or categories")
	// ErrConverterUnavailable means a PDF was given but no converter API is configured.
	ErrConverterUnavailable = errors.New("PDF converter is not configured")
	// ErrConversionPending means the converter did not finish within the poll budget.
	ErrConversionPending = errors.New("conversion still processing")
)

// RecordError describes one transaction record that could not be converted.
// Record errors are logged and the record is skipped.
type RecordError struct {
	Index int
	Field string
	Value string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: invalid %s='%s': %v", e.Index, e.Field, e.Value, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// ValidationError is a statement-level conversion failure. The whole statement is
// unusable.
type ValidationError struct {
	FilePath string
	Reason   string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.FilePath, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ComparisonError is a comparison precondition violation.
type ComparisonError struct {
	Reason string
	Err    error
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("comparison failed: %s", e.Reason)
}

func (e *ComparisonError) Unwrap() error {
	return e.Err
}

// ConversionAPIError is a non-success answer from the PDF-to-transaction API.
type ConversionAPIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ConversionAPIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("converter %s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("converter %s: unexpected status %d", e.Op, e.StatusCode)
}

// IsConverterError reports whether err comes from the external converter.
func IsConverterError(err error) bool {
	var apiErr *ConversionAPIError
	return errors.As(err, &apiErr) || errors.Is(err, ErrConversionPending)
}

// IsUserError reports whether err is caused by bad input rather than a system
// failure.
func IsUserError(err error) bool {
	var validationErr *ValidationError
	var comparisonErr *ComparisonError
	return errors.As(err, &validationErr) || errors.As(err, &comparisonErr)
}
