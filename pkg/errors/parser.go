package errors

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RecordContext provides context information for snapshot record parsing
type RecordContext struct {
	File     string `json:"file"`
	RecordID string `json:"record_id"`
	Field    string `json:"field,omitempty"`
	Value    string `json:"value,omitempty"`
	Expected string `json:"expected,omitempty"`
	Index    int    `json:"index,omitempty"`
}

// RecordParseError extends the base parse error with record context and
// recoverability. A recoverable error skips the record; the rest of the
// snapshot still loads.
type RecordParseError struct {
	*EngineError
	Context     *RecordContext `json:"context"`
	Recoverable bool           `json:"recoverable"`
	Examples    []string       `json:"examples,omitempty"`
}

// Error implements the error interface with location formatting
func (e *RecordParseError) Error() string {
	var parts []string

	parts = append(parts, e.EngineError.Error())

	if e.Context != nil {
		location := fmt.Sprintf("at %s", filepath.Base(e.Context.File))
		if e.Context.RecordID != "" {
			location += fmt.Sprintf(" record '%s'", e.Context.RecordID)
		}
		if e.Context.Field != "" {
			location += fmt.Sprintf(" field '%s'", e.Context.Field)
		}
		parts = append(parts, location)
	}

	return strings.Join(parts, " ")
}

// GetDetailedError returns a detailed multi-line error description
func (e *RecordParseError) GetDetailedError() string {
	var lines []string

	lines = append(lines, fmt.Sprintf("ERROR: %s", e.Message))

	if e.Context != nil {
		lines = append(lines, fmt.Sprintf("  → File: %s", e.Context.File))
		if e.Context.RecordID != "" {
			lines = append(lines, fmt.Sprintf("  → Record: %s", e.Context.RecordID))
		}
		if e.Context.Field != "" {
			lines = append(lines, fmt.Sprintf("  → Field: %s", e.Context.Field))
		}
		if e.Context.Value != "" {
			lines = append(lines, fmt.Sprintf("  → Value: '%s'", e.Context.Value))
		}
		if e.Context.Expected != "" {
			lines = append(lines, fmt.Sprintf("  → Expected: %s", e.Context.Expected))
		}
	}

	if e.Suggestion != "" {
		lines = append(lines, fmt.Sprintf("  → Suggestion: %s", e.Suggestion))
	}

	if len(e.Examples) > 0 {
		lines = append(lines, "  → Examples:")
		for _, example := range e.Examples {
			lines = append(lines, fmt.Sprintf("    • %s", example))
		}
	}

	return strings.Join(lines, "\n")
}

// NewRecordParseError creates a new record parse error
func NewRecordParseError(code ErrorCode, context *RecordContext, message string, cause error) *RecordParseError {
	var baseError *EngineError
	if cause != nil {
		baseError = Wrap(cause, CategoryParse, code, message)
	} else {
		baseError = New(CategoryParse, code, message)
	}

	if context != nil {
		baseError.WithContext("file", context.File).
			WithContext("record_id", context.RecordID).
			WithContext("field", context.Field).
			WithContext("value", context.Value)
	}

	return &RecordParseError{
		EngineError: baseError,
		Context:     context,
		Recoverable: true,
	}
}

// WithExamples adds example values to help fix the error
func (e *RecordParseError) WithExamples(examples ...string) *RecordParseError {
	e.Examples = examples
	return e
}

// WithSuggestion adds a suggestion and returns the RecordParseError
func (e *RecordParseError) WithSuggestion(suggestion string) *RecordParseError {
	e.EngineError.WithSuggestion(suggestion)
	return e
}

// WithRecoverable sets whether this error is recoverable
func (e *RecordParseError) WithRecoverable(recoverable bool) *RecordParseError {
	e.Recoverable = recoverable
	return e
}

// Common record parse error constructors

// InvalidAmountRecordError creates an error for an unparseable amount
func InvalidAmountRecordError(file, recordID, field, value string) *RecordParseError {
	context := &RecordContext{
		File:     file,
		RecordID: recordID,
		Field:    field,
		Value:    value,
		Expected: "decimal number",
	}

	return NewRecordParseError(CodeInvalidAmount, context, "invalid amount format", nil).
		WithExamples("125000", "12500.50", "-8619199").
		WithSuggestion("Remove currency symbols and use decimal format")
}

// InvalidTimestampRecordError creates an error for an unparseable timestamp
func InvalidTimestampRecordError(file, recordID, field, value string) *RecordParseError {
	context := &RecordContext{
		File:     file,
		RecordID: recordID,
		Field:    field,
		Value:    value,
		Expected: "RFC 3339 timestamp",
	}

	return NewRecordParseError(CodeInvalidFormat, context, "invalid timestamp format", nil).
		WithExamples("2026-08-15T12:00:00Z", "2025-11-03T08:30:00+07:00").
		WithSuggestion("Use RFC 3339 timestamps in the export")
}

// InvalidMetadataRecordError creates an error for an unreadable metadata bag
func InvalidMetadataRecordError(file, recordID string, cause error) *RecordParseError {
	context := &RecordContext{
		File:     file,
		RecordID: recordID,
		Field:    "metadata",
		Expected: "JSON object",
	}

	return NewRecordParseError(CodeBadMetadata, context, "unreadable metadata", cause).
		WithSuggestion("Metadata must be a JSON object; re-export the record")
}

// MissingIDRecordError creates an error for a record without an id. These
// records cannot be referenced and are never recoverable by skipping.
func MissingIDRecordError(file string, index int) *RecordParseError {
	context := &RecordContext{
		File:     file,
		Index:    index,
		Expected: "non-empty id",
	}

	err := NewRecordParseError(CodeMissingField, context, "record has no id", nil).
		WithSuggestion("Every exported record must carry a stable id")
	err.Recoverable = false
	return err
}

// RecordErrorCollector collects multiple parse errors during snapshot loading
type RecordErrorCollector struct {
	errors          []*RecordParseError
	maxErrors       int
	continueOnError bool
}

// NewRecordErrorCollector creates a new error collector
func NewRecordErrorCollector(maxErrors int, continueOnError bool) *RecordErrorCollector {
	return &RecordErrorCollector{
		errors:          make([]*RecordParseError, 0),
		maxErrors:       maxErrors,
		continueOnError: continueOnError,
	}
}

// Add adds an error to the collector and reports whether loading may continue
func (c *RecordErrorCollector) Add(err *RecordParseError) bool {
	if err == nil {
		return true
	}

	c.errors = append(c.errors, err)

	if len(c.errors) >= c.maxErrors {
		return false
	}

	return c.continueOnError || err.Recoverable
}

// HasErrors returns true if any errors have been collected
func (c *RecordErrorCollector) HasErrors() bool {
	return len(c.errors) > 0
}

// GetErrors returns all collected errors
func (c *RecordErrorCollector) GetErrors() []*RecordParseError {
	return c.errors
}

// GetEngineErrors converts all errors to base EngineError type
func (c *RecordErrorCollector) GetEngineErrors() []*EngineError {
	result := make([]*EngineError, len(c.errors))
	for i, err := range c.errors {
		result[i] = err.EngineError
	}
	return result
}

// GetSummary returns an error summary for all collected errors
func (c *RecordErrorCollector) GetSummary() *ErrorSummary {
	return NewErrorSummary(c.GetEngineErrors())
}

// Clear clears all collected errors
func (c *RecordErrorCollector) Clear() {
	c.errors = c.errors[:0]
}

// FormatRecordErrorsForUser formats multiple parse errors in a user-friendly way
func FormatRecordErrorsForUser(errors []*RecordParseError) string {
	if len(errors) == 0 {
		return "No parse errors"
	}

	if len(errors) == 1 {
		return errors[0].GetDetailedError()
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Found %d parse errors:", len(errors)))
	lines = append(lines, "")

	errorsByFile := make(map[string][]*RecordParseError)
	for _, err := range errors {
		file := "unknown"
		if err.Context != nil {
			file = filepath.Base(err.Context.File)
		}
		errorsByFile[file] = append(errorsByFile[file], err)
	}

	for file, fileErrors := range errorsByFile {
		lines = append(lines, fmt.Sprintf("File: %s (%d errors)", file, len(fileErrors)))

		// Show first few errors in detail, summarize the rest
		maxDetailedErrors := 3
		for i, err := range fileErrors {
			if i < maxDetailedErrors {
				lines = append(lines, "")
				lines = append(lines, err.GetDetailedError())
			} else if i == maxDetailedErrors {
				remaining := len(fileErrors) - maxDetailedErrors
				lines = append(lines, "")
				lines = append(lines, fmt.Sprintf("... and %d more errors in this file", remaining))
				break
			}
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
