// Package snapshot loads the JSON exports the engine computes over:
// transactions, accounts, the person directory, and optional authoritative
// debt tag statuses.
//
// Loading is tolerant by design. A record with a bad amount or timestamp is
// loaded with a zero value and flagged rather than aborting the whole file;
// only structural failures (unreadable file, invalid JSON) abort.
package snapshot

import (
	"finance-cycle-engine/internal/models"
	"finance-cycle-engine/pkg/errors"
)

// Snapshot bundles one consistent view of the exported data.
type Snapshot struct {
	Transactions []*models.Transaction
	Accounts     []*models.Account
	Persons      []*models.Person
	TagStatuses  []*models.DebtTagStatus
}

// LoadStats tracks the outcome of one load pass.
type LoadStats struct {
	RecordsLoaded  int
	RecordsSkipped int
	RecordsFlagged int
	Errors         []*errors.RecordParseError
}

// AddError records a parse error against the stats.
func (s *LoadStats) AddError(err *errors.RecordParseError) {
	if err == nil {
		return
	}
	s.Errors = append(s.Errors, err)
}

// HasErrors reports whether any record failed to load cleanly.
func (s *LoadStats) HasErrors() bool {
	return len(s.Errors) > 0
}

// Merge folds another stats value into this one.
func (s *LoadStats) Merge(other *LoadStats) {
	if other == nil {
		return
	}
	s.RecordsLoaded += other.RecordsLoaded
	s.RecordsSkipped += other.RecordsSkipped
	s.RecordsFlagged += other.RecordsFlagged
	s.Errors = append(s.Errors, other.Errors...)
}

// Summary returns the error summary for the whole load.
func (s *LoadStats) Summary() *errors.ErrorSummary {
	engineErrors := make([]*errors.EngineError, len(s.Errors))
	for i, err := range s.Errors {
		engineErrors[i] = err.EngineError
	}
	return errors.NewErrorSummary(engineErrors)
}
