// Package debtcycle groups a person's transactions into monthly debt cycles
// and computes lend/repay/remains per cycle, settlement state, and display
// ordering.
//
// A cycle is keyed by its normalized month tag. Remainder and settlement are
// resolved values: a server-side cycle status record, when present for the
// tag, overrides the local computation (see models.Resolved).
package debtcycle

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Config controls aggregation behavior.
type Config struct {
	// SettlementTolerance is the currency-unit tolerance below which an
	// outstanding remainder counts as settled. Distinct from the split bill
	// validation tolerance; the two must not be unified.
	SettlementTolerance decimal.Decimal

	// CurrentYearWindowMonths bounds synthesis for the current year: only
	// months from now minus this many months through now are guaranteed.
	CurrentYearWindowMonths int

	// Now supplies the current time, injectable for tests.
	Now func() time.Time
}

// DefaultConfig returns the aggregation defaults used in production.
func DefaultConfig() *Config {
	return &Config{
		SettlementTolerance:     decimal.NewFromInt(100),
		CurrentYearWindowMonths: 5,
		Now:                     time.Now,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.SettlementTolerance.IsNegative() {
		return fmt.Errorf("settlement tolerance cannot be negative: %s", c.SettlementTolerance.String())
	}
	if c.CurrentYearWindowMonths < 0 || c.CurrentYearWindowMonths > 11 {
		return fmt.Errorf("current year window must be between 0 and 11 months: %d", c.CurrentYearWindowMonths)
	}
	if c.Now == nil {
		return fmt.Errorf("now function cannot be nil")
	}
	return nil
}

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	return &Config{
		SettlementTolerance:     c.SettlementTolerance,
		CurrentYearWindowMonths: c.CurrentYearWindowMonths,
		Now:                     c.Now,
	}
}
