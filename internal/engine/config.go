// Package engine orchestrates one full evaluation pass over a snapshot:
// debt cycles per person, family balances, cashback summaries per account,
// and split bill groups, all derived from the same immutable inputs.
//
// Evaluation is pure and deterministic. Running the same snapshot through
// the engine twice yields identical results; the engine never mutates the
// snapshot records.
package engine

import (
	"finance-cycle-engine/internal/debtcycle"
	"finance-cycle-engine/pkg/errors"
)

// Config controls one evaluation pass.
type Config struct {
	// DebtCycle configures cycle aggregation (settlement tolerance, current
	// year synthesis window, clock).
	DebtCycle *debtcycle.Config

	// DeriveNetBalances applies transaction-derived balance deltas on top of
	// the snapshot balances before resolving family balances. Off when the
	// export already carries live balances.
	DeriveNetBalances bool
}

// DefaultConfig returns the evaluation defaults used in production.
func DefaultConfig() *Config {
	return &Config{
		DebtCycle:         debtcycle.DefaultConfig(),
		DeriveNetBalances: false,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.DebtCycle == nil {
		return errors.ConfigurationError(errors.CodeMissingConfig, "debt_cycle", nil, nil)
	}
	if err := c.DebtCycle.Validate(); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "debt_cycle", c.DebtCycle, err)
	}
	return nil
}

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	return &Config{
		DebtCycle:         c.DebtCycle.Clone(),
		DeriveNetBalances: c.DeriveNetBalances,
	}
}
