// Package config translates CLI flags into the component configurations the
// evaluation pipeline consumes.
package config

import (
	"finance-cycle-engine/internal/debtcycle"
	"finance-cycle-engine/internal/engine"
	"finance-cycle-engine/internal/reporter"
	"finance-cycle-engine/internal/snapshot"

	"github.com/shopspring/decimal"
)

// CreateLoaderConfig creates a snapshot loader configuration with the
// specified error budget.
func CreateLoaderConfig(maxErrors int, continueOnError bool) *snapshot.LoaderConfig {
	config := snapshot.DefaultLoaderConfig()

	// Apply CLI overrides
	if maxErrors > 0 {
		config.MaxErrors = maxErrors
	}
	config.ContinueOnError = continueOnError

	return config
}

// CreateEngineConfig creates an engine configuration with the specified
// cycle settlement tolerance and current-year synthesis window.
func CreateEngineConfig(settlementTolerance float64, windowMonths int, deriveNetBalances bool) *engine.Config {
	config := engine.DefaultConfig()

	cycleConfig := debtcycle.DefaultConfig()
	if settlementTolerance >= 0 {
		cycleConfig.SettlementTolerance = decimal.NewFromFloat(settlementTolerance)
	}
	if windowMonths >= 0 {
		cycleConfig.CurrentYearWindowMonths = windowMonths
	}

	config.DebtCycle = cycleConfig
	config.DeriveNetBalances = deriveNetBalances

	return config
}

// CreateReportConfig creates a report configuration for the specified output format
func CreateReportConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()

	switch format {
	case "console":
		config.Format = reporter.FormatConsole
	case "json":
		config.Format = reporter.FormatJSON
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
		// CSV is a flat cycle and split row export.
		config.IncludeCashback = false
		config.IncludeOutstanding = false
	}

	return config
}
