package config

import (
	"testing"

	"finance-cycle-engine/internal/reporter"

	"github.com/shopspring/decimal"
)

func TestCreateLoaderConfig(t *testing.T) {
	config := CreateLoaderConfig(10, false)

	if config.MaxErrors != 10 {
		t.Errorf("expected MaxErrors 10, got %d", config.MaxErrors)
	}
	if config.ContinueOnError {
		t.Error("expected ContinueOnError to be false")
	}

	if err := config.Validate(); err != nil {
		t.Errorf("loader config should be valid: %v", err)
	}

	// Non-positive max errors keeps the default budget.
	config = CreateLoaderConfig(0, true)
	if config.MaxErrors != 100 {
		t.Errorf("expected default MaxErrors 100, got %d", config.MaxErrors)
	}
}

func TestCreateEngineConfig(t *testing.T) {
	config := CreateEngineConfig(250, 3, true)

	if !config.DebtCycle.SettlementTolerance.Equal(decimal.NewFromInt(250)) {
		t.Errorf("expected settlement tolerance 250, got %s", config.DebtCycle.SettlementTolerance)
	}
	if config.DebtCycle.CurrentYearWindowMonths != 3 {
		t.Errorf("expected window of 3 months, got %d", config.DebtCycle.CurrentYearWindowMonths)
	}
	if !config.DeriveNetBalances {
		t.Error("expected DeriveNetBalances to be true")
	}

	if err := config.Validate(); err != nil {
		t.Errorf("engine config should be valid: %v", err)
	}
}

func TestCreateEngineConfigNegativeToleranceKeepsDefault(t *testing.T) {
	config := CreateEngineConfig(-1, -1, false)

	if !config.DebtCycle.SettlementTolerance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected default tolerance 100, got %s", config.DebtCycle.SettlementTolerance)
	}
	if config.DebtCycle.CurrentYearWindowMonths != 5 {
		t.Errorf("expected default window of 5 months, got %d", config.DebtCycle.CurrentYearWindowMonths)
	}
}

func TestCreateReportConfig(t *testing.T) {
	tests := []struct {
		format   string
		expected reporter.OutputFormat
	}{
		{"console", reporter.FormatConsole},
		{"json", reporter.FormatJSON},
		{"csv", reporter.FormatCSV},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			config := CreateReportConfig(tt.format)

			if config.Format != tt.expected {
				t.Errorf("expected format %s, got %s", tt.expected, config.Format)
			}
			if err := config.Validate(); err != nil {
				t.Errorf("report config should be valid: %v", err)
			}
		})
	}
}

func TestCreateReportConfigCSVNarrowsSections(t *testing.T) {
	config := CreateReportConfig("csv")

	if config.IncludeCashback {
		t.Error("CSV export should exclude cashback summaries")
	}
	if config.IncludeOutstanding {
		t.Error("CSV export should exclude outstanding cycles")
	}
	if !config.IncludeCycles || !config.IncludeSplitGroups {
		t.Error("CSV export should keep cycle and split rows")
	}
}
