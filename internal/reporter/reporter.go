// Package reporter renders evaluation results for people and machines.
//
// Supported output formats:
//   - Console: human-readable sections for terminal display
//   - JSON: structured data for programmatic consumption
//   - CSV: flat cycle and split bill rows for spreadsheets
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"finance-cycle-engine/internal/engine"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	IncludeCycles      bool `json:"include_cycles"`
	IncludeOutstanding bool `json:"include_outstanding"`
	IncludeBalances    bool `json:"include_balances"`
	IncludeCashback    bool `json:"include_cashback"`
	IncludeSplitGroups bool `json:"include_split_groups"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:             FormatConsole,
		IncludeCycles:      true,
		IncludeOutstanding: true,
		IncludeBalances:    true,
		IncludeCashback:    true,
		IncludeSplitGroups: true,
		CSVDelimiter:       ',',
		CSVHeaders:         true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	return nil
}

// ReportGenerator renders evaluation results in the configured format
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{config: config}, nil
}

// GenerateReport writes the result to the provided writer in the configured
// format.
func (rg *ReportGenerator) GenerateReport(result *engine.Result, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("evaluation result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(result, writer)
	case FormatJSON:
		return rg.generateJSONReport(result, writer)
	case FormatCSV:
		return rg.generateCSVReport(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// sortedKeys gives maps a stable render order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (rg *ReportGenerator) generateConsoleReport(result *engine.Result, writer io.Writer) error {
	fmt.Fprintf(writer, "CYCLE & REWARD REPORT %d\n", result.Year)
	fmt.Fprintf(writer, "Generated: %s\n\n", time.Now().Format(time.RFC3339))

	if rg.config.IncludeCycles && len(result.CyclesByPerson) > 0 {
		fmt.Fprintf(writer, "=== DEBT CYCLES ===\n")
		for _, personID := range sortedKeys(result.CyclesByPerson) {
			fmt.Fprintf(writer, "Person %s:\n", personID)
			for _, cycle := range result.CyclesByPerson[personID] {
				state := "open"
				if cycle.IsSettled() {
					state = "settled"
				} else if !cycle.HasActivity() {
					state = "empty"
				}
				fmt.Fprintf(writer, "  %-10s lend %15s  repay %15s  remains %15s  [%s]\n",
					cycle.Tag,
					cycle.Lend.StringFixed(0),
					cycle.Repay.StringFixed(0),
					cycle.RemainsAmount().StringFixed(0),
					state)
			}
		}
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeOutstanding && len(result.OutstandingByPerson) > 0 {
		fmt.Fprintf(writer, "=== OUTSTANDING FROM EARLIER YEARS ===\n")
		for _, personID := range sortedKeys(result.OutstandingByPerson) {
			for _, cycle := range result.OutstandingByPerson[personID] {
				fmt.Fprintf(writer, "  %s %s: %s outstanding\n",
					personID, cycle.Tag, cycle.RemainsAmount().StringFixed(0))
			}
		}
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeBalances && len(result.Balances) > 0 {
		fmt.Fprintf(writer, "=== ACCOUNT BALANCES ===\n")
		for _, accountID := range sortedKeys(result.Balances) {
			view := result.Balances[accountID]
			shared := ""
			if view.SharedLimit {
				shared = " (shared limit)"
			}
			fmt.Fprintf(writer, "  %-15s balance %15s  limit %15s  utilization %6s%%%s\n",
				accountID,
				view.Balance.StringFixed(0),
				view.Limit.StringFixed(0),
				view.UtilizationPercent.StringFixed(1),
				shared)
		}
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeCashback && len(result.CashbackByAccount) > 0 {
		fmt.Fprintf(writer, "=== CASHBACK ===\n")
		for _, accountID := range sortedKeys(result.CashbackByAccount) {
			summary := result.CashbackByAccount[accountID]
			fmt.Fprintf(writer, "  %-15s realized %15s  entitled %15s\n",
				accountID,
				summary.Realized.StringFixed(0),
				summary.Entitled.StringFixed(0))
		}
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeSplitGroups && len(result.SplitGroups) > 0 {
		fmt.Fprintf(writer, "=== SPLIT BILLS ===\n")
		for _, grp := range result.SplitGroups {
			base := "no base"
			if grp.HasBase() {
				base = "base " + grp.Base.ID
			}
			fmt.Fprintf(writer, "  [%s] %s - %s (%d participants, total %s, %s)\n",
				grp.Prefix, grp.GroupName, grp.Title,
				len(grp.Participants), grp.Total().StringFixed(0), base)
		}
	}

	return nil
}

func (rg *ReportGenerator) generateJSONReport(result *engine.Result, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rg.filterResultForOutput(result))
}

// generateCSVReport flattens cycles and split participants into rows.
func (rg *ReportGenerator) generateCSVReport(result *engine.Result, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		headers := []string{
			"Row_Type",
			"Person_Or_Account",
			"Tag_Or_Group",
			"Lend_Or_Amount",
			"Repay",
			"Remains_Or_Balance",
			"Settled_Or_Shared",
		}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	if rg.config.IncludeCycles {
		for _, personID := range sortedKeys(result.CyclesByPerson) {
			for _, cycle := range result.CyclesByPerson[personID] {
				record := []string{
					"cycle",
					personID,
					cycle.Tag,
					cycle.Lend.String(),
					cycle.Repay.String(),
					cycle.RemainsAmount().String(),
					fmt.Sprintf("%t", cycle.IsSettled()),
				}
				if err := csvWriter.Write(record); err != nil {
					return fmt.Errorf("failed to write cycle record: %w", err)
				}
			}
		}
	}

	if rg.config.IncludeBalances {
		for _, accountID := range sortedKeys(result.Balances) {
			view := result.Balances[accountID]
			record := []string{
				"balance",
				accountID,
				"",
				view.Limit.String(),
				"",
				view.Balance.String(),
				fmt.Sprintf("%t", view.SharedLimit),
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write balance record: %w", err)
			}
		}
	}

	if rg.config.IncludeSplitGroups {
		for _, grp := range result.SplitGroups {
			for _, p := range grp.Participants {
				record := []string{
					"split_participant",
					p.PersonID,
					grp.GroupName + " - " + grp.Title,
					p.Amount.String(),
					"",
					"",
					"",
				}
				if err := csvWriter.Write(record); err != nil {
					return fmt.Errorf("failed to write split record: %w", err)
				}
			}
		}
	}

	return nil
}

func (rg *ReportGenerator) filterResultForOutput(result *engine.Result) map[string]interface{} {
	output := map[string]interface{}{
		"year": result.Year,
	}

	if rg.config.IncludeCycles && result.CyclesByPerson != nil {
		output["cycles_by_person"] = result.CyclesByPerson
	}
	if rg.config.IncludeOutstanding && result.OutstandingByPerson != nil {
		output["outstanding_by_person"] = result.OutstandingByPerson
	}
	if rg.config.IncludeBalances && result.Balances != nil {
		output["balances"] = result.Balances
		output["families"] = result.Families
	}
	if rg.config.IncludeCashback && result.CashbackByAccount != nil {
		output["cashback_by_account"] = result.CashbackByAccount
	}
	if rg.config.IncludeSplitGroups && result.SplitGroups != nil {
		output["split_groups"] = result.SplitGroups
	}

	return output
}

// UpdateConfiguration updates the report generator configuration
func (rg *ReportGenerator) UpdateConfiguration(config *ReportConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid report configuration: %w", err)
	}

	rg.config = config
	return nil
}

// GetConfiguration returns the current configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config
}
