package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finance-cycle-engine/cmd/cyclectl/config"
	"finance-cycle-engine/internal/engine"
	"finance-cycle-engine/internal/models"
	"finance-cycle-engine/internal/reporter"
	"finance-cycle-engine/internal/snapshot"
	"finance-cycle-engine/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the report command
var (
	transactionsFile string
	accountsFile     string
	personsFile      string
	debtTagsFile     string
	reportYear       int
	personFilter     string
	outputFormat     string
	outputFile       string

	settlementTolerance float64
	windowMonths        int
	deriveNetBalances   bool

	maxErrors       int
	continueOnError bool
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Evaluate a snapshot and render the cycle and reward report",
	Long: `Report loads a snapshot export (transactions, accounts, persons, and
optionally server-side debt tag statuses), runs one evaluation pass for the
selected year, and renders the result.

This command requires:
- A transactions file (JSON array)
- An accounts file (JSON array)
- A persons file (JSON array)

Examples:
  # Report for the current year
  cyclectl report --transactions tx.json --accounts accounts.json --persons persons.json

  # A past year, with authoritative settlement statuses
  cyclectl report --transactions tx.json --accounts accounts.json --persons persons.json \
    --debt-tags statuses.json --year 2025

  # JSON output to a file
  cyclectl report --transactions tx.json --accounts accounts.json --persons persons.json \
    --output-format json --output-file report.json

  # Derive balances from transaction history instead of trusting the export
  cyclectl report --transactions tx.json --accounts accounts.json --persons persons.json \
    --derive-net-balances`,

	PreRunE: validateReportFlags,
	RunE:    runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	// Required flags
	reportCmd.Flags().StringVarP(&transactionsFile, "transactions", "t", "", "path to transactions JSON file (required)")
	reportCmd.Flags().StringVarP(&accountsFile, "accounts", "a", "", "path to accounts JSON file (required)")
	reportCmd.Flags().StringVarP(&personsFile, "persons", "p", "", "path to persons JSON file (required)")

	// Optional inputs
	reportCmd.Flags().StringVar(&debtTagsFile, "debt-tags", "", "path to debt tag status JSON file (optional)")

	// Output flags
	reportCmd.Flags().IntVarP(&reportYear, "year", "y", 0, "report year (default: current year)")
	reportCmd.Flags().StringVar(&personFilter, "person", "", "limit cycle sections to one person (ID or name)")
	reportCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	reportCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	// Evaluation configuration flags
	reportCmd.Flags().Float64Var(&settlementTolerance, "settlement-tolerance", 100, "currency-unit remainder below which a cycle counts as settled")
	reportCmd.Flags().IntVar(&windowMonths, "window-months", 5, "months before now synthesized for the current year (0-11)")
	reportCmd.Flags().BoolVar(&deriveNetBalances, "derive-net-balances", false, "recompute balances from transaction history")

	// Loader tolerance flags
	reportCmd.Flags().IntVar(&maxErrors, "max-errors", 100, "maximum malformed records tolerated while loading")
	reportCmd.Flags().BoolVar(&continueOnError, "continue-on-error", true, "keep loading past malformed records")

	// Mark required flags
	reportCmd.MarkFlagRequired("transactions")
	reportCmd.MarkFlagRequired("accounts")
	reportCmd.MarkFlagRequired("persons")

	// Bind flags to viper
	viper.BindPFlag("transactions", reportCmd.Flags().Lookup("transactions"))
	viper.BindPFlag("accounts", reportCmd.Flags().Lookup("accounts"))
	viper.BindPFlag("persons", reportCmd.Flags().Lookup("persons"))
	viper.BindPFlag("debt-tags", reportCmd.Flags().Lookup("debt-tags"))
	viper.BindPFlag("year", reportCmd.Flags().Lookup("year"))
	viper.BindPFlag("person", reportCmd.Flags().Lookup("person"))
	viper.BindPFlag("output-format", reportCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", reportCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("settlement-tolerance", reportCmd.Flags().Lookup("settlement-tolerance"))
	viper.BindPFlag("window-months", reportCmd.Flags().Lookup("window-months"))
	viper.BindPFlag("derive-net-balances", reportCmd.Flags().Lookup("derive-net-balances"))
	viper.BindPFlag("max-errors", reportCmd.Flags().Lookup("max-errors"))
	viper.BindPFlag("continue-on-error", reportCmd.Flags().Lookup("continue-on-error"))
}

func validateReportFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	transactionsFile = viper.GetString("transactions")
	accountsFile = viper.GetString("accounts")
	personsFile = viper.GetString("persons")
	debtTagsFile = viper.GetString("debt-tags")
	reportYear = viper.GetInt("year")
	personFilter = viper.GetString("person")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	settlementTolerance = viper.GetFloat64("settlement-tolerance")
	windowMonths = viper.GetInt("window-months")
	deriveNetBalances = viper.GetBool("derive-net-balances")
	maxErrors = viper.GetInt("max-errors")
	continueOnError = viper.GetBool("continue-on-error")

	// Validate required flags
	if transactionsFile == "" {
		return fmt.Errorf("transactions file is required")
	}
	if accountsFile == "" {
		return fmt.Errorf("accounts file is required")
	}
	if personsFile == "" {
		return fmt.Errorf("persons file is required")
	}

	// Validate file existence
	if err := validateFileExists(transactionsFile, "transactions file"); err != nil {
		return err
	}
	if err := validateFileExists(accountsFile, "accounts file"); err != nil {
		return err
	}
	if err := validateFileExists(personsFile, "persons file"); err != nil {
		return err
	}
	if debtTagsFile != "" {
		if err := validateFileExists(debtTagsFile, "debt tag status file"); err != nil {
			return err
		}
	}

	// Validate output format
	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	// Validate year
	if reportYear != 0 && (reportYear < 2000 || reportYear > 2099) {
		return fmt.Errorf("year must be between 2000 and 2099: %d", reportYear)
	}

	// Validate evaluation settings
	if settlementTolerance < 0 {
		return fmt.Errorf("settlement tolerance cannot be negative")
	}
	if windowMonths < 0 || windowMonths > 11 {
		return fmt.Errorf("window months must be between 0 and 11")
	}
	if maxErrors < 1 {
		return fmt.Errorf("max errors must be at least 1")
	}

	// Validate output file directory exists if specified
	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	// Check if file is readable
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	// Flags are valid past this point; runtime failures are not usage errors.
	cmd.SilenceUsage = true

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting evaluation...\n")
		fmt.Fprintf(os.Stderr, "Transactions: %s\n", transactionsFile)
		fmt.Fprintf(os.Stderr, "Accounts: %s\n", accountsFile)
		fmt.Fprintf(os.Stderr, "Persons: %s\n", personsFile)
		if debtTagsFile != "" {
			fmt.Fprintf(os.Stderr, "Debt tag statuses: %s\n", debtTagsFile)
		}
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
		if outputFile != "" {
			fmt.Fprintf(os.Stderr, "Output file: %s\n", outputFile)
		}
	}

	// Load the snapshot
	loader, err := snapshot.NewLoader(config.CreateLoaderConfig(maxErrors, continueOnError))
	if err != nil {
		return fmt.Errorf("failed to create snapshot loader: %w", err)
	}

	snap, stats, err := loader.LoadAll(transactionsFile, accountsFile, personsFile, debtTagsFile)
	if err != nil {
		return err
	}

	if viper.GetBool("verbose") && stats.HasErrors() {
		fmt.Fprintf(os.Stderr, "%s\n", stats.Summary())
	}

	// Resolve the report year
	year := reportYear
	if year == 0 {
		year = time.Now().Year()
	}

	// Evaluate
	eng, err := engine.NewEngine(config.CreateEngineConfig(settlementTolerance, windowMonths, deriveNetBalances))
	if err != nil {
		return err
	}

	result, err := eng.Evaluate(snap, year)
	if err != nil {
		return err
	}

	if personFilter != "" {
		if err := applyPersonFilter(result, snap.Persons, personFilter); err != nil {
			return err
		}
	}

	// Determine output destination
	var output *os.File
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	// Generate the report
	generator, err := reporter.NewSafeReportGenerator(config.CreateReportConfig(outputFormat), logger.GetGlobalLogger())
	if err != nil {
		return err
	}
	if err := generator.GenerateReportSafely(result, output); err != nil {
		return err
	}

	showCompletion(result, stats)

	return nil
}

// applyPersonFilter narrows the per-person sections of the result to one
// person, matched by ID first and case-insensitive name second.
func applyPersonFilter(result *engine.Result, persons []*models.Person, filter string) error {
	personID := ""
	for _, p := range persons {
		if p.ID == filter {
			personID = p.ID
			break
		}
		if strings.EqualFold(p.Name, filter) && personID == "" {
			personID = p.ID
		}
	}
	if personID == "" {
		return fmt.Errorf("person not found in snapshot: %s", filter)
	}

	for id := range result.CyclesByPerson {
		if id != personID {
			delete(result.CyclesByPerson, id)
		}
	}
	for id := range result.OutstandingByPerson {
		if id != personID {
			delete(result.OutstandingByPerson, id)
		}
	}

	return nil
}

func showCompletion(result *engine.Result, stats *snapshot.LoadStats) {
	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nEvaluation completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Loaded %d records (%d skipped, %d flagged).\n",
			stats.RecordsLoaded, stats.RecordsSkipped, stats.RecordsFlagged)
		fmt.Fprintf(os.Stderr, "Found cycles for %d persons, %d split groups, %d families.\n",
			len(result.CyclesByPerson), len(result.SplitGroups), len(result.Families))
	}
}
