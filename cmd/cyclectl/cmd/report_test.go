package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"finance-cycle-engine/internal/debtcycle"
	"finance-cycle-engine/internal/engine"
	"finance-cycle-engine/internal/models"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func TestValidateFileExists(t *testing.T) {
	// Create temporary test files
	tmpDir := t.TempDir()
	validFile := filepath.Join(tmpDir, "valid.json")
	if err := os.WriteFile(validFile, []byte("[]"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name        string
		filePath    string
		description string
		expectError bool
	}{
		{
			name:        "valid file",
			filePath:    validFile,
			description: "test file",
			expectError: false,
		},
		{
			name:        "empty path",
			filePath:    "",
			description: "test file",
			expectError: true,
		},
		{
			name:        "non-existent file",
			filePath:    "/non/existent/file.json",
			description: "test file",
			expectError: true,
		},
		{
			name:        "directory instead of file",
			filePath:    tmpDir,
			description: "test file",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFileExists(tt.filePath, tt.description)

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateReportFlags(t *testing.T) {
	// Create temporary snapshot files
	tmpDir := t.TempDir()
	txFile := filepath.Join(tmpDir, "transactions.json")
	accFile := filepath.Join(tmpDir, "accounts.json")
	personFile := filepath.Join(tmpDir, "persons.json")

	for _, path := range []string{txFile, accFile, personFile} {
		if err := os.WriteFile(path, []byte("[]"), 0644); err != nil {
			t.Fatalf("failed to create snapshot file: %v", err)
		}
	}

	setValid := func() {
		viper.Set("transactions", txFile)
		viper.Set("accounts", accFile)
		viper.Set("persons", personFile)
		viper.Set("output-format", "console")
		viper.Set("max-errors", 100)
	}

	tests := []struct {
		name          string
		setupFlags    func()
		expectError   bool
		errorContains string
	}{
		{
			name:        "valid flags",
			setupFlags:  setValid,
			expectError: false,
		},
		{
			name: "missing transactions file",
			setupFlags: func() {
				setValid()
				viper.Set("transactions", "")
			},
			expectError:   true,
			errorContains: "transactions file is required",
		},
		{
			name: "missing persons file",
			setupFlags: func() {
				setValid()
				viper.Set("persons", "")
			},
			expectError:   true,
			errorContains: "persons file is required",
		},
		{
			name: "non-existent debt tags file",
			setupFlags: func() {
				setValid()
				viper.Set("debt-tags", filepath.Join(tmpDir, "missing.json"))
			},
			expectError:   true,
			errorContains: "debt tag status file does not exist",
		},
		{
			name: "invalid output format",
			setupFlags: func() {
				setValid()
				viper.Set("output-format", "xml")
			},
			expectError:   true,
			errorContains: "invalid output format",
		},
		{
			name: "year out of range",
			setupFlags: func() {
				setValid()
				viper.Set("year", 1986)
			},
			expectError:   true,
			errorContains: "year must be between 2000 and 2099",
		},
		{
			name: "negative settlement tolerance",
			setupFlags: func() {
				setValid()
				viper.Set("settlement-tolerance", -1.0)
			},
			expectError:   true,
			errorContains: "settlement tolerance cannot be negative",
		},
		{
			name: "window months too large",
			setupFlags: func() {
				setValid()
				viper.Set("window-months", 12)
			},
			expectError:   true,
			errorContains: "window months must be between 0 and 11",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper
			viper.Reset()
			tt.setupFlags()

			cmd := &cobra.Command{}
			err := validateReportFlags(cmd, []string{})

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				} else if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("expected error to contain '%s', got: %v", tt.errorContains, err)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestApplyPersonFilter(t *testing.T) {
	persons := []*models.Person{
		{ID: "P-ALICE", Name: "Alice"},
		{ID: "P-BOB", Name: "Bob"},
	}

	makeResult := func() *engine.Result {
		return &engine.Result{
			CyclesByPerson: map[string][]*debtcycle.Cycle{
				"P-ALICE": {{Tag: "2026-01"}},
				"P-BOB":   {{Tag: "2026-02"}},
			},
			OutstandingByPerson: map[string][]*debtcycle.Cycle{
				"P-BOB": {{Tag: "2025-12"}},
			},
		}
	}

	t.Run("filter by ID", func(t *testing.T) {
		result := makeResult()
		if err := applyPersonFilter(result, persons, "P-ALICE"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.CyclesByPerson) != 1 {
			t.Errorf("expected 1 person after filtering, got %d", len(result.CyclesByPerson))
		}
		if _, ok := result.CyclesByPerson["P-ALICE"]; !ok {
			t.Error("expected P-ALICE to survive the filter")
		}
		if len(result.OutstandingByPerson) != 0 {
			t.Error("Bob's outstanding cycles should be filtered out")
		}
	})

	t.Run("filter by name is case-insensitive", func(t *testing.T) {
		result := makeResult()
		if err := applyPersonFilter(result, persons, "bob"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := result.CyclesByPerson["P-BOB"]; !ok {
			t.Error("expected P-BOB to survive the filter")
		}
	})

	t.Run("unknown person", func(t *testing.T) {
		result := makeResult()
		if err := applyPersonFilter(result, persons, "Mallory"); err == nil {
			t.Error("expected error for unknown person")
		}
	})
}

func TestReportCommandHelp(t *testing.T) {
	cmd := reportCmd

	for _, flagName := range []string{
		"transactions", "accounts", "persons", "debt-tags",
		"year", "output-format", "output-file",
		"settlement-tolerance", "window-months", "derive-net-balances",
	} {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("%s flag not found", flagName)
		}
	}

	// Test help output contains key information
	var helpOutput bytes.Buffer
	cmd.SetOut(&helpOutput)
	cmd.Help()

	helpText := helpOutput.String()

	expectedSections := []string{
		"Usage:",
		"Examples:",
		"Flags:",
		"--transactions",
		"--accounts",
		"--persons",
		"--output-format",
	}

	for _, section := range expectedSections {
		if !strings.Contains(helpText, section) {
			t.Errorf("help text should contain '%s'", section)
		}
	}
}
