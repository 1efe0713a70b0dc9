// Command snapshot_generator produces synthetic snapshot exports for testing
// the evaluation pipeline: a transactions file, an accounts file, and a
// persons file, all JSON arrays in the shape the loader expects.
//
// Generation is seedable so a scenario can be reproduced exactly.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SnapshotGenerator generates a coherent set of snapshot files.
type SnapshotGenerator struct {
	Count     int
	StartDate time.Time
	EndDate   time.Time
	Seed      int64

	rng      *rand.Rand
	persons  []personRecord
	accounts []accountRecord
}

type transactionRecord struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Amount     string                 `json:"amount"`
	FinalPrice string                 `json:"final_price,omitempty"`
	PersonID   string                 `json:"person_id,omitempty"`
	AccountID  string                 `json:"account_id"`
	Tag        string                 `json:"tag,omitempty"`
	Note       string                 `json:"note,omitempty"`
	Status     string                 `json:"status"`
	OccurredAt string                 `json:"occurred_at"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

type accountRecord struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Type           string                 `json:"type"`
	CreditLimit    string                 `json:"credit_limit,omitempty"`
	CurrentBalance string                 `json:"current_balance"`
	CashbackConfig map[string]interface{} `json:"cashback_config,omitempty"`
}

type personRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsOwner bool   `json:"is_owner,omitempty"`
}

func main() {
	var (
		outputDir = flag.String("output-dir", "generated", "Output directory for snapshot files")
		count     = flag.Int("count", 500, "Number of transactions to generate")
		startDate = flag.String("start-date", "2026-01-01", "Start date (YYYY-MM-DD)")
		endDate   = flag.String("end-date", "2026-12-31", "End date (YYYY-MM-DD)")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible generation")
		scenario  = flag.String("scenario", "mixed", "Generation scenario: mixed, debt-heavy, split-bills")
	)
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		log.Fatalf("Invalid start date: %v", err)
	}
	end, err := time.Parse("2006-01-02", *endDate)
	if err != nil {
		log.Fatalf("Invalid end date: %v", err)
	}

	generator := &SnapshotGenerator{
		Count:     *count,
		StartDate: start,
		EndDate:   end,
		Seed:      *seed,
		rng:       rand.New(rand.NewSource(*seed)),
	}
	generator.buildDirectory()

	var transactions []transactionRecord
	switch *scenario {
	case "debt-heavy":
		transactions = generator.GenerateDebtHeavy()
	case "split-bills":
		transactions = generator.GenerateSplitBills()
	default:
		transactions = generator.GenerateMixed()
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	if err := writeJSON(filepath.Join(*outputDir, "transactions.json"), transactions); err != nil {
		log.Fatalf("Failed to write transactions: %v", err)
	}
	if err := writeJSON(filepath.Join(*outputDir, "accounts.json"), generator.accounts); err != nil {
		log.Fatalf("Failed to write accounts: %v", err)
	}
	if err := writeJSON(filepath.Join(*outputDir, "persons.json"), generator.persons); err != nil {
		log.Fatalf("Failed to write persons: %v", err)
	}

	fmt.Printf("Generated %d transactions in %s\n", len(transactions), *outputDir)
	fmt.Printf("Date range: %s to %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	fmt.Printf("Scenario: %s\n", *scenario)
	fmt.Printf("Seed used: %d\n", *seed)
}

// buildDirectory creates a fixed family of persons and accounts for
// transactions to reference: one owner, a few counterparties, a parent card
// with a shared-limit child, and a bank account.
func (sg *SnapshotGenerator) buildDirectory() {
	sg.persons = []personRecord{
		{ID: uuid.NewString(), Name: "Owner", IsOwner: true},
		{ID: uuid.NewString(), Name: "Alice"},
		{ID: uuid.NewString(), Name: "Bob"},
		{ID: uuid.NewString(), Name: "Carol"},
	}

	parentID := uuid.NewString()
	sg.accounts = []accountRecord{
		{
			ID:             parentID,
			Name:           "Parent Card",
			Type:           "credit_card",
			CreditLimit:    "45000000",
			CurrentBalance: "-10000000",
		},
		{
			ID:             uuid.NewString(),
			Name:           "Child Card",
			Type:           "credit_card",
			CurrentBalance: "-5000000",
			CashbackConfig: map[string]interface{}{
				"shared_limit_parent_id": parentID,
				"rate":                   0.005,
				"max_amount":             100000,
			},
		},
		{
			ID:             uuid.NewString(),
			Name:           "Main Bank",
			Type:           "bank",
			CurrentBalance: "20000000",
		},
	}
}

// GenerateMixed produces a realistic blend: mostly expenses, some debt
// lends and repays, the occasional split bill.
func (sg *SnapshotGenerator) GenerateMixed() []transactionRecord {
	transactions := make([]transactionRecord, 0, sg.Count)

	for i := 0; i < sg.Count; i++ {
		roll := sg.rng.Float64()
		switch {
		case roll < 0.15:
			transactions = append(transactions, sg.debtLend())
		case roll < 0.25:
			transactions = append(transactions, sg.debtRepay())
		case roll < 0.30:
			transactions = append(transactions, sg.splitBillPair()...)
		default:
			transactions = append(transactions, sg.expense())
		}
	}

	return transactions
}

// GenerateDebtHeavy skews towards lend and repay rows so cycle aggregation
// gets exercised across many months.
func (sg *SnapshotGenerator) GenerateDebtHeavy() []transactionRecord {
	transactions := make([]transactionRecord, 0, sg.Count)

	for i := 0; i < sg.Count; i++ {
		if sg.rng.Float64() < 0.6 {
			transactions = append(transactions, sg.debtLend())
		} else {
			transactions = append(transactions, sg.debtRepay())
		}
	}

	return transactions
}

// GenerateSplitBills produces base and participant rows so grouping and
// conservation checks get exercised.
func (sg *SnapshotGenerator) GenerateSplitBills() []transactionRecord {
	transactions := make([]transactionRecord, 0, sg.Count)

	for len(transactions) < sg.Count {
		transactions = append(transactions, sg.splitBillPair()...)
	}

	return transactions[:sg.Count]
}

func (sg *SnapshotGenerator) expense() transactionRecord {
	occurredAt := sg.randomTime()
	amount := decimal.NewFromInt(sg.rng.Int63n(2000000) + 10000).Neg()

	tx := transactionRecord{
		ID:         uuid.NewString(),
		Type:       "expense",
		Amount:     amount.String(),
		AccountID:  sg.randomAccount(),
		Tag:        occurredAt.Format("2006-01"),
		Status:     "posted",
		OccurredAt: occurredAt.Format(time.RFC3339),
	}

	// A slice of expenses carry a vendor discount.
	if sg.rng.Float64() < 0.2 {
		discounted := amount.Mul(decimal.NewFromFloat(0.9)).Round(0)
		tx.FinalPrice = discounted.String()
	}

	return tx
}

func (sg *SnapshotGenerator) debtLend() transactionRecord {
	occurredAt := sg.randomTime()
	amount := decimal.NewFromInt(sg.rng.Int63n(5000000) + 100000).Neg()

	return transactionRecord{
		ID:         uuid.NewString(),
		Type:       "debt",
		Amount:     amount.String(),
		PersonID:   sg.randomCounterparty(),
		AccountID:  sg.randomAccount(),
		Tag:        occurredAt.Format("2006-01"),
		Status:     "posted",
		OccurredAt: occurredAt.Format(time.RFC3339),
	}
}

func (sg *SnapshotGenerator) debtRepay() transactionRecord {
	occurredAt := sg.randomTime()
	amount := decimal.NewFromInt(sg.rng.Int63n(3000000) + 100000)

	return transactionRecord{
		ID:         uuid.NewString(),
		Type:       "debt",
		Amount:     amount.String(),
		PersonID:   sg.randomCounterparty(),
		AccountID:  sg.randomAccount(),
		Tag:        occurredAt.Format("2006-01"),
		Status:     "posted",
		OccurredAt: occurredAt.Format(time.RFC3339),
	}
}

// splitBillPair emits a base row and two participant rows that add up to
// the base amount exactly.
func (sg *SnapshotGenerator) splitBillPair() []transactionRecord {
	occurredAt := sg.randomTime()
	baseID := uuid.NewString()
	groups := []string{"Dinner Crew", "Trip 2026", "Office Lunch"}
	titles := []string{"Sushi", "Gas", "Coffee", "Groceries"}
	group := groups[sg.rng.Intn(len(groups))]
	title := titles[sg.rng.Intn(len(titles))]

	total := decimal.NewFromInt((sg.rng.Int63n(500000) + 50000) * 2)
	half := total.Div(decimal.NewFromInt(2)).Round(0)

	base := transactionRecord{
		ID:         baseID,
		Type:       "expense",
		Amount:     total.Neg().String(),
		AccountID:  sg.randomAccount(),
		Note:       fmt.Sprintf("[SplitBill Base] %s - %s", group, title),
		Status:     "posted",
		OccurredAt: occurredAt.Format(time.RFC3339),
		Metadata:   map[string]interface{}{"split_bill_base": true},
	}

	participants := make([]transactionRecord, 2)
	for i := range participants {
		participants[i] = transactionRecord{
			ID:         uuid.NewString(),
			Type:       "expense",
			Amount:     half.String(),
			PersonID:   sg.randomCounterparty(),
			AccountID:  base.AccountID,
			Note:       fmt.Sprintf("[SplitBill] %s - %s", group, title),
			Status:     "posted",
			OccurredAt: occurredAt.Add(time.Duration(i+1) * time.Minute).Format(time.RFC3339),
			Metadata:   map[string]interface{}{"split_parent_id": baseID},
		}
	}

	return append([]transactionRecord{base}, participants...)
}

func (sg *SnapshotGenerator) randomTime() time.Time {
	duration := sg.EndDate.Sub(sg.StartDate)
	return sg.StartDate.Add(time.Duration(sg.rng.Int63n(int64(duration))))
}

func (sg *SnapshotGenerator) randomAccount() string {
	return sg.accounts[sg.rng.Intn(len(sg.accounts))].ID
}

// randomCounterparty never returns the owner; debt and split rows always
// reference someone else.
func (sg *SnapshotGenerator) randomCounterparty() string {
	return sg.persons[1+sg.rng.Intn(len(sg.persons)-1)].ID
}

func writeJSON(filename string, data interface{}) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
