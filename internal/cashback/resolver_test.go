package cashback

import (
	"testing"
	"time"

	"finance-cycle-engine/internal/models"

	"github.com/shopspring/decimal"
)

func expenseTx(amount float64) *models.Transaction {
	return &models.Transaction{
		ID:         "TX001",
		Type:       models.TransactionTypeExpense,
		Amount:     decimal.NewFromFloat(amount),
		AccountID:  "ACC001",
		OccurredAt: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
		Status:     models.StatusPosted,
	}
}

func TestResolveDiscountBeatsEverything(t *testing.T) {
	final := decimal.NewFromInt(-450000)
	tx := expenseTx(-500000)
	tx.FinalPrice = &final
	// Percent and fixed set too; the discount must still win.
	tx.CashbackSharePercent = decimal.NewFromFloat(0.05)
	tx.CashbackShareFixed = decimal.NewFromInt(9999)

	got := Resolve(tx)
	if got.Source != SourceDiscount {
		t.Errorf("Source = %s, want discount", got.Source)
	}
	if !got.Amount.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("Amount = %s, want 50000", got.Amount)
	}
}

func TestResolveFixedBeatsPercent(t *testing.T) {
	tx := expenseTx(200000)
	tx.CashbackShareFixed = decimal.NewFromInt(15000)
	tx.CashbackSharePercent = decimal.NewFromFloat(0.10)

	got := Resolve(tx)
	if got.Source != SourceFixed {
		t.Errorf("Source = %s, want fixed", got.Source)
	}
	if !got.Amount.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("Amount = %s, want 15000", got.Amount)
	}
}

func TestResolvePercent(t *testing.T) {
	tx := expenseTx(200000)
	tx.CashbackSharePercent = decimal.NewFromFloat(0.02)

	got := Resolve(tx)
	if got.Source != SourcePercent {
		t.Errorf("Source = %s, want percent", got.Source)
	}
	if !got.Amount.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("Amount = %s, want 4000", got.Amount)
	}
}

func TestResolveIncomeHeuristic(t *testing.T) {
	tests := []struct {
		name string
		note string
		meta models.Metadata
		want bool
	}{
		{"note substring", "GoPay CashBack January", nil, true},
		{"metadata flag", "monthly reward", models.Metadata{models.MetaIsCashback: true}, true},
		{"plain income", "salary", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := expenseTx(75000)
			tx.Type = models.TransactionTypeIncome
			tx.Note = tt.note
			tx.Metadata = tt.meta

			got := Resolve(tx)
			if tt.want {
				if got.Source != SourceIncomeHeuristic || !got.Amount.Equal(decimal.NewFromInt(75000)) {
					t.Errorf("got %s/%s, want income-heuristic/75000", got.Amount, got.Source)
				}
			} else if got.Source != SourceNone {
				t.Errorf("got %s/%s, want none", got.Amount, got.Source)
			}
		})
	}
}

func TestResolveIncomeHeuristicIsAdditive(t *testing.T) {
	// An income row with a fixed share AND the cashback marker earns both.
	tx := expenseTx(100000)
	tx.Type = models.TransactionTypeIncome
	tx.Note = "partial cashback refund"
	tx.CashbackShareFixed = decimal.NewFromInt(5000)

	got := Resolve(tx)
	if !got.Amount.Equal(decimal.NewFromInt(105000)) {
		t.Errorf("Amount = %s, want 105000 (fixed + heuristic)", got.Amount)
	}
	if got.Source != SourceFixed {
		t.Errorf("Source = %s, want the primary source (fixed)", got.Source)
	}
}

func TestResolveExcludesDebtRepayments(t *testing.T) {
	tx := expenseTx(500000)
	tx.Type = models.TransactionTypeDebt
	// Positive debt amount = repayment; must never earn cashback even with
	// shares set.
	tx.CashbackSharePercent = decimal.NewFromFloat(0.05)
	tx.CashbackShareFixed = decimal.NewFromInt(1000)

	got := Resolve(tx)
	if got.Source != SourceNone || !got.Amount.IsZero() {
		t.Errorf("got %s/%s, want zero/none", got.Amount, got.Source)
	}
}

func TestResolveDebtLendCanEarn(t *testing.T) {
	final := decimal.NewFromInt(-900000)
	tx := expenseTx(-1000000)
	tx.Type = models.TransactionTypeDebt
	tx.FinalPrice = &final

	got := Resolve(tx)
	if got.Source != SourceDiscount || !got.Amount.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("got %s/%s, want 100000/discount", got.Amount, got.Source)
	}
}

func tieredConfig() *models.CashbackConfig {
	return &models.CashbackConfig{
		Program: models.CashbackProgram{
			Levels: []models.CashbackLevel{
				{
					MinTotalSpend: decimal.Zero,
					DefaultRate:   decimal.NewFromFloat(0.01),
				},
				{
					MinTotalSpend: decimal.NewFromInt(5000000),
					DefaultRate:   decimal.NewFromFloat(0.02),
					CategoryRules: []models.CategoryRule{
						{
							CategoryIDs: []string{"dining"},
							Rate:        decimal.NewFromFloat(0.05),
							MaxReward:   decimal.NewFromInt(100000),
						},
					},
				},
			},
		},
	}
}

func TestTierEvaluatorLevelSelection(t *testing.T) {
	eval := NewTierEvaluator(tieredConfig())

	// First spend sits in the base level (running total 0).
	first := eval.Entitle(expenseTx(3000000))
	if !first.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("base level entitlement = %s, want 30000", first)
	}

	// Second spend: running total 3M, still base level.
	second := eval.Entitle(expenseTx(3000000))
	if !second.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("still base level, got %s, want 30000", second)
	}

	// Third spend: running total 6M crosses the 5M threshold.
	third := eval.Entitle(expenseTx(1000000))
	if !third.Equal(decimal.NewFromInt(20000)) {
		t.Errorf("upper level entitlement = %s, want 20000", third)
	}
}

func TestTierEvaluatorCategoryRuleCap(t *testing.T) {
	eval := NewTierEvaluator(tieredConfig())

	// Push the running total past the upper threshold first.
	eval.Entitle(expenseTx(6000000))

	dining := expenseTx(1500000)
	dining.CategoryID = "dining"

	// 5% of 1.5M = 75000, within the 100000 cap.
	first := eval.Entitle(dining)
	if !first.Equal(decimal.NewFromInt(75000)) {
		t.Errorf("first dining entitlement = %s, want 75000", first)
	}

	// Another 75000 would exceed the cap; only 25000 remains.
	second := eval.Entitle(dining)
	if !second.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("capped dining entitlement = %s, want 25000", second)
	}

	// Cap exhausted.
	third := eval.Entitle(dining)
	if !third.IsZero() {
		t.Errorf("exhausted cap entitlement = %s, want 0", third)
	}
}

func TestTierEvaluatorFlatProgram(t *testing.T) {
	eval := NewTierEvaluator(&models.CashbackConfig{
		Program: models.CashbackProgram{
			Rate:      decimal.NewFromFloat(0.02),
			MinSpend:  decimal.NewFromInt(1000000),
			MaxAmount: decimal.NewFromInt(50000),
		},
	})

	// Below the minimum spend gate: nothing yet.
	if got := eval.Entitle(expenseTx(500000)); !got.IsZero() {
		t.Errorf("below min spend, got %s, want 0", got)
	}

	// Gate passed (running total 500k+1M... the second spend moves total to
	// 1.5M only after evaluation, so spend a large row first).
	eval.Entitle(expenseTx(1000000)) // total now 1.5M

	got := eval.Entitle(expenseTx(2000000))
	if !got.Equal(decimal.NewFromInt(40000)) {
		t.Errorf("flat entitlement = %s, want 40000", got)
	}

	// Cumulative cap: only 10000 of headroom left.
	got = eval.Entitle(expenseTx(2000000))
	if !got.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("capped flat entitlement = %s, want 10000", got)
	}
}

func TestTierEvaluatorNilConfig(t *testing.T) {
	eval := NewTierEvaluator(nil)
	if got := eval.Entitle(expenseTx(1000000)); !got.IsZero() {
		t.Errorf("nil config entitlement = %s, want 0", got)
	}
}

func TestTierEvaluatorIgnoresInboundRows(t *testing.T) {
	eval := NewTierEvaluator(tieredConfig())
	income := expenseTx(9000000)
	income.Type = models.TransactionTypeIncome

	if got := eval.Entitle(income); !got.IsZero() {
		t.Errorf("income entitlement = %s, want 0", got)
	}
	if !eval.TotalSpend().IsZero() {
		t.Errorf("income must not advance the spend counter, got %s", eval.TotalSpend())
	}
}

func TestAccountSummary(t *testing.T) {
	summary := NewAccountSummary("ACC001")
	summary.AddRealized(Result{Amount: decimal.NewFromInt(50000), Source: SourceDiscount})
	summary.AddRealized(Result{Amount: decimal.NewFromInt(4000), Source: SourcePercent})
	summary.AddRealized(Result{Amount: decimal.Zero, Source: SourceNone})
	summary.AddEntitled(decimal.NewFromInt(60000))

	if !summary.Realized.Equal(decimal.NewFromInt(54000)) {
		t.Errorf("Realized = %s, want 54000", summary.Realized)
	}
	if !summary.Entitled.Equal(decimal.NewFromInt(60000)) {
		t.Errorf("Entitled = %s, want 60000", summary.Entitled)
	}
	if !summary.BySource[SourceDiscount].Equal(decimal.NewFromInt(50000)) {
		t.Errorf("BySource[discount] = %s, want 50000", summary.BySource[SourceDiscount])
	}
	if _, ok := summary.BySource[SourceNone]; ok {
		t.Error("none-source results must not be recorded")
	}
}
