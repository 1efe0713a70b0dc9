// Package cashback computes the reward amount attributable to a transaction.
//
// Two independent figures exist and are deliberately kept apart:
//
//   - the realized cashback, recorded on the transaction itself and resolved
//     through a fixed priority cascade (Resolve), and
//   - the entitlement, derived from the account's tiered reward program
//     (TierEvaluator), used as an audit figure.
//
// The cascade picks exactly one primary source per transaction; the
// income-heuristic contribution is additive and only applies to income rows.
package cashback

import (
	"strings"

	"finance-cycle-engine/internal/models"

	"github.com/shopspring/decimal"
)

// Source identifies which cascade rule produced the cashback amount.
type Source string

const (
	// SourceDiscount: a vendor discount already reflected at entry time
	// (|amount| > |final_price|).
	SourceDiscount Source = "discount"

	// SourceFixed: an explicit fixed cashback share on the transaction.
	SourceFixed Source = "fixed"

	// SourcePercent: a percentage share of the transaction amount.
	SourcePercent Source = "percent"

	// SourceIncomeHeuristic: an income row flagged as cashback by note text
	// or metadata.
	SourceIncomeHeuristic Source = "income-heuristic"

	// SourceNone: no cashback applies.
	SourceNone Source = "none"
)

// String returns the string representation of Source
func (s Source) String() string {
	return string(s)
}

// Result is the realized cashback for one transaction.
type Result struct {
	Amount decimal.Decimal `json:"amount"`
	Source Source          `json:"source"`
}

// Resolve computes the realized cashback for a single transaction using the
// priority cascade. The first matching primary rule wins; rules never stack
// except for the income heuristic, which adds on top for income rows.
func Resolve(tx *models.Transaction) Result {
	// Non-negative debt rows are repayments, not earning events.
	if tx.Type == models.TransactionTypeDebt && !tx.Amount.IsNegative() {
		return Result{Amount: decimal.Zero, Source: SourceNone}
	}

	amount, source := primaryCashback(tx)

	if heuristic := incomeHeuristic(tx); heuristic.IsPositive() {
		amount = amount.Add(heuristic)
		if source == SourceNone {
			source = SourceIncomeHeuristic
		}
	}

	if !amount.IsPositive() {
		return Result{Amount: decimal.Zero, Source: SourceNone}
	}
	return Result{Amount: amount, Source: source}
}

// primaryCashback evaluates cascade rules 1-3: discount, fixed share,
// percent share. Exactly one applies.
func primaryCashback(tx *models.Transaction) (decimal.Decimal, Source) {
	if discount := tx.DiscountAmount(); discount.IsPositive() {
		return discount, SourceDiscount
	}

	if !tx.CashbackShareFixed.IsZero() {
		return tx.CashbackShareFixed.Abs(), SourceFixed
	}

	if tx.CashbackSharePercent.IsPositive() {
		return tx.Amount.Abs().Mul(tx.CashbackSharePercent), SourcePercent
	}

	return decimal.Zero, SourceNone
}

// incomeHeuristic returns |amount| for income rows flagged as cashback via
// note text or metadata, zero otherwise.
func incomeHeuristic(tx *models.Transaction) decimal.Decimal {
	if tx.Type != models.TransactionTypeIncome {
		return decimal.Zero
	}
	if strings.Contains(strings.ToLower(tx.Note), "cashback") || tx.Metadata.Bool(models.MetaIsCashback) {
		return tx.Amount.Abs()
	}
	return decimal.Zero
}

// AccountSummary aggregates realized and entitled cashback for one account
// over a cycle. Realized and entitled are independent code paths and are
// reported side by side, never reconciled automatically.
type AccountSummary struct {
	AccountID string                     `json:"account_id"`
	Realized  decimal.Decimal            `json:"realized"`
	Entitled  decimal.Decimal            `json:"entitled"`
	BySource  map[Source]decimal.Decimal `json:"by_source"`
}

// NewAccountSummary creates an empty summary for an account.
func NewAccountSummary(accountID string) *AccountSummary {
	return &AccountSummary{
		AccountID: accountID,
		Realized:  decimal.Zero,
		Entitled:  decimal.Zero,
		BySource:  make(map[Source]decimal.Decimal),
	}
}

// AddRealized folds one resolved transaction result into the summary.
func (s *AccountSummary) AddRealized(r Result) {
	if r.Source == SourceNone {
		return
	}
	s.Realized = s.Realized.Add(r.Amount)
	s.BySource[r.Source] = s.BySource[r.Source].Add(r.Amount)
}

// AddEntitled folds one entitlement amount into the summary.
func (s *AccountSummary) AddEntitled(amount decimal.Decimal) {
	s.Entitled = s.Entitled.Add(amount)
}
