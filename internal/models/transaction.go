// Package models defines the core domain records consumed by the cycle and
// reward aggregation engine: transactions, accounts, persons, cashback
// configurations, and authoritative cycle status records.
//
// All monetary values use decimal.Decimal. Records are treated as immutable
// snapshots; the engine never mutates them after ingestion.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a transaction by intent.
type TransactionType string

const (
	TransactionTypeIncome    TransactionType = "income"
	TransactionTypeExpense   TransactionType = "expense"
	TransactionTypeTransfer  TransactionType = "transfer"
	TransactionTypeDebt      TransactionType = "debt"
	TransactionTypeRepayment TransactionType = "repayment"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid checks if the transaction type is one of the known types
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer,
		TransactionTypeDebt, TransactionTypeRepayment:
		return true
	default:
		return false
	}
}

// TransactionStatus describes the posting state of a transaction.
type TransactionStatus string

const (
	StatusPosted  TransactionStatus = "posted"
	StatusPending TransactionStatus = "pending"
	StatusVoid    TransactionStatus = "void"
)

// IsValid checks if the status is one of the known states
func (s TransactionStatus) IsValid() bool {
	return s == StatusPosted || s == StatusPending || s == StatusVoid
}

// Direction is the explicit money-flow direction of a transaction, derived
// once at ingestion so downstream aggregation never re-derives it from
// sign-plus-type combinations.
type Direction int

const (
	// DirectionNeutral applies to transactions that do not move money in or
	// out of the household view (transfers, zero-amount debt rows).
	DirectionNeutral Direction = iota

	// DirectionOutbound represents money leaving: expenses and debt lends.
	DirectionOutbound

	// DirectionInbound represents money arriving: income, repayments, and
	// legacy positive debt rows recorded as repayments.
	DirectionInbound
)

// String returns the string representation of Direction
func (d Direction) String() string {
	switch d {
	case DirectionOutbound:
		return "Outbound"
	case DirectionInbound:
		return "Inbound"
	case DirectionNeutral:
		return "Neutral"
	default:
		return "Unknown"
	}
}

// Metadata is the free-form key/value bag attached to a transaction. Split
// bill linkage and cashback markers live here; everything else is opaque.
type Metadata map[string]interface{}

// Bool reads a metadata key as a boolean. JSON booleans, the strings
// "true"/"1", and nonzero numbers all count as true; a missing key is false.
func (m Metadata) Bool(key string) bool {
	if m == nil {
		return false
	}
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		lower := strings.ToLower(strings.TrimSpace(v))
		return lower == "true" || lower == "1"
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}

// String reads a metadata key as a string; missing or non-string keys yield "".
func (m Metadata) String(key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// Metadata keys recognized by the engine. Unknown keys pass through untouched.
const (
	MetaSplitBillBase   = "is_split_bill_base"
	MetaSplitParentID   = "split_parent_id"
	MetaSplitGroupName  = "split_group_name"
	MetaSplitQRImageURL = "split_qr_image_url"
	MetaIsCashback      = "is_cashback"
)

// Transaction is a single financial fact. Amount is a signed magnitude for
// debt rows (negative = lent, positive = repayment recorded as debt) and an
// unsigned magnitude for every other type; callers must check Type before
// interpreting the sign, or use Direction which encodes both.
type Transaction struct {
	ID                   string            `json:"id"`
	Type                 TransactionType   `json:"type"`
	Amount               decimal.Decimal   `json:"amount"`
	FinalPrice           *decimal.Decimal  `json:"final_price,omitempty"`
	CashbackSharePercent decimal.Decimal   `json:"cashback_share_percent"`
	CashbackShareFixed   decimal.Decimal   `json:"cashback_share_fixed"`
	PersonID             string            `json:"person_id,omitempty"`
	AccountID            string            `json:"account_id"`
	TargetAccountID      string            `json:"target_account_id,omitempty"`
	CategoryID           string            `json:"category_id,omitempty"`
	Tag                  string            `json:"tag,omitempty"`
	OccurredAt           time.Time         `json:"occurred_at"`
	Note                 string            `json:"note,omitempty"`
	Status               TransactionStatus `json:"status"`
	Metadata             Metadata          `json:"metadata,omitempty"`
}

// Validate performs basic validation on the Transaction
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("transaction ID cannot be empty")
	}

	if !t.Type.IsValid() {
		return fmt.Errorf("invalid transaction type: %s", t.Type)
	}

	if t.Status != "" && !t.Status.IsValid() {
		return fmt.Errorf("invalid transaction status: %s", t.Status)
	}

	if t.OccurredAt.IsZero() {
		return fmt.Errorf("transaction time cannot be zero")
	}

	return nil
}

// IsVoid reports whether the transaction has been voided and must be ignored
// by every aggregation pass.
func (t *Transaction) IsVoid() bool {
	return t.Status == StatusVoid
}

// IsActive reports whether the transaction counts toward aggregates. An empty
// status is treated as posted for records written before status existed.
func (t *Transaction) IsActive() bool {
	return t.Status == StatusPosted || t.Status == ""
}

// Direction derives the explicit money-flow direction from type and sign.
// This is the single place sign conventions are interpreted.
func (t *Transaction) Direction() Direction {
	switch t.Type {
	case TransactionTypeDebt:
		if t.Amount.IsNegative() {
			return DirectionOutbound
		}
		if t.Amount.IsPositive() {
			return DirectionInbound
		}
		return DirectionNeutral
	case TransactionTypeExpense:
		return DirectionOutbound
	case TransactionTypeIncome, TransactionTypeRepayment:
		return DirectionInbound
	default:
		return DirectionNeutral
	}
}

// AbsAmount returns the unsigned magnitude of the transaction amount.
func (t *Transaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// EffectiveAmount returns the amount actually paid: the final price when a
// valid discount is recorded, otherwise the raw amount. A final price that is
// absent, zero, or larger than the amount is treated as "no discount".
func (t *Transaction) EffectiveAmount() decimal.Decimal {
	if t.FinalPrice == nil {
		return t.Amount.Abs()
	}
	final := t.FinalPrice.Abs()
	if final.IsZero() || final.GreaterThan(t.Amount.Abs()) {
		return t.Amount.Abs()
	}
	return final
}

// DiscountAmount returns the vendor discount captured at entry time
// (|amount| - |final_price|), or zero when no valid discount is present.
func (t *Transaction) DiscountAmount() decimal.Decimal {
	return t.Amount.Abs().Sub(t.EffectiveAmount())
}

// HasPerson reports whether the transaction is linked to a debtor.
func (t *Transaction) HasPerson() bool {
	return strings.TrimSpace(t.PersonID) != ""
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{ID: %s, Type: %s, Amount: %s, Tag: %s}",
		t.ID, t.Type, t.Amount.String(), t.Tag)
}

// WithinTolerance reports whether two amounts differ by no more than the
// given tolerance. Both the cycle settlement tolerance and the split bill
// validation tolerance flow through here.
func WithinTolerance(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}
