package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountType classifies an account node in the account graph.
type AccountType string

const (
	AccountTypeBank       AccountType = "bank"
	AccountTypeCash       AccountType = "cash"
	AccountTypeEwallet    AccountType = "ewallet"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeAsset      AccountType = "asset"
	AccountTypeDebt       AccountType = "debt"
)

// String returns the string representation of AccountType
func (a AccountType) String() string {
	return string(a)
}

// IsValid checks if the account type is one of the known types
func (a AccountType) IsValid() bool {
	switch a {
	case AccountTypeBank, AccountTypeCash, AccountTypeEwallet, AccountTypeCreditCard,
		AccountTypeSavings, AccountTypeInvestment, AccountTypeAsset, AccountTypeDebt:
		return true
	default:
		return false
	}
}

// IsCredit reports whether the account draws on a credit line.
func (a AccountType) IsCredit() bool {
	return a == AccountTypeCreditCard
}

// IsAssetLike reports whether the account can collateralize a credit line.
func (a AccountType) IsAssetLike() bool {
	return a == AccountTypeSavings || a == AccountTypeInvestment || a == AccountTypeAsset
}

// AccountRelationships is the relationship summary shipped alongside an
// account by the persistence layer.
type AccountRelationships struct {
	IsParent      bool     `json:"is_parent"`
	ChildCount    int      `json:"child_count"`
	ChildAccounts []string `json:"child_accounts,omitempty"`
	ParentID      string   `json:"parent_id,omitempty"`
}

// Account is one node of the account graph. A child credit card never carries
// its own independent limit; the parent's credit limit is authoritative for
// the whole family unless ForceStandalone is set on the cashback config.
type Account struct {
	ID                 string                `json:"id"`
	Name               string                `json:"name"`
	Type               AccountType           `json:"type"`
	CurrentBalance     decimal.Decimal       `json:"current_balance"`
	CreditLimit        decimal.Decimal       `json:"credit_limit"`
	ParentAccountID    string                `json:"parent_account_id,omitempty"`
	SecuredByAccountID string                `json:"secured_by_account_id,omitempty"`
	Relationships      *AccountRelationships `json:"relationships,omitempty"`
	CashbackConfig     *CashbackConfig       `json:"cashback_config,omitempty"`
}

// Validate performs basic validation on the Account
func (a *Account) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("account ID cannot be empty")
	}

	if !a.Type.IsValid() {
		return fmt.Errorf("invalid account type: %s", a.Type)
	}

	if a.CreditLimit.IsNegative() {
		return fmt.Errorf("credit limit cannot be negative: %s", a.CreditLimit.String())
	}

	return nil
}

// IsParent reports whether this account heads a shared-limit family, either
// through the relationship summary or through children pointing at it.
func (a *Account) IsParent() bool {
	if a.Relationships == nil {
		return false
	}
	return a.Relationships.IsParent || a.Relationships.ChildCount > 0
}

// SharedLimitParentID returns the parent account id this card draws its
// limit from, or "" when the card stands alone. The cashback/limit config
// takes precedence over the graph-level parent pointer.
func (a *Account) SharedLimitParentID() string {
	if a.CashbackConfig != nil && a.CashbackConfig.ForceStandalone {
		return ""
	}
	if a.CashbackConfig != nil && a.CashbackConfig.SharedLimitParentID != "" {
		return a.CashbackConfig.SharedLimitParentID
	}
	return a.ParentAccountID
}

// String returns a string representation of the Account
func (a *Account) String() string {
	return fmt.Sprintf("Account{ID: %s, Type: %s, Balance: %s, Limit: %s}",
		a.ID, a.Type, a.CurrentBalance.String(), a.CreditLimit.String())
}
