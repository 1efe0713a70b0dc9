package familybalance

import (
	"finance-cycle-engine/internal/models"

	"github.com/shopspring/decimal"
)

// BalanceView is the computed balance picture for one account.
type BalanceView struct {
	AccountID string `json:"account_id"`

	// Balance is the effective usable balance. For a shared-limit card this
	// is the family's remaining credit; for a standalone card the limit plus
	// the (negative when drawn) net balance; for everything else the net.
	Balance decimal.Decimal `json:"balance"`

	// Limit is the credit limit governing this account (the parent's for a
	// family member), zero for non-credit accounts.
	Limit decimal.Decimal `json:"limit"`

	// UtilizationPercent is usedAmount / limit * 100, zero when no limit.
	UtilizationPercent decimal.Decimal `json:"utilization_percent"`

	// SharedLimit reports whether the balance was computed against a family
	// limit rather than the account's own.
	SharedLimit bool `json:"shared_limit"`
}

// Resolver computes balance views against a prebuilt family index.
type Resolver struct {
	index *Index

	// nets overrides account net balances (account id -> net) when the
	// caller derives them from the transaction stream; accounts absent from
	// the map fall back to their snapshot CurrentBalance.
	nets map[string]decimal.Decimal
}

// NewResolver creates a resolver over the given account snapshot.
func NewResolver(accounts []*models.Account) *Resolver {
	return &Resolver{index: BuildIndex(accounts)}
}

// WithNetBalances supplies transaction-derived net balances, replacing the
// snapshot balances for the accounts present in the map.
func (r *Resolver) WithNetBalances(nets map[string]decimal.Decimal) *Resolver {
	r.nets = nets
	return r
}

// Index exposes the underlying family index for grouping.
func (r *Resolver) Index() *Index {
	return r.index
}

// Families returns the display grouping of the snapshot.
func (r *Resolver) Families() []*Family {
	return r.index.Families()
}

func (r *Resolver) net(acc *models.Account) decimal.Decimal {
	if r.nets != nil {
		if net, ok := r.nets[acc.ID]; ok {
			return net
		}
	}
	return acc.CurrentBalance
}

// debtOf returns how much an account has drawn: max(0, -net).
func (r *Resolver) debtOf(acc *models.Account) decimal.Decimal {
	net := r.net(acc)
	if net.IsNegative() {
		return net.Neg()
	}
	return decimal.Zero
}

// Balance computes the effective balance view for one account.
func (r *Resolver) Balance(accountID string) BalanceView {
	acc, ok := r.index.ByID[accountID]
	if !ok {
		return BalanceView{AccountID: accountID}
	}

	if !acc.Type.IsCredit() {
		return BalanceView{
			AccountID:          accountID,
			Balance:            r.net(acc),
			Limit:              decimal.Zero,
			UtilizationPercent: decimal.Zero,
		}
	}

	if parent := r.index.Parent(acc); parent != nil {
		balance := r.familyBalance(parent)
		return BalanceView{
			AccountID:          accountID,
			Balance:            balance,
			Limit:              parent.CreditLimit,
			UtilizationPercent: utilization(balance, parent.CreditLimit),
			SharedLimit:        true,
		}
	}

	// A parent card uses the family computation against its own limit when
	// it has children; a lone card reduces to limit + net.
	if len(r.index.ChildrenOf[acc.ID]) > 0 {
		balance := r.familyBalance(acc)
		return BalanceView{
			AccountID:          accountID,
			Balance:            balance,
			Limit:              acc.CreditLimit,
			UtilizationPercent: utilization(balance, acc.CreditLimit),
			SharedLimit:        true,
		}
	}

	balance := acc.CreditLimit.Add(r.net(acc))
	return BalanceView{
		AccountID:          accountID,
		Balance:            balance,
		Limit:              acc.CreditLimit,
		UtilizationPercent: utilization(balance, acc.CreditLimit),
	}
}

// familyBalance computes the remaining credit of a shared-limit family:
// the parent's limit minus every member's drawn amount.
func (r *Resolver) familyBalance(parent *models.Account) decimal.Decimal {
	drawn := r.debtOf(parent)
	for _, child := range r.index.ChildrenOf[parent.ID] {
		drawn = drawn.Add(r.debtOf(child))
	}
	return parent.CreditLimit.Sub(drawn)
}

// utilization computes the display percentage. A non-negative balance is
// read as remaining credit (used = limit - balance); a negative balance is
// read as the owed amount directly. Both account conventions appear in
// legacy data.
func utilization(balance, limit decimal.Decimal) decimal.Decimal {
	if !limit.IsPositive() {
		return decimal.Zero
	}

	var used decimal.Decimal
	if balance.IsNegative() {
		used = balance.Neg()
	} else {
		used = limit.Sub(balance)
		if used.IsNegative() {
			used = decimal.Zero
		}
	}

	return used.Div(limit).Mul(decimal.NewFromInt(100))
}
