package familybalance

import (
	"testing"

	"finance-cycle-engine/internal/models"

	"github.com/shopspring/decimal"
)

func createTestFamilyAccounts() []*models.Account {
	return []*models.Account{
		{
			ID:             "PARENT",
			Name:           "Main Card",
			Type:           models.AccountTypeCreditCard,
			CreditLimit:    decimal.NewFromInt(45000000),
			CurrentBalance: decimal.NewFromInt(-10000000),
			Relationships:  &models.AccountRelationships{IsParent: true, ChildCount: 1},
		},
		{
			ID:             "CHILD",
			Name:           "Supplementary Card",
			Type:           models.AccountTypeCreditCard,
			CurrentBalance: decimal.NewFromInt(-5000000),
			CashbackConfig: &models.CashbackConfig{SharedLimitParentID: "PARENT"},
		},
		{
			ID:             "BANK",
			Name:           "Salary Account",
			Type:           models.AccountTypeBank,
			CurrentBalance: decimal.NewFromInt(12345678),
		},
	}
}

func TestSharedFamilyBalance(t *testing.T) {
	resolver := NewResolver(createTestFamilyAccounts())

	// 45,000,000 - (10,000,000 + 5,000,000) = 30,000,000 for every member.
	for _, id := range []string{"PARENT", "CHILD"} {
		view := resolver.Balance(id)
		if !view.Balance.Equal(decimal.NewFromInt(30000000)) {
			t.Errorf("Balance(%s) = %s, want 30000000", id, view.Balance)
		}
		if !view.Limit.Equal(decimal.NewFromInt(45000000)) {
			t.Errorf("Limit(%s) = %s, want 45000000", id, view.Limit)
		}
		if !view.SharedLimit {
			t.Errorf("Balance(%s) should be flagged shared", id)
		}
	}
}

func TestNonCreditAccountBalanceIsNet(t *testing.T) {
	resolver := NewResolver(createTestFamilyAccounts())
	view := resolver.Balance("BANK")

	if !view.Balance.Equal(decimal.NewFromInt(12345678)) {
		t.Errorf("Balance = %s, want the net balance", view.Balance)
	}
	if !view.UtilizationPercent.IsZero() {
		t.Errorf("non-credit utilization = %s, want 0", view.UtilizationPercent)
	}
}

func TestStandaloneCardBalance(t *testing.T) {
	accounts := []*models.Account{
		{
			ID:             "SOLO",
			Type:           models.AccountTypeCreditCard,
			CreditLimit:    decimal.NewFromInt(20000000),
			CurrentBalance: decimal.NewFromInt(-4000000),
		},
	}
	resolver := NewResolver(accounts)
	view := resolver.Balance("SOLO")

	if !view.Balance.Equal(decimal.NewFromInt(16000000)) {
		t.Errorf("Balance = %s, want 16000000", view.Balance)
	}
	if view.SharedLimit {
		t.Error("standalone card must not be flagged shared")
	}
	// used = 20M - 16M = 4M -> 20%.
	if !view.UtilizationPercent.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Utilization = %s, want 20", view.UtilizationPercent)
	}
}

func TestDanglingParentFallsBackToStandalone(t *testing.T) {
	accounts := []*models.Account{
		{
			ID:             "ORPHAN",
			Type:           models.AccountTypeCreditCard,
			CreditLimit:    decimal.NewFromInt(10000000),
			CurrentBalance: decimal.NewFromInt(-2000000),
			CashbackConfig: &models.CashbackConfig{SharedLimitParentID: "GONE"},
		},
	}
	resolver := NewResolver(accounts)
	view := resolver.Balance("ORPHAN")

	if !view.Balance.Equal(decimal.NewFromInt(8000000)) {
		t.Errorf("Balance = %s, want 8000000 (standalone fallback)", view.Balance)
	}
	if view.SharedLimit {
		t.Error("dangling parent must not produce a shared computation")
	}
}

func TestUtilizationNegativeBalanceConvention(t *testing.T) {
	// Some legacy accounts store the owed amount as a negative balance with
	// no remaining-credit semantics.
	got := utilization(decimal.NewFromInt(-3000000), decimal.NewFromInt(10000000))
	if !got.Equal(decimal.NewFromInt(30)) {
		t.Errorf("utilization = %s, want 30", got)
	}
}

func TestUtilizationZeroLimit(t *testing.T) {
	got := utilization(decimal.NewFromInt(-500), decimal.Zero)
	if !got.IsZero() {
		t.Errorf("utilization with no limit = %s, want 0", got)
	}
}

func TestWithNetBalancesOverride(t *testing.T) {
	resolver := NewResolver(createTestFamilyAccounts()).WithNetBalances(map[string]decimal.Decimal{
		"PARENT": decimal.NewFromInt(-20000000),
	})

	view := resolver.Balance("PARENT")
	// 45M - (20M parent + 5M child from snapshot) = 20M.
	if !view.Balance.Equal(decimal.NewFromInt(20000000)) {
		t.Errorf("Balance = %s, want 20000000", view.Balance)
	}
}

func TestFamiliesGrouping(t *testing.T) {
	accounts := createTestFamilyAccounts()
	accounts = append(accounts,
		&models.Account{
			ID:   "DEPOSIT",
			Type: models.AccountTypeSavings,
			CurrentBalance: decimal.NewFromInt(50000000),
		},
		&models.Account{
			ID:                 "SECURED",
			Type:               models.AccountTypeCreditCard,
			CreditLimit:        decimal.NewFromInt(40000000),
			CurrentBalance:     decimal.NewFromInt(-1000000),
			SecuredByAccountID: "DEPOSIT",
		},
	)

	resolver := NewResolver(accounts)
	families := resolver.Families()

	if len(families) != 2 {
		t.Fatalf("expected 2 families, got %d", len(families))
	}

	byID := map[string]*Family{}
	for _, f := range families {
		byID[f.ID] = f
	}

	parentFam := byID["PARENT"]
	if parentFam == nil || len(parentFam.Children) != 1 || parentFam.Children[0].ID != "CHILD" {
		t.Errorf("PARENT family malformed: %+v", parentFam)
	}

	// A card with only collateral still forms a two-node family.
	securedFam := byID["SECURED"]
	if securedFam == nil || securedFam.SecuredAsset == nil || securedFam.SecuredAsset.ID != "DEPOSIT" {
		t.Errorf("SECURED family malformed: %+v", securedFam)
	}

	// The plain bank account joins no family.
	if _, ok := byID["BANK"]; ok {
		t.Error("BANK should not form a family")
	}
}

func TestFamiliesDeterministicOrder(t *testing.T) {
	accounts := createTestFamilyAccounts()
	first := NewResolver(accounts).Families()
	second := NewResolver(accounts).Families()

	if len(first) != len(second) {
		t.Fatalf("family counts differ")
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("family order differs at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestBalanceUnknownAccount(t *testing.T) {
	resolver := NewResolver(nil)
	view := resolver.Balance("NOPE")
	if view.AccountID != "NOPE" || !view.Balance.IsZero() {
		t.Errorf("unknown account view = %+v", view)
	}
}
