package cashback

import (
	"finance-cycle-engine/internal/models"

	"github.com/shopspring/decimal"
)

// TierEvaluator computes the account-level cashback entitlement for a cycle.
// It carries the running total spend used for level selection and the
// cumulative reward paid out per category rule, so per-rule MaxReward caps
// hold across the whole cycle.
//
// One evaluator covers one (account, cycle) pair; feed it the cycle's
// spending transactions in occurrence order.
type TierEvaluator struct {
	config     *models.CashbackConfig
	totalSpend decimal.Decimal
	rewardPaid decimal.Decimal
	ruleUsage  map[string]decimal.Decimal
}

// NewTierEvaluator creates an evaluator for the given account config. A nil
// config yields an evaluator that entitles nothing.
func NewTierEvaluator(config *models.CashbackConfig) *TierEvaluator {
	return &TierEvaluator{
		config:     config,
		totalSpend: decimal.Zero,
		rewardPaid: decimal.Zero,
		ruleUsage:  make(map[string]decimal.Decimal),
	}
}

// Entitle returns the entitlement for one spending transaction and folds its
// spend into the running totals. Non-spending rows (income, transfers,
// repayments) contribute nothing and do not advance the spend counter.
func (e *TierEvaluator) Entitle(tx *models.Transaction) decimal.Decimal {
	if e.config == nil || tx.Direction() != models.DirectionOutbound {
		return decimal.Zero
	}

	spend := tx.EffectiveAmount()

	// Level selection happens against the spend total before this
	// transaction; the transaction then advances the total.
	entitled := e.entitleAt(tx.CategoryID, spend)
	e.totalSpend = e.totalSpend.Add(spend)

	return entitled
}

// TotalSpend returns the running spend accumulated so far.
func (e *TierEvaluator) TotalSpend() decimal.Decimal {
	return e.totalSpend
}

func (e *TierEvaluator) entitleAt(categoryID string, spend decimal.Decimal) decimal.Decimal {
	program := &e.config.Program

	if program.HasLevels() {
		level := e.selectLevel()
		if level == nil {
			return decimal.Zero
		}
		if rule, key := e.matchRule(level, categoryID); rule != nil {
			return e.applyRuleCapped(rule, key, spend)
		}
		return spend.Mul(level.DefaultRate)
	}

	// Flat program: rate gated by minimum spend, capped cumulatively.
	if program.Rate.IsZero() {
		return decimal.Zero
	}
	if program.MinSpend.IsPositive() && e.totalSpend.LessThan(program.MinSpend) {
		return decimal.Zero
	}
	reward := spend.Mul(program.Rate)
	if program.MaxAmount.IsPositive() {
		remaining := program.MaxAmount.Sub(e.rewardPaid)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		if reward.GreaterThan(remaining) {
			reward = remaining
		}
	}
	e.rewardPaid = e.rewardPaid.Add(reward)
	return reward
}

// selectLevel picks the highest level whose threshold is at or below the
// running spend total.
func (e *TierEvaluator) selectLevel() *models.CashbackLevel {
	var selected *models.CashbackLevel
	for i := range e.config.Program.Levels {
		level := &e.config.Program.Levels[i]
		if level.MinTotalSpend.GreaterThan(e.totalSpend) {
			continue
		}
		if selected == nil || level.MinTotalSpend.GreaterThan(selected.MinTotalSpend) {
			selected = level
		}
	}
	return selected
}

// matchRule finds the category rule applying to this transaction within the
// level, along with a stable key for cumulative cap tracking.
func (e *TierEvaluator) matchRule(level *models.CashbackLevel, categoryID string) (*models.CategoryRule, string) {
	for i := range level.CategoryRules {
		rule := &level.CategoryRules[i]
		if rule.Matches(categoryID) {
			key := level.MinTotalSpend.String() + "/" + rule.CategoryIDs[0]
			return rule, key
		}
	}
	return nil, ""
}

// applyRuleCapped applies a category rule's rate, honoring the rule's
// cumulative MaxReward across the cycle.
func (e *TierEvaluator) applyRuleCapped(rule *models.CategoryRule, key string, spend decimal.Decimal) decimal.Decimal {
	reward := spend.Mul(rule.Rate)

	if rule.MaxReward.IsPositive() {
		used := e.ruleUsage[key]
		remaining := rule.MaxReward.Sub(used)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		if reward.GreaterThan(remaining) {
			reward = remaining
		}
		e.ruleUsage[key] = used.Add(reward)
	}

	return reward
}
