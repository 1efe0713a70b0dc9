package engine

import (
	"sort"

	"finance-cycle-engine/internal/cashback"
	"finance-cycle-engine/internal/debtcycle"
	"finance-cycle-engine/internal/familybalance"
	"finance-cycle-engine/internal/models"
	"finance-cycle-engine/internal/monthtag"
	"finance-cycle-engine/internal/snapshot"
	"finance-cycle-engine/internal/splitbill"
	"finance-cycle-engine/pkg/logger"
)

// Result is the full output of one evaluation pass, shaped for a display
// layer: everything is precomputed and read-only.
type Result struct {
	Year int `json:"year"`

	// CyclesByPerson holds the selected year's cycle strip per person
	// profile, empty months synthesized and sorted per the year policy.
	CyclesByPerson map[string][]*debtcycle.Cycle `json:"cycles_by_person"`

	// OutstandingByPerson surfaces unsettled cycles from years before the
	// selected one, most recent first.
	OutstandingByPerson map[string][]*debtcycle.Cycle `json:"outstanding_by_person"`

	// Balances holds the resolved balance view per account.
	Balances map[string]familybalance.BalanceView `json:"balances"`

	// Families is the shared-limit display grouping.
	Families []*familybalance.Family `json:"families"`

	// SplitGroups holds the reconstructed split bills, most recent first.
	SplitGroups []*splitbill.Group `json:"split_groups"`

	// CashbackByAccount summarizes realized and entitled cashback per
	// account over the selected year.
	CashbackByAccount map[string]*cashback.AccountSummary `json:"cashback_by_account"`
}

// Engine runs evaluation passes over snapshots.
type Engine struct {
	config     *Config
	aggregator *debtcycle.Aggregator
	logger     logger.Logger
}

// NewEngine creates an engine with the given configuration; nil selects the
// defaults.
func NewEngine(config *Config) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		config:     config,
		aggregator: debtcycle.NewAggregator(config.DebtCycle),
		logger:     logger.GetGlobalLogger().WithComponent("engine"),
	}, nil
}

// Evaluate computes the full result for one snapshot and a selected year.
func (e *Engine) Evaluate(snap *snapshot.Snapshot, year int) (*Result, error) {
	p := preprocess(snap)

	e.logger.WithFields(logger.Fields{
		"year":         year,
		"transactions": len(p.active),
		"persons":      len(p.byPerson),
		"accounts":     len(snap.Accounts),
	}).Info("Starting evaluation")

	result := &Result{
		Year:                year,
		CyclesByPerson:      make(map[string][]*debtcycle.Cycle),
		OutstandingByPerson: make(map[string][]*debtcycle.Cycle),
		Balances:            make(map[string]familybalance.BalanceView),
		CashbackByAccount:   make(map[string]*cashback.AccountSummary),
	}

	e.evaluateCycles(p, year, result)
	e.evaluateBalances(p, snap.Accounts, result)
	e.evaluateCashback(p, snap.Accounts, result)
	result.SplitGroups = splitbill.NewGrouper(snap.Persons).BuildGroups(p.active)

	e.logger.WithFields(logger.Fields{
		"persons_with_cycles": len(result.CyclesByPerson),
		"split_groups":        len(result.SplitGroups),
		"families":            len(result.Families),
	}).Info("Evaluation complete")

	return result, nil
}

func (e *Engine) evaluateCycles(p *prepared, year int, result *Result) {
	for personID, txs := range p.byPerson {
		cycles := e.aggregator.BuildCycles(txs, p.statusesFor(personID))
		if len(cycles) == 0 {
			// A person whose transactions never form a cycle (transfers
			// only, say) gets no month strip at all rather than an empty
			// synthesized one. Keeps the report to people with debt
			// history.
			continue
		}
		result.CyclesByPerson[personID] = e.aggregator.YearView(cycles, year)
		if outstanding := e.aggregator.OutstandingBefore(cycles, year); len(outstanding) > 0 {
			result.OutstandingByPerson[personID] = outstanding
		}
	}
}

func (e *Engine) evaluateBalances(p *prepared, accounts []*models.Account, result *Result) {
	resolver := familybalance.NewResolver(accounts)
	if e.config.DeriveNetBalances {
		resolver = resolver.WithNetBalances(p.netBalances(accounts))
	}

	for _, acc := range accounts {
		result.Balances[acc.ID] = resolver.Balance(acc.ID)
	}
	result.Families = resolver.Families()
}

// evaluateCashback summarizes realized and entitled cashback per account for
// the selected year. Entitlement is evaluated per (account, cycle) pair: a
// fresh tier evaluator per month bucket so spend totals and reward caps
// reset at each cycle boundary.
func (e *Engine) evaluateCashback(p *prepared, accounts []*models.Account, result *Result) {
	for _, acc := range accounts {
		txs := p.byAccount[acc.ID]
		if len(txs) == 0 {
			continue
		}

		summary := cashback.NewAccountSummary(acc.ID)
		touched := false

		for _, bucket := range cycleTagsOf(txs) {
			if y, _, ok := monthtag.Parse(bucket); ok && y != result.Year {
				continue
			}

			cycleTxs := transactionsInBucket(txs, bucket)
			evaluator := cashback.NewTierEvaluator(acc.CashbackConfig)
			for _, tx := range cycleTxs {
				summary.AddRealized(cashback.Resolve(tx))
				summary.AddEntitled(evaluator.Entitle(tx))
				touched = true
			}
		}

		if touched {
			result.CashbackByAccount[acc.ID] = summary
		}
	}
}

// transactionsInBucket returns the bucket's transactions in occurrence
// order, the order tier evaluation is defined over.
func transactionsInBucket(txs []*models.Transaction, bucket string) []*models.Transaction {
	var selected []*models.Transaction
	for _, tx := range txs {
		if monthtag.BucketFor(tx.Tag) == bucket {
			selected = append(selected, tx)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].OccurredAt.Before(selected[j].OccurredAt)
	})
	return selected
}
