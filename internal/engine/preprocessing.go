package engine

import (
	"finance-cycle-engine/internal/models"
	"finance-cycle-engine/internal/monthtag"
	"finance-cycle-engine/internal/snapshot"

	"github.com/shopspring/decimal"
)

// prepared is the preprocessed view of a snapshot one evaluation works from.
type prepared struct {
	// active holds the non-voided transactions in snapshot order.
	active []*models.Transaction

	// byPerson maps a person profile id to the transactions it aggregates.
	// Group profiles see their members' transactions.
	byPerson map[string][]*models.Transaction

	// byAccount maps an account id to its transactions.
	byAccount map[string][]*models.Transaction

	// netDeltas is the per-account balance movement implied by the active
	// transactions, applied on top of snapshot balances when enabled.
	netDeltas map[string]decimal.Decimal

	// statusesByPerson maps a person id to its authoritative cycle statuses.
	// Statuses without a person id apply to every person.
	statusesByPerson map[string][]*models.DebtTagStatus
	globalStatuses   []*models.DebtTagStatus
}

// preprocess derives the working view: void filtering, person and account
// grouping, balance deltas, and status indexing. Tags are normalized lazily
// by the downstream consumers; preprocessing keeps records untouched.
func preprocess(snap *snapshot.Snapshot) *prepared {
	p := &prepared{
		byPerson:         make(map[string][]*models.Transaction),
		byAccount:        make(map[string][]*models.Transaction),
		netDeltas:        make(map[string]decimal.Decimal),
		statusesByPerson: make(map[string][]*models.DebtTagStatus),
	}

	byPersonID := make(map[string][]*models.Transaction)
	for _, tx := range snap.Transactions {
		if tx.IsVoid() {
			continue
		}
		p.active = append(p.active, tx)

		if tx.AccountID != "" {
			p.byAccount[tx.AccountID] = append(p.byAccount[tx.AccountID], tx)
		}
		if tx.HasPerson() {
			byPersonID[tx.PersonID] = append(byPersonID[tx.PersonID], tx)
		}

		applyDelta(p.netDeltas, tx)
	}

	// Expand the directory: plain persons see their own transactions, group
	// profiles see the union of their members'.
	for _, person := range snap.Persons {
		var txs []*models.Transaction
		for _, member := range models.MembersOf(person, snap.Persons) {
			txs = append(txs, byPersonID[member]...)
		}
		if len(txs) > 0 {
			p.byPerson[person.ID] = txs
		}
	}

	for _, status := range snap.TagStatuses {
		if status.PersonID == "" {
			p.globalStatuses = append(p.globalStatuses, status)
			continue
		}
		p.statusesByPerson[status.PersonID] = append(p.statusesByPerson[status.PersonID], status)
	}

	return p
}

// statusesFor returns the authoritative statuses applying to one person:
// their own records plus the person-less global ones.
func (p *prepared) statusesFor(personID string) []*models.DebtTagStatus {
	own := p.statusesByPerson[personID]
	if len(p.globalStatuses) == 0 {
		return own
	}
	merged := make([]*models.DebtTagStatus, 0, len(own)+len(p.globalStatuses))
	merged = append(merged, p.globalStatuses...)
	merged = append(merged, own...)
	return merged
}

// applyDelta folds one transaction's balance movement into the delta map.
// Transfers move money between two accounts; every other type touches only
// the source account.
func applyDelta(deltas map[string]decimal.Decimal, tx *models.Transaction) {
	if tx.AccountID == "" {
		return
	}

	switch tx.Type {
	case models.TransactionTypeTransfer:
		amount := tx.Amount.Abs()
		deltas[tx.AccountID] = deltas[tx.AccountID].Sub(amount)
		if tx.TargetAccountID != "" {
			deltas[tx.TargetAccountID] = deltas[tx.TargetAccountID].Add(amount)
		}
	default:
		switch tx.Direction() {
		case models.DirectionOutbound:
			deltas[tx.AccountID] = deltas[tx.AccountID].Sub(tx.EffectiveAmount())
		case models.DirectionInbound:
			deltas[tx.AccountID] = deltas[tx.AccountID].Add(tx.Amount.Abs())
		}
	}
}

// netBalances materializes snapshot balance + delta for every account that
// saw movement.
func (p *prepared) netBalances(accounts []*models.Account) map[string]decimal.Decimal {
	nets := make(map[string]decimal.Decimal, len(p.netDeltas))
	for _, acc := range accounts {
		if delta, ok := p.netDeltas[acc.ID]; ok {
			nets[acc.ID] = acc.CurrentBalance.Add(delta)
		}
	}
	return nets
}

// cycleTagsOf returns the normalized month buckets a transaction set spans,
// in first-seen order.
func cycleTagsOf(transactions []*models.Transaction) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, tx := range transactions {
		bucket := monthtag.BucketFor(tx.Tag)
		if !seen[bucket] {
			seen[bucket] = true
			tags = append(tags, bucket)
		}
	}
	return tags
}
