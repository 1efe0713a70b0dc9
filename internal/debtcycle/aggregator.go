package debtcycle

import (
	"encoding/json"
	"time"

	"finance-cycle-engine/internal/models"
	"finance-cycle-engine/internal/monthtag"

	"github.com/shopspring/decimal"
)

// Cycle is one calendar-month bucket of lend/repay activity for a person.
// Derived on every read, never persisted.
type Cycle struct {
	Tag          string                `json:"tag"`
	Transactions []*models.Transaction `json:"-"`

	Lend  decimal.Decimal `json:"lend"`
	Repay decimal.Decimal `json:"repay"`

	// Remains and Settled carry provenance: authoritative when a server
	// status record covered this tag, local otherwise.
	Remains models.Resolved[decimal.Decimal] `json:"-"`
	Settled models.Resolved[bool]            `json:"-"`

	// LatestActivity is the most recent transaction timestamp in the cycle,
	// used as the ordering fallback for tags without a (year, month) pair.
	LatestActivity time.Time `json:"latest_activity,omitempty"`
}

// HasActivity reports whether any transaction landed in this cycle, as
// opposed to a synthesized empty month slot.
func (c *Cycle) HasActivity() bool {
	return len(c.Transactions) > 0
}

// IsSettled returns the resolved settlement flag.
func (c *Cycle) IsSettled() bool {
	return c.Settled.Value
}

// RemainsAmount returns the resolved outstanding remainder.
func (c *Cycle) RemainsAmount() decimal.Decimal {
	return c.Remains.Value
}

// MarshalJSON flattens the resolved fields so serialized cycles carry the
// remainder and settlement state alongside their provenance.
func (c *Cycle) MarshalJSON() ([]byte, error) {
	type alias Cycle
	return json.Marshal(&struct {
		*alias
		Remains       decimal.Decimal `json:"remains"`
		Settled       bool            `json:"settled"`
		Authoritative bool            `json:"authoritative,omitempty"`
	}{
		alias:         (*alias)(c),
		Remains:       c.Remains.Value,
		Settled:       c.Settled.Value,
		Authoritative: c.Remains.IsAuthoritative() || c.Settled.IsAuthoritative(),
	})
}

// role classifies how a transaction participates in a cycle.
type role int

const (
	roleNone role = iota
	roleLend
	roleRepay
)

// classify decides whether a transaction counts as lend, repay, or neither
// for its person's cycle. Plain income/expense without a person link and
// transfers never touch a cycle.
func classify(tx *models.Transaction) role {
	switch tx.Type {
	case models.TransactionTypeDebt:
		if tx.Amount.IsNegative() {
			return roleLend
		}
		if tx.Amount.IsPositive() {
			return roleRepay
		}
		return roleNone
	case models.TransactionTypeExpense:
		if tx.HasPerson() {
			return roleLend
		}
		return roleNone
	case models.TransactionTypeRepayment:
		return roleRepay
	case models.TransactionTypeIncome:
		if tx.HasPerson() {
			return roleRepay
		}
		return roleNone
	default:
		return roleNone
	}
}

// Aggregator derives debt cycles from a person's transaction set.
type Aggregator struct {
	config *Config
}

// NewAggregator creates an aggregator with the given configuration; nil
// selects the defaults.
func NewAggregator(config *Config) *Aggregator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Aggregator{config: config}
}

// BuildCycles groups the given transactions (already scoped to one person or
// one group profile) into cycles and resolves remains/settled against the
// optional authoritative status records. Voided transactions are skipped.
//
// The result is deterministic for identical inputs; callers needing a
// display order apply SortForDisplay or a year view afterwards.
func (a *Aggregator) BuildCycles(transactions []*models.Transaction, statuses []*models.DebtTagStatus) []*Cycle {
	byTag := make(map[string]*Cycle)
	var order []string

	for _, tx := range transactions {
		if tx.IsVoid() {
			continue
		}

		r := classify(tx)
		if r == roleNone {
			continue
		}

		bucket := monthtag.BucketFor(tx.Tag)
		cycle, ok := byTag[bucket]
		if !ok {
			cycle = &Cycle{
				Tag:   bucket,
				Lend:  decimal.Zero,
				Repay: decimal.Zero,
			}
			byTag[bucket] = cycle
			order = append(order, bucket)
		}

		cycle.Transactions = append(cycle.Transactions, tx)
		if tx.OccurredAt.After(cycle.LatestActivity) {
			cycle.LatestActivity = tx.OccurredAt
		}

		switch r {
		case roleLend:
			cycle.Lend = cycle.Lend.Add(tx.EffectiveAmount())
		case roleRepay:
			cycle.Repay = cycle.Repay.Add(tx.Amount.Abs())
		}
	}

	statusByTag := indexStatuses(statuses)

	cycles := make([]*Cycle, 0, len(byTag))
	for _, tag := range order {
		cycle := byTag[tag]
		a.resolve(cycle, statusByTag[cycle.Tag])
		cycles = append(cycles, cycle)
	}

	return cycles
}

// indexStatuses builds a tag -> status lookup, normalizing status tags so a
// legacy-tagged status record still covers its canonical cycle.
func indexStatuses(statuses []*models.DebtTagStatus) map[string]*models.DebtTagStatus {
	if len(statuses) == 0 {
		return nil
	}
	index := make(map[string]*models.DebtTagStatus, len(statuses))
	for _, s := range statuses {
		index[monthtag.BucketFor(s.Tag)] = s
	}
	return index
}

// resolve fills Remains and Settled, merging the authoritative record over
// the local computation when one exists.
func (a *Aggregator) resolve(cycle *Cycle, status *models.DebtTagStatus) {
	localRemains := cycle.Lend.Sub(cycle.Repay)
	localSettled := cycle.HasActivity() &&
		localRemains.Abs().LessThan(a.config.SettlementTolerance)

	remains := models.Local(localRemains)
	settled := models.Local(localSettled)

	if status != nil {
		if status.RemainingPrincipal != nil {
			remains = remains.Merge(models.Authoritative(*status.RemainingPrincipal))
		}
		if status.Status != "" {
			settled = settled.Merge(models.Authoritative(status.IsSettled()))
		}
	}

	cycle.Remains = remains
	cycle.Settled = settled
}

// YearView returns the cycles belonging to the selected calendar year, with
// empty months synthesized so every month stays selectable. For past years
// all twelve months appear; for the current year only the window from now
// minus the configured number of months through now is guaranteed, but a
// month with real activity is always shown, extending the window when it
// falls outside. Months of other years are never synthesized. The result
// follows the pill-strip sort policy for that year.
func (a *Aggregator) YearView(cycles []*Cycle, year int) []*Cycle {
	now := a.config.Now()
	currentYear := now.Year()
	if year > currentYear {
		return nil
	}

	existing := make(map[string]*Cycle, len(cycles))
	for _, c := range cycles {
		if y, _, ok := monthtag.Parse(c.Tag); ok && y == year {
			existing[c.Tag] = c
		}
	}

	firstMonth, lastMonth := time.January, time.December
	if year == currentYear {
		lastMonth = now.Month()
		firstMonth = lastMonth - time.Month(a.config.CurrentYearWindowMonths)
		if firstMonth < time.January {
			firstMonth = time.January
		}
		// The window only bounds synthesis of empty months; a cycle with
		// activity outside it widens the window so it is never dropped.
		for tag := range existing {
			if _, m, ok := monthtag.Parse(tag); ok {
				if m < firstMonth {
					firstMonth = m
				}
				if m > lastMonth {
					lastMonth = m
				}
			}
		}
	}

	view := make([]*Cycle, 0, int(lastMonth-firstMonth)+1)
	for m := firstMonth; m <= lastMonth; m++ {
		tag := monthtag.Key(year, m)
		if c, ok := existing[tag]; ok {
			view = append(view, c)
			continue
		}
		// A synthesized empty month is never automatically settled.
		view = append(view, &Cycle{
			Tag:     tag,
			Lend:    decimal.Zero,
			Repay:   decimal.Zero,
			Remains: models.Local(decimal.Zero),
			Settled: models.Local(false),
		})
	}

	SortPillStrip(view, year == currentYear)
	return view
}

// OutstandingBefore surfaces every cycle from a year earlier than the
// selected one that is unsettled and carries a remainder beyond the
// settlement tolerance, ordered most recent first.
func (a *Aggregator) OutstandingBefore(cycles []*Cycle, year int) []*Cycle {
	var outstanding []*Cycle
	for _, c := range cycles {
		y, _, ok := monthtag.Parse(c.Tag)
		if !ok || y >= year {
			continue
		}
		if c.IsSettled() {
			continue
		}
		if c.RemainsAmount().Abs().LessThanOrEqual(a.config.SettlementTolerance) {
			continue
		}
		outstanding = append(outstanding, c)
	}

	SortMostRecentFirst(outstanding)
	return outstanding
}
