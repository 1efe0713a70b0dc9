package splitbill

import (
	"sort"
	"time"

	"finance-cycle-engine/internal/cashback"
	"finance-cycle-engine/internal/models"

	"github.com/shopspring/decimal"
)

// Participant is one share of a split bill.
type Participant struct {
	TransactionID   string          `json:"transaction_id"`
	PersonID        string          `json:"person_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Note            string          `json:"note,omitempty"`
	CashbackFixed   decimal.Decimal `json:"cashback_fixed,omitempty"`
	CashbackPercent decimal.Decimal `json:"cashback_percent,omitempty"`

	// CashbackAmount is the resolved cashback for this share, computed from
	// the raw fixed/percent fields through the priority cascade.
	CashbackAmount decimal.Decimal `json:"cashback_amount"`

	OccurredAt time.Time `json:"occurred_at"`
}

// Group is one reconstructed split bill: an optional base transaction plus
// the participant shares correlated to it.
type Group struct {
	// ID is the base transaction id, or the synthetic prefix:groupName:title
	// key for legacy bills that have no base transaction.
	ID string `json:"id"`

	Prefix    Prefix `json:"prefix"`
	GroupName string `json:"group_name"`
	Title     string `json:"title"`

	// QRImageURL is the payment QR attached to the base transaction, if any.
	QRImageURL string `json:"qr_image_url,omitempty"`

	// Base is the base transaction when one exists. Legacy groups have none.
	Base *models.Transaction `json:"base,omitempty"`

	Participants []Participant `json:"participants"`

	// LatestActivity is the most recent OccurredAt across the base and all
	// participants, used for display ordering.
	LatestActivity time.Time `json:"latest_activity"`
}

// HasBase reports whether the group is anchored by a base transaction.
func (g *Group) HasBase() bool {
	return g.Base != nil
}

// Total returns the sum of participant shares.
func (g *Group) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range g.Participants {
		total = total.Add(p.Amount)
	}
	return total
}

// Grouper reconstructs split-bill groups from a transaction snapshot.
type Grouper struct {
	persons map[string]*models.Person
}

// NewGrouper creates a grouper over the given person directory.
func NewGrouper(persons []*models.Person) *Grouper {
	byID := make(map[string]*models.Person, len(persons))
	for _, p := range persons {
		byID[p.ID] = p
	}
	return &Grouper{persons: byID}
}

// BuildGroups correlates base and participant transactions into groups.
// Voided transactions are skipped. Participants link to their base by
// metadata.split_parent_id when present; legacy participants fall back to
// the synthetic header key, merging with a base whose header produces the
// same key. Output is sorted by most recent activity first.
func (g *Grouper) BuildGroups(transactions []*models.Transaction) []*Group {
	type parsed struct {
		tx      *models.Transaction
		linkage Linkage
	}

	var bases, participants []parsed
	for _, tx := range transactions {
		if tx.IsVoid() {
			continue
		}
		linkage := ParseLinkage(tx)
		switch linkage.Kind {
		case LinkageBase:
			bases = append(bases, parsed{tx, linkage})
		case LinkageParticipant:
			participants = append(participants, parsed{tx, linkage})
		}
	}

	groups := make(map[string]*Group)
	var order []string

	register := func(key string, grp *Group) {
		groups[key] = grp
		order = append(order, key)
	}

	// Bases anchor their groups under the transaction id, and additionally
	// under the synthetic key so legacy participants can merge in.
	syntheticToBase := make(map[string]string)
	for _, b := range bases {
		grp := &Group{
			ID:        b.tx.ID,
			Prefix:    b.linkage.Prefix,
			GroupName: groupNameOf(b.tx, b.linkage),
			Title:     b.linkage.Title,
			QRImageURL: b.tx.Metadata.String(models.MetaSplitQRImageURL),
			Base:       b.tx,
		}
		grp.LatestActivity = b.tx.OccurredAt
		register(b.tx.ID, grp)
		// Header-less bases have an empty synthetic key; registering it
		// would let unrelated legacy participants collide on one base.
		if b.linkage.GroupName != "" || b.linkage.Title != "" {
			syntheticToBase[b.linkage.GroupKey()] = b.tx.ID
		}
	}

	for _, p := range participants {
		key := p.linkage.GroupKey()
		if baseID, ok := syntheticToBase[key]; ok {
			key = baseID
		}

		grp, ok := groups[key]
		if !ok {
			grp = &Group{
				ID:        key,
				Prefix:    p.linkage.Prefix,
				GroupName: p.linkage.GroupName,
				Title:     p.linkage.Title,
			}
			register(key, grp)
		}

		grp.Participants = append(grp.Participants, Participant{
			TransactionID:   p.tx.ID,
			PersonID:        p.tx.PersonID,
			Amount:          p.tx.Amount.Abs(),
			Note:            p.linkage.Remainder,
			CashbackFixed:   p.tx.CashbackShareFixed,
			CashbackPercent: p.tx.CashbackSharePercent,
			CashbackAmount:  cashback.Resolve(p.tx).Amount,
			OccurredAt:      p.tx.OccurredAt,
		})
		if p.tx.OccurredAt.After(grp.LatestActivity) {
			grp.LatestActivity = p.tx.OccurredAt
		}
	}

	result := make([]*Group, 0, len(order))
	for _, key := range order {
		result = append(result, groups[key])
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].LatestActivity.After(result[j].LatestActivity)
	})
	return result
}

// QuickRepayCandidates returns the participants who may be offered a
// pre-filled repayment of their share: non-owner participants of a SplitBill
// group. SplitRepay groups and the owner profile never qualify.
func (g *Grouper) QuickRepayCandidates(grp *Group) []Participant {
	if grp.Prefix != PrefixSplitBill {
		return nil
	}

	var candidates []Participant
	for _, p := range grp.Participants {
		if p.PersonID == "" {
			continue
		}
		if person, ok := g.persons[p.PersonID]; ok && person.IsOwner {
			continue
		}
		candidates = append(candidates, p)
	}
	return candidates
}

// groupNameOf prefers the base transaction's metadata group name over the
// value parsed from its note header.
func groupNameOf(tx *models.Transaction, linkage Linkage) string {
	if name := tx.Metadata.String(models.MetaSplitGroupName); name != "" {
		return name
	}
	return linkage.GroupName
}
