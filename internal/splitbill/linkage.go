// Package splitbill reconstructs split bills from the transaction stream: one
// base transaction fanned out into N participant rows that are correlated
// back together by an explicit link id or by a structured note header.
//
// Note headers are parsed exactly once per transaction into a Linkage value;
// everything downstream consumes the parsed form instead of re-matching the
// note string.
package splitbill

import (
	"fmt"
	"regexp"
	"strings"

	"finance-cycle-engine/internal/models"
)

// Prefix distinguishes the two split flows carried in note headers.
type Prefix string

const (
	PrefixSplitBill  Prefix = "SplitBill"
	PrefixSplitRepay Prefix = "SplitRepay"
)

// LinkageKind discriminates the parsed linkage variants.
type LinkageKind int

const (
	// LinkageNone marks a transaction with no split-bill header.
	LinkageNone LinkageKind = iota
	// LinkageBase marks the base transaction of a split bill.
	LinkageBase
	// LinkageParticipant marks one participant share of a split bill.
	LinkageParticipant
)

// String returns the string representation of LinkageKind
func (k LinkageKind) String() string {
	switch k {
	case LinkageNone:
		return "none"
	case LinkageBase:
		return "base"
	case LinkageParticipant:
		return "participant"
	default:
		return "unknown"
	}
}

// headerRe matches the structured note header:
//
//	[SplitBill] Dinner Group - Pizza Night | extra free text
//	[SplitRepay Base] Trip 2026 - Hotel
//
// Group 1 is the prefix, group 2 the optional " Base" marker, group 3 the
// header body up to the first " | " separator (or end of note).
var headerRe = regexp.MustCompile(`^\[(SplitBill|SplitRepay)(\sBase)?\]\s*(.+?)(?:\s\|\s|$)`)

// Linkage is the parsed split-bill linkage of one transaction.
type Linkage struct {
	Kind   LinkageKind
	Prefix Prefix

	// GroupName and Title come from the header body, split on the first
	// " - " separator. A body without the separator is all title.
	GroupName string
	Title     string

	// BaseID is the explicit metadata.split_parent_id link when present.
	// Empty for legacy participants that only carry a note header.
	BaseID string

	// Remainder is the free text after the " | " separator, if any.
	Remainder string
}

// HasHeader reports whether the transaction carried a split-bill header.
func (l Linkage) HasHeader() bool {
	return l.Kind != LinkageNone
}

// GroupKey returns the grouping key for this linkage: the explicit base id
// when present, else the synthetic prefix:groupName:title key used by legacy
// bills that predate base-transaction linkage.
func (l Linkage) GroupKey() string {
	if l.BaseID != "" {
		return l.BaseID
	}
	return fmt.Sprintf("%s:%s:%s", l.Prefix, l.GroupName, l.Title)
}

// ParseLinkage extracts the split-bill linkage of a transaction. The
// metadata base marker makes a transaction a base on its own: a marked
// transaction with a plain note is still LinkageBase, its group name and
// title supplied by metadata or left empty. Without the marker, a
// transaction needs a matching note header to link at all.
func ParseLinkage(tx *models.Transaction) Linkage {
	match := headerRe.FindStringSubmatch(tx.Note)
	if match == nil {
		if tx.Metadata.Bool(models.MetaSplitBillBase) {
			return Linkage{Kind: LinkageBase, Prefix: PrefixSplitBill}
		}
		return Linkage{Kind: LinkageNone}
	}

	linkage := Linkage{
		Prefix: Prefix(match[1]),
	}
	linkage.GroupName, linkage.Title = splitHeaderBody(match[3])

	if rest := tx.Note[len(match[0]):]; rest != "" {
		linkage.Remainder = strings.TrimSpace(rest)
	}

	if tx.Metadata.Bool(models.MetaSplitBillBase) || match[2] != "" {
		linkage.Kind = LinkageBase
		return linkage
	}

	linkage.Kind = LinkageParticipant
	linkage.BaseID = tx.Metadata.String(models.MetaSplitParentID)
	return linkage
}

// splitHeaderBody splits "Group - Title" on the first " - " separator.
func splitHeaderBody(body string) (groupName, title string) {
	body = strings.TrimSpace(body)
	if idx := strings.Index(body, " - "); idx >= 0 {
		return strings.TrimSpace(body[:idx]), strings.TrimSpace(body[idx+3:])
	}
	return "", body
}
