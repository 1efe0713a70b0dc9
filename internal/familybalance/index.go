// Package familybalance resolves effective balances and credit utilization
// for accounts, including credit cards that share one limit across a parent
// account and its children, optionally secured by a savings or asset account.
//
// Family membership is established in a single indexed pass over the account
// snapshot (account id -> family id) before any balance math runs, so the
// grouping never depends on traversal order.
package familybalance

import (
	"sort"

	"finance-cycle-engine/internal/models"
)

// Family is one connected component of the account graph: a parent card (or
// a card standing alone with collateral), its children, and the asset
// securing the line when one exists.
type Family struct {
	ID           string            `json:"id"`
	Parent       *models.Account   `json:"parent,omitempty"`
	Children     []*models.Account `json:"children,omitempty"`
	SecuredAsset *models.Account   `json:"secured_asset,omitempty"`
}

// Members returns every card in the family, parent first.
func (f *Family) Members() []*models.Account {
	members := make([]*models.Account, 0, len(f.Children)+1)
	if f.Parent != nil {
		members = append(members, f.Parent)
	}
	return append(members, f.Children...)
}

// Index holds the prebuilt lookups for one account snapshot.
type Index struct {
	// ByID maps account id to the account record.
	ByID map[string]*models.Account

	// FamilyOf maps an account id to its family id (the parent's id, or the
	// card's own id for a two-node asset-secured family).
	FamilyOf map[string]string

	// ChildrenOf maps a parent account id to the cards drawing on its limit.
	ChildrenOf map[string][]*models.Account

	// SecuringAsset maps a card id to the asset account collateralizing it.
	SecuringAsset map[string]*models.Account

	// AllAccounts holds the snapshot in input order.
	AllAccounts []*models.Account
}

// BuildIndex constructs the family index from an account snapshot.
func BuildIndex(accounts []*models.Account) *Index {
	index := &Index{
		ByID:          make(map[string]*models.Account, len(accounts)),
		FamilyOf:      make(map[string]string, len(accounts)),
		ChildrenOf:    make(map[string][]*models.Account),
		SecuringAsset: make(map[string]*models.Account),
		AllAccounts:   accounts,
	}

	for _, acc := range accounts {
		index.ByID[acc.ID] = acc
	}

	for _, acc := range accounts {
		parentID := acc.SharedLimitParentID()
		if parentID != "" && parentID != acc.ID {
			if _, ok := index.ByID[parentID]; ok {
				index.ChildrenOf[parentID] = append(index.ChildrenOf[parentID], acc)
				index.FamilyOf[acc.ID] = parentID
				continue
			}
			// Dangling parent pointer: the card falls back to standalone.
		}

		if asset, ok := index.ByID[acc.SecuredByAccountID]; ok && asset.Type.IsAssetLike() {
			index.SecuringAsset[acc.ID] = asset
			index.FamilyOf[asset.ID] = acc.ID
		}

		index.FamilyOf[acc.ID] = acc.ID
	}

	// A parent with children anchors its own family id.
	for parentID := range index.ChildrenOf {
		index.FamilyOf[parentID] = parentID
	}

	return index
}

// Parent resolves the shared-limit parent for an account, or nil when the
// account stands alone (including the dangling-pointer fallback).
func (idx *Index) Parent(acc *models.Account) *models.Account {
	parentID := acc.SharedLimitParentID()
	if parentID == "" || parentID == acc.ID {
		return nil
	}
	return idx.ByID[parentID]
}

// Families groups the snapshot into display families: any account heading a
// shared-limit group, plus cards with only a securing asset (two-node
// families). Accounts that belong to no family are omitted. Output order is
// stable (sorted by family id).
func (idx *Index) Families() []*Family {
	seen := make(map[string]bool)
	var ids []string

	for _, acc := range idx.AllAccounts {
		famID := idx.FamilyOf[acc.ID]
		head, ok := idx.ByID[famID]
		if !ok || seen[famID] {
			continue
		}

		isFamily := len(idx.ChildrenOf[famID]) > 0 ||
			head.IsParent() ||
			idx.SecuringAsset[famID] != nil
		if !isFamily {
			continue
		}

		seen[famID] = true
		ids = append(ids, famID)
	}

	sort.Strings(ids)

	families := make([]*Family, 0, len(ids))
	for _, id := range ids {
		families = append(families, &Family{
			ID:           id,
			Parent:       idx.ByID[id],
			Children:     idx.ChildrenOf[id],
			SecuredAsset: idx.SecuringAsset[id],
		})
	}
	return families
}
