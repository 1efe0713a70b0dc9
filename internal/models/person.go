package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Person is one entry of the debtor directory. A group profile aggregates the
// cycles of every person whose GroupParentID points at it.
type Person struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	IsOwner       bool   `json:"is_owner"`
	IsGroup       bool   `json:"is_group"`
	GroupParentID string `json:"group_parent_id,omitempty"`
}

// Validate performs basic validation on the Person
func (p *Person) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("person ID cannot be empty")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("person name cannot be empty")
	}
	if p.IsGroup && p.GroupParentID != "" {
		return fmt.Errorf("group profile %s cannot itself belong to a group", p.ID)
	}
	return nil
}

// String returns a string representation of the Person
func (p *Person) String() string {
	return fmt.Sprintf("Person{ID: %s, Name: %s, Owner: %t, Group: %t}",
		p.ID, p.Name, p.IsOwner, p.IsGroup)
}

// MembersOf returns the person ids aggregated by a profile: the profile's own
// id plus, for group profiles, every directory entry linked to it.
func MembersOf(profile *Person, directory []*Person) []string {
	ids := []string{profile.ID}
	if !profile.IsGroup {
		return ids
	}
	for _, p := range directory {
		if p.GroupParentID == profile.ID && p.ID != profile.ID {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// DebtTagStatus is an authoritative server-computed cycle status. When
// present for a tag it overrides the locally recomputed remainder and
// settlement flag.
type DebtTagStatus struct {
	PersonID           string           `json:"person_id,omitempty"`
	Tag                string           `json:"tag"`
	RemainingPrincipal *decimal.Decimal `json:"remaining_principal,omitempty"`
	Status             string           `json:"status,omitempty"`
	Links              []string         `json:"links,omitempty"`
}

// CycleStatusSettled is the server-side status value marking a cycle settled.
const CycleStatusSettled = "settled"

// IsSettled reports whether the server marked this cycle settled.
func (s *DebtTagStatus) IsSettled() bool {
	return strings.EqualFold(strings.TrimSpace(s.Status), CycleStatusSettled)
}
