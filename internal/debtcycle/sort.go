package debtcycle

import (
	"sort"

	"finance-cycle-engine/internal/monthtag"
)

// SortForDisplay orders cycles for the default all-years listing: cycles
// with a resolvable (year, month) pair sort by that pair descending; opaque
// and untagged cycles come after all dated ones, most recent activity first.
func SortForDisplay(cycles []*Cycle) {
	sort.SliceStable(cycles, func(i, j int) bool {
		a, b := cycles[i], cycles[j]
		_, _, aDated := monthtag.Parse(a.Tag)
		_, _, bDated := monthtag.Parse(b.Tag)

		switch {
		case aDated && bDated:
			return monthtag.Compare(a.Tag, b.Tag) > 0
		case aDated:
			return true
		case bDated:
			return false
		default:
			return a.LatestActivity.After(b.LatestActivity)
		}
	})
}

// SortPillStrip orders the month pills for one year's strip. Within the
// current year users scan forward toward now, so months ascend; for any
// other year they scan backward from the most recent month, so months
// descend.
func SortPillStrip(cycles []*Cycle, currentYear bool) {
	sort.SliceStable(cycles, func(i, j int) bool {
		cmp := monthtag.Compare(cycles[i].Tag, cycles[j].Tag)
		if currentYear {
			return cmp < 0
		}
		return cmp > 0
	})
}

// SortMostRecentFirst orders cycles by (year desc, month desc).
func SortMostRecentFirst(cycles []*Cycle) {
	sort.SliceStable(cycles, func(i, j int) bool {
		return monthtag.Compare(cycles[i].Tag, cycles[j].Tag) > 0
	})
}
