package debtcycle

import (
	"testing"
	"time"
)

func cycleWithTag(tag string, latest time.Time) *Cycle {
	return &Cycle{Tag: tag, LatestActivity: latest}
}

func tagsOf(cycles []*Cycle) []string {
	tags := make([]string, len(cycles))
	for i, c := range cycles {
		tags[i] = c.Tag
	}
	return tags
}

func TestSortForDisplay(t *testing.T) {
	cycles := []*Cycle{
		cycleWithTag("Untagged", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
		cycleWithTag("2025-11", time.Time{}),
		cycleWithTag("old-loan", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)),
		cycleWithTag("2026-01", time.Time{}),
		cycleWithTag("DEC25", time.Time{}),
	}

	SortForDisplay(cycles)

	want := []string{"2026-01", "DEC25", "2025-11", "old-loan", "Untagged"}
	got := tagsOf(cycles)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSortPillStripCurrentYearAscends(t *testing.T) {
	cycles := []*Cycle{
		cycleWithTag("2026-05", time.Time{}),
		cycleWithTag("2026-01", time.Time{}),
		cycleWithTag("2026-03", time.Time{}),
	}

	SortPillStrip(cycles, true)

	got := tagsOf(cycles)
	want := []string{"2026-01", "2026-03", "2026-05"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("current year order = %v, want %v", got, want)
		}
	}
}

func TestSortPillStripPastYearDescends(t *testing.T) {
	cycles := []*Cycle{
		cycleWithTag("2025-02", time.Time{}),
		cycleWithTag("2025-10", time.Time{}),
		cycleWithTag("2025-06", time.Time{}),
	}

	SortPillStrip(cycles, false)

	got := tagsOf(cycles)
	want := []string{"2025-10", "2025-06", "2025-02"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("past year order = %v, want %v", got, want)
		}
	}
}

func TestSortMostRecentFirst(t *testing.T) {
	cycles := []*Cycle{
		cycleWithTag("2024-07", time.Time{}),
		cycleWithTag("2025-09", time.Time{}),
		cycleWithTag("2025-01", time.Time{}),
	}

	SortMostRecentFirst(cycles)

	got := tagsOf(cycles)
	want := []string{"2025-09", "2025-01", "2024-07"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
