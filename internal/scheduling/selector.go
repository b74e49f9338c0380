package scheduling

import (
	"cmp"
	"slices"
	"time"

	"tablebook/pkg/model"
)

// Candidate is an eligible table together with its active bookings near the
// requested time.
type Candidate struct {
	Table    *model.Table
	Bookings []*model.Booking
}

func sortCandidates(candidates []Candidate) []Candidate {
	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(a, b Candidate) int {
		if c := cmp.Compare(a.Table.Capacity, b.Table.Capacity); c != 0 {
			return c
		}
		return cmp.Compare(a.Table.TableNumber, b.Table.TableNumber)
	})
	return sorted
}

// SelectTable returns the tightest-fitting table with no booking overlapping
// [start, end), or nil. Within one capacity tier an empty table wins over a
// free table that already carries bookings; ties fall to the lower number.
func SelectTable(partySize int, start, end time.Time, candidates []Candidate, defaultMinutes int) *model.Table {
	sorted := sortCandidates(candidates)

	for i := 0; i < len(sorted); {
		capacity := sorted[i].Table.Capacity
		var free *model.Table

		for ; i < len(sorted) && sorted[i].Table.Capacity == capacity; i++ {
			c := sorted[i]
			if c.Table.Capacity < partySize {
				continue
			}
			if len(c.Bookings) == 0 {
				return c.Table
			}
			if free == nil && !HasConflict(c.Bookings, start, end, defaultMinutes) {
				free = c.Table
			}
		}

		if free != nil {
			return free
		}
	}

	return nil
}
