package rules

import (
	"slices"

	"github.com/jakechorley/staff-cover/pkg/core/model"
)

// ConsecutiveRun returns the length of the run of busy periods containing period, following
// the day's period order. A period outside the order is a run of one if busy.
func ConsecutiveRun(order []model.PeriodID, busy []model.PeriodID, period model.PeriodID) int {
	if !slices.Contains(busy, period) {
		return 0
	}

	idx := slices.Index(order, period)
	if idx < 0 {
		return 1
	}

	run := 1
	for i := idx - 1; i >= 0 && slices.Contains(busy, order[i]); i-- {
		run++
	}
	for i := idx + 1; i < len(order) && slices.Contains(busy, order[i]); i++ {
		run++
	}
	return run
}

// LongestRun returns the longest run of busy periods in the day's order
func LongestRun(order []model.PeriodID, busy []model.PeriodID) int {
	longest, current := 0, 0
	for _, p := range order {
		if slices.Contains(busy, p) {
			current++
			longest = max(longest, current)
		} else {
			current = 0
		}
	}
	if longest == 0 && len(busy) > 0 {
		return 1
	}
	return longest
}
