package calendar

import (
	"time"

	"medibook/internal/models"
)

// Navigator tracks the displayed month and clamps navigation to the range
// [minDate's month, today + maxMonthsAhead]. Attempts to move outside the
// range are no-ops, not errors.
type Navigator struct {
	year  int
	month time.Month

	minIndex int
	maxIndex int
}

// NewNavigator starts at minDate's month (normally today's). maxMonthsAhead
// bounds forward navigation relative to today.
func NewNavigator(today, minDate models.Date, maxMonthsAhead int) *Navigator {
	if maxMonthsAhead <= 0 {
		maxMonthsAhead = 6
	}
	maxDate := today.AddMonths(maxMonthsAhead)
	return &Navigator{
		year:     minDate.Year,
		month:    minDate.Month,
		minIndex: monthIndex(minDate.Year, minDate.Month),
		maxIndex: monthIndex(maxDate.Year, maxDate.Month),
	}
}

// Current returns the displayed year and month.
func (n *Navigator) Current() (int, time.Month) {
	return n.year, n.month
}

// Grid returns the cells for the displayed month.
func (n *Navigator) Grid() []Cell {
	return MonthGrid(n.year, n.month)
}

// Next advances one month; returns false when already at the upper bound.
func (n *Navigator) Next() bool {
	return n.shift(1)
}

// Prev moves back one month; returns false when already at the lower bound.
func (n *Navigator) Prev() bool {
	return n.shift(-1)
}

// CanPrev reports whether a month earlier than the displayed one is in range.
func (n *Navigator) CanPrev() bool {
	return monthIndex(n.year, n.month) > n.minIndex
}

// CanNext reports whether a month later than the displayed one is in range.
func (n *Navigator) CanNext() bool {
	return monthIndex(n.year, n.month) < n.maxIndex
}

// Goto displays the given month, clamped to the navigation bounds.
func (n *Navigator) Goto(year int, month time.Month) {
	idx := monthIndex(year, month)
	if idx < n.minIndex {
		idx = n.minIndex
	}
	if idx > n.maxIndex {
		idx = n.maxIndex
	}
	n.year = idx / 12
	n.month = time.Month(idx%12 + 1)
}

func (n *Navigator) shift(delta int) bool {
	idx := monthIndex(n.year, n.month) + delta
	if idx < n.minIndex || idx > n.maxIndex {
		return false
	}
	n.year = idx / 12
	n.month = time.Month(idx%12 + 1)
	return true
}

func monthIndex(year int, month time.Month) int {
	return year*12 + int(month) - 1
}
