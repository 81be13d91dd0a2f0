// Package calendar produces the month grid backing the booking calendar.
package calendar

import (
	"time"

	"medibook/internal/models"
)

// Cell is one grid position: either a leading blank used to align the first
// of the month under its weekday column, or a real date.
type Cell struct {
	Date  models.Date `json:"date,omitzero"`
	Blank bool        `json:"blank,omitempty"`
}

// MonthGrid returns the cells for a month as a flat, week-major sequence
// using a Monday-first week convention. Leading blanks align the first date;
// no trailing padding is emitted, the layout wraps naturally.
func MonthGrid(year int, month time.Month) []Cell {
	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(firstDay.Weekday()) + 6) % 7 // Monday-first
	total := daysIn(month, year)

	cells := make([]Cell, 0, offset+total)
	for i := 0; i < offset; i++ {
		cells = append(cells, Cell{Blank: true})
	}
	for day := 1; day <= total; day++ {
		cells = append(cells, Cell{Date: models.Date{Year: year, Month: month, Day: day}})
	}
	return cells
}

// Weeks chunks grid cells into rows of seven. The last row may be short.
func Weeks(cells []Cell) [][]Cell {
	var rows [][]Cell
	for len(cells) > 0 {
		n := 7
		if len(cells) < n {
			n = len(cells)
		}
		rows = append(rows, cells[:n])
		cells = cells[n:]
	}
	return rows
}

func daysIn(m time.Month, year int) int {
	switch m {
	case time.February:
		if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}
