package grid

import "fmt"

// DayNames are the column headings, Sunday first.
var DayNames = [DaysPerWeek]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Grid describes the quantization of one scheduling week.
type Grid struct {
	SlotsPerDay int      `json:"slots_per_day"`
	Start       *Clock   `json:"start,omitempty"`
	End         *Clock   `json:"end,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

// NewGrid derives the grid from a daily start/end range.
func NewGrid(start, end Clock) (Grid, error) {
	labels, err := Labels(start, end)
	if err != nil {
		return Grid{}, err
	}
	return Grid{
		SlotsPerDay: len(labels),
		Start:       &start,
		End:         &end,
		Labels:      labels,
	}, nil
}

// NewFixedGrid creates an unlabeled grid with a fixed number of rows per day.
func NewFixedGrid(slotsPerDay int) (Grid, error) {
	if slotsPerDay <= 0 {
		return Grid{}, fmt.Errorf("%w: slots per day %d", ErrInvalidRange, slotsPerDay)
	}
	return Grid{SlotsPerDay: slotsPerDay}, nil
}

// SlotCount returns the number of slots in the week.
func (g Grid) SlotCount() int {
	return SlotCount(g.SlotsPerDay)
}

// SlotID composes a slot id within this grid.
func (g Grid) SlotID(day, timeOfDay int) (int, error) {
	return ToSlotID(day, timeOfDay, g.SlotsPerDay)
}

// Position splits a slot id within this grid.
func (g Grid) Position(slotID int) (day, timeOfDay int, err error) {
	return FromSlotID(slotID, g.SlotsPerDay)
}

// HourStarts returns the row indices whose label falls on the hour.
func (g Grid) HourStarts() []int {
	if g.Start == nil {
		return nil
	}
	var rows []int
	for row := 0; row < g.SlotsPerDay; row++ {
		if (g.Start.Minutes()+row*SlotMinutes)%60 == 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// CellLabel names a slot for display, e.g. "Tue 10:15am".
func (g Grid) CellLabel(slotID int) (string, error) {
	day, row, err := g.Position(slotID)
	if err != nil {
		return "", err
	}
	if row < len(g.Labels) {
		return DayNames[day] + " " + g.Labels[row], nil
	}
	return fmt.Sprintf("%s #%d", DayNames[day], row), nil
}
