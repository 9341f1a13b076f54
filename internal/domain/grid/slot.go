package grid

import "fmt"

const (
	// DaysPerWeek is the number of day columns in the weekly grid.
	DaysPerWeek = 7
	// SlotMinutes is the length of one slot.
	SlotMinutes = 15
)

// SlotCount returns the number of slots in a week of slotsPerDay rows.
func SlotCount(slotsPerDay int) int {
	if slotsPerDay <= 0 {
		return 0
	}
	return DaysPerWeek * slotsPerDay
}

// ToSlotID composes a slot id from a day column and a time-of-day row.
func ToSlotID(day, timeOfDay, slotsPerDay int) (int, error) {
	if slotsPerDay <= 0 {
		return 0, fmt.Errorf("%w: slots per day %d", ErrOutOfRange, slotsPerDay)
	}
	if day < 0 || day >= DaysPerWeek {
		return 0, fmt.Errorf("%w: day %d", ErrOutOfRange, day)
	}
	if timeOfDay < 0 || timeOfDay >= slotsPerDay {
		return 0, fmt.Errorf("%w: time of day %d", ErrOutOfRange, timeOfDay)
	}
	return day*slotsPerDay + timeOfDay, nil
}

// FromSlotID splits a slot id into its day column and time-of-day row.
func FromSlotID(slotID, slotsPerDay int) (day, timeOfDay int, err error) {
	if slotID < 0 || slotID >= SlotCount(slotsPerDay) {
		return 0, 0, fmt.Errorf("%w: slot %d", ErrOutOfRange, slotID)
	}
	return slotID / slotsPerDay, slotID % slotsPerDay, nil
}

// CheckSlot reports ErrOutOfRange unless slotID addresses one of count slots.
func CheckSlot(slotID, count int) error {
	if slotID < 0 || slotID >= count {
		return fmt.Errorf("%w: slot %d of %d", ErrOutOfRange, slotID, count)
	}
	return nil
}
