package grid

import "fmt"

// Labels returns one 12-hour label per slot from start through end inclusive.
func Labels(start, end Clock) ([]string, error) {
	n, err := slotsBetween(start, end)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, n)
	for i := 0; i < n; i++ {
		labels = append(labels, clockAt(start.Minutes()+i*SlotMinutes).Label())
	}
	return labels, nil
}

func slotsBetween(start, end Clock) (int, error) {
	if err := start.validate(); err != nil {
		return 0, err
	}
	if err := end.validate(); err != nil {
		return 0, err
	}
	if end.Minutes() < start.Minutes() {
		return 0, fmt.Errorf("%w: %s is before %s", ErrInvalidRange, end, start)
	}
	return (end.Minutes()-start.Minutes())/SlotMinutes + 1, nil
}
