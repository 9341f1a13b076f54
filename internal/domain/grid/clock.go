package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// Clock is a wall-clock time of day on the quarter hour.
type Clock struct {
	Hour   int `json:"hour" yaml:"hour"`
	Minute int `json:"minute" yaml:"minute"`
}

// ParseClock parses "H:MM" or "HH:MM" in 24-hour form.
func ParseClock(s string) (Clock, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	c := Clock{Hour: hour, Minute: minute}
	if err := c.validate(); err != nil {
		return Clock{}, err
	}
	return c, nil
}

func (c Clock) validate() error {
	if c.Hour < 0 || c.Hour > 23 {
		return fmt.Errorf("%w: hour %d", ErrInvalidRange, c.Hour)
	}
	if c.Minute < 0 || c.Minute > 59 || c.Minute%SlotMinutes != 0 {
		return fmt.Errorf("%w: minute %d", ErrInvalidRange, c.Minute)
	}
	return nil
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// String renders the clock as "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Label renders the clock in 12-hour form, e.g. "9:30am" or "12:00pm".
func (c Clock) Label() string {
	suffix := "am"
	if c.Hour >= 12 {
		suffix = "pm"
	}
	hour := c.Hour % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d%s", hour, c.Minute, suffix)
}

func clockAt(minutes int) Clock {
	return Clock{Hour: minutes / 60, Minute: minutes % 60}
}
