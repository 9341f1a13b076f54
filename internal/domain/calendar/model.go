package calendar

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rpggio/groupmeet/internal/domain/availability"
)

// ReservedPrefix marks calendarData keys that hold metadata, not users.
const ReservedPrefix = "_"

// IsReservedKey reports whether key is a metadata key.
func IsReservedKey(key string) bool {
	return strings.HasPrefix(key, ReservedPrefix)
}

// Dataset is the stored document of one scheduling instance.
type Dataset struct {
	WidgetID     string                     `json:"widgetId"`
	Facilitator  string                     `json:"facilitator"`
	CalendarData map[string]json.RawMessage `json:"calendarData"`

	// extra keeps unknown top-level fields across a read-modify-write.
	extra map[string]json.RawMessage
}

func newDataset(key, facilitator string) *Dataset {
	return &Dataset{
		WidgetID:     key,
		Facilitator:  facilitator,
		CalendarData: map[string]json.RawMessage{},
	}
}

// HasRecord reports whether the user has a stored entry.
func (d *Dataset) HasRecord(userID string) bool {
	_, ok := d.CalendarData[userID]
	return ok
}

// Record returns the user's normalized vector.
func (d *Dataset) Record(userID string, length int, policy availability.Policy) availability.Vector {
	return availability.Normalize(availability.Decode(d.CalendarData[userID]), length, policy)
}

// SetRecord stores the user's vector in dense form.
func (d *Dataset) SetRecord(userID string, v availability.Vector) {
	if d.CalendarData == nil {
		d.CalendarData = map[string]json.RawMessage{}
	}
	data, _ := json.Marshal([]bool(v))
	d.CalendarData[userID] = data
}

// Users returns the non-reserved user ids in sorted order.
func (d *Dataset) Users() []string {
	users := make([]string, 0, len(d.CalendarData))
	for key := range d.CalendarData {
		if !IsReservedKey(key) {
			users = append(users, key)
		}
	}
	sort.Strings(users)
	return users
}

// Records normalizes every user's vector.
func (d *Dataset) Records(length int, policy availability.Policy) map[string]availability.Vector {
	records := make(map[string]availability.Vector, len(d.CalendarData))
	for _, user := range d.Users() {
		records[user] = d.Record(user, length, policy)
	}
	return records
}

// MarshalJSON writes the known fields over any preserved extras. A
// facilitator that was stored with the wrong type is written back untouched.
func (d Dataset) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.extra)+3)
	for k, v := range d.extra {
		out[k] = v
	}
	out["widgetId"] = d.WidgetID
	if _, kept := d.extra["facilitator"]; !kept || d.Facilitator != "" {
		out["facilitator"] = d.Facilitator
	}
	data := d.CalendarData
	if data == nil {
		data = map[string]json.RawMessage{}
	}
	out["calendarData"] = data
	return json.Marshal(out)
}

// UnmarshalJSON reads the known fields and keeps the rest. Only a document
// that is not a JSON object fails; a known field with the wrong type is
// recovered locally: widgetId reads as missing, facilitator is kept as an
// opaque value and calendarData reads as empty.
func (d *Dataset) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*d = Dataset{CalendarData: map[string]json.RawMessage{}}
	for key, value := range fields {
		switch key {
		case "widgetId":
			_ = json.Unmarshal(value, &d.WidgetID)
		case "facilitator":
			if err := json.Unmarshal(value, &d.Facilitator); err != nil {
				d.keep(key, value)
			}
		case "calendarData":
			var entries map[string]json.RawMessage
			if err := json.Unmarshal(value, &entries); err == nil && entries != nil {
				d.CalendarData = entries
			}
		default:
			d.keep(key, value)
		}
	}
	return nil
}

func (d *Dataset) keep(key string, value json.RawMessage) {
	if d.extra == nil {
		d.extra = map[string]json.RawMessage{}
	}
	d.extra[key] = value
}

func decodeDataset(data json.RawMessage) (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("%w: %v", errUninitialized, err)
	}
	if ds.WidgetID == "" {
		return nil, errUninitialized
	}
	return &ds, nil
}
