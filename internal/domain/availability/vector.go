package availability

import "github.com/rpggio/groupmeet/internal/domain/grid"

// ErrOutOfRange is returned for slot ids outside a vector.
var ErrOutOfRange = grid.ErrOutOfRange

// Vector is the canonical dense free/busy record; index i is true when free.
type Vector []bool

// NewVector allocates an all-busy vector.
func NewVector(length int) Vector {
	if length < 0 {
		length = 0
	}
	return make(Vector, length)
}

// Clone returns an independent copy.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// FreeSlots returns the ids of all free slots in ascending order.
func (v Vector) FreeSlots() []int {
	var ids []int
	for i, free := range v {
		if free {
			ids = append(ids, i)
		}
	}
	return ids
}

// Equal reports whether both vectors hold the same values.
func (v Vector) Equal(other Vector) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if v[i] != other[i] {
			return false
		}
	}
	return true
}

// Toggle returns a copy of v with one slot flipped.
func Toggle(v Vector, slotID int) (Vector, error) {
	if err := grid.CheckSlot(slotID, len(v)); err != nil {
		return nil, err
	}
	out := v.Clone()
	out[slotID] = !out[slotID]
	return out, nil
}

// ApplyRange returns a copy of v with every listed slot set to value.
func ApplyRange(v Vector, slotIDs []int, value bool) (Vector, error) {
	for _, id := range slotIDs {
		if err := grid.CheckSlot(id, len(v)); err != nil {
			return nil, err
		}
	}
	out := v.Clone()
	for _, id := range slotIDs {
		out[id] = value
	}
	return out, nil
}
