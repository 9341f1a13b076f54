package availability

import (
	"bytes"
	"encoding/json"
	"math"
)

// Kind tags the shape a stored availability value arrived in.
type Kind int

// Shapes a stored value can take: absent or null, a list of free slot ids,
// a dense free/busy list, or anything else.
const (
	KindMissing Kind = iota
	KindSparse
	KindDense
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindSparse:
		return "sparse"
	case KindDense:
		return "dense"
	default:
		return "malformed"
	}
}

// Raw is a stored availability value before normalization.
type Raw struct {
	Kind   Kind
	Sparse []int
	Dense  []bool
}

// Missing is the raw value of a user who was never seen.
func Missing() Raw { return Raw{Kind: KindMissing} }

// Sparse wraps a list of free slot ids.
func Sparse(ids []int) Raw { return Raw{Kind: KindSparse, Sparse: ids} }

// Dense wraps a boolean vector of any length.
func Dense(v []bool) Raw { return Raw{Kind: KindDense, Dense: v} }

// Malformed marks a value that is neither encoding.
func Malformed() Raw { return Raw{Kind: KindMalformed} }

// Decode classifies a stored JSON value.
func Decode(data json.RawMessage) Raw {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Missing()
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return Malformed()
	}
	if len(items) == 0 {
		return Sparse([]int{})
	}

	if dense, ok := decodeBools(items); ok {
		return Dense(dense)
	}
	if ids, ok := decodeInts(items); ok {
		return Sparse(ids)
	}
	return Malformed()
}

func decodeBools(items []json.RawMessage) ([]bool, bool) {
	out := make([]bool, len(items))
	for i, item := range items {
		if err := json.Unmarshal(item, &out[i]); err != nil {
			return nil, false
		}
	}
	return out, true
}

func decodeInts(items []json.RawMessage) ([]int, bool) {
	out := make([]int, len(items))
	for i, item := range items {
		var f float64
		if err := json.Unmarshal(item, &f); err != nil {
			return nil, false
		}
		if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return nil, false
		}
		out[i] = int(f)
	}
	return out, true
}
