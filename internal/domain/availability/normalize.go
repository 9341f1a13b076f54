package availability

import (
	"fmt"
	"strings"
)

// Policy selects how legacy sparse lists are treated during normalization.
type Policy int

const (
	// PolicyRecoverSparse converts an in-range sparse list into the dense form.
	PolicyRecoverSparse Policy = iota
	// PolicyReset replaces every non-dense value with an all-busy vector.
	PolicyReset
)

// ParsePolicy maps a configuration value onto a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recover":
		return PolicyRecoverSparse, nil
	case "reset":
		return PolicyReset, nil
	default:
		return 0, fmt.Errorf("unknown legacy policy %q", s)
	}
}

func (p Policy) String() string {
	if p == PolicyReset {
		return "reset"
	}
	return "recover"
}

// Normalize turns any raw value into a dense vector of the given length.
// A dense value of the right length is returned as is; everything else yields
// a fresh vector. It never fails.
func Normalize(raw Raw, length int, policy Policy) Vector {
	switch raw.Kind {
	case KindDense:
		if len(raw.Dense) == length {
			return Vector(raw.Dense)
		}
	case KindSparse:
		if policy == PolicyRecoverSparse {
			if v, err := ApplyRange(NewVector(length), raw.Sparse, true); err == nil {
				return v
			}
		}
	}
	return NewVector(length)
}
