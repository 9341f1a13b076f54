// Package paint turns pointer strokes over the weekly grid into batch
// free/busy edits. The first cell of a stroke decides its direction and
// every later cell the pointer crosses is forced to that value.
package paint

import (
	"github.com/rpggio/groupmeet/internal/domain/availability"
	"github.com/rpggio/groupmeet/internal/domain/grid"
)

// ErrOutOfRange is returned for cells outside the vector.
var ErrOutOfRange = grid.ErrOutOfRange

// State is the stroke state of the machine.
type State int

const (
	Idle State = iota
	PaintingFree
	PaintingBusy
)

func (s State) String() string {
	switch s {
	case PaintingFree:
		return "painting_free"
	case PaintingBusy:
		return "painting_busy"
	default:
		return "idle"
	}
}

// MarshalText renders the state name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Commit is emitted once per completed stroke.
type Commit struct {
	Vector availability.Vector
	Stroke []int
}

// Machine holds one user's vector and the current stroke.
type Machine struct {
	state  State
	vector availability.Vector
	stroke []int
}

// NewMachine starts an idle machine over a copy of v.
func NewMachine(v availability.Vector) *Machine {
	return &Machine{vector: v.Clone()}
}

// State returns the current stroke state.
func (m *Machine) State() State {
	return m.state
}

// Vector returns a copy of the current vector.
func (m *Machine) Vector() availability.Vector {
	return m.vector.Clone()
}

// Stroke returns the cells changed by the stroke in progress.
func (m *Machine) Stroke() []int {
	return append([]int(nil), m.stroke...)
}

// Reset replaces the vector. Ignored mid-stroke so remote data never
// clobbers a stroke in progress; it reports whether the vector was replaced.
func (m *Machine) Reset(v availability.Vector) bool {
	if m.state != Idle {
		return false
	}
	m.vector = v.Clone()
	return true
}

// PointerDown starts a stroke by toggling cell. It reports whether the cell
// changed, which is false when a stroke is already in progress.
func (m *Machine) PointerDown(cell int) (bool, error) {
	if err := grid.CheckSlot(cell, len(m.vector)); err != nil {
		return false, err
	}
	if m.state != Idle {
		return false, nil
	}

	m.vector[cell] = !m.vector[cell]
	if m.vector[cell] {
		m.state = PaintingFree
	} else {
		m.state = PaintingBusy
	}
	m.stroke = []int{cell}
	return true, nil
}

// PointerOver forces cell to the stroke value. It reports whether the cell changed.
func (m *Machine) PointerOver(cell int) (bool, error) {
	if err := grid.CheckSlot(cell, len(m.vector)); err != nil {
		return false, err
	}
	if m.state == Idle {
		return false, nil
	}

	want := m.state == PaintingFree
	if m.vector[cell] == want {
		return false, nil
	}
	m.vector[cell] = want
	m.stroke = append(m.stroke, cell)
	return true, nil
}

// PointerUp ends the stroke. The returned commit carries the full vector to
// persist; ok is false when no stroke was in progress.
func (m *Machine) PointerUp() (commit Commit, ok bool) {
	if m.state == Idle {
		return Commit{}, false
	}
	commit = Commit{Vector: m.vector.Clone(), Stroke: m.stroke}
	m.state = Idle
	m.stroke = nil
	return commit, true
}
