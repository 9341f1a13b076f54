package paint_test

import (
	"testing"

	"github.com/rpggio/groupmeet/internal/domain/availability"
	"github.com/rpggio/groupmeet/internal/domain/paint"
	"github.com/stretchr/testify/require"
)

func TestMachine_FreeStroke(t *testing.T) {
	m := paint.NewMachine(availability.NewVector(10))

	changed, err := m.PointerDown(5)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, paint.PaintingFree, m.State())

	for _, cell := range []int{6, 7} {
		changed, err = m.PointerOver(cell)
		require.NoError(t, err)
		require.True(t, changed)
	}

	changed, err = m.PointerOver(5)
	require.NoError(t, err)
	require.False(t, changed)

	commits := 0
	commit, ok := m.PointerUp()
	if ok {
		commits++
	}
	_, ok = m.PointerUp()
	if ok {
		commits++
	}

	require.Equal(t, 1, commits)
	require.Equal(t, paint.Idle, m.State())
	require.Equal(t, []int{5, 6, 7}, commit.Vector.FreeSlots())
	require.Equal(t, []int{5, 6, 7}, commit.Stroke)
}

func TestMachine_BusyStroke(t *testing.T) {
	start := availability.Vector{true, true, false, true}
	m := paint.NewMachine(start)

	_, err := m.PointerDown(0)
	require.NoError(t, err)
	require.Equal(t, paint.PaintingBusy, m.State())

	changed, err := m.PointerOver(2)
	require.NoError(t, err)
	require.False(t, changed)
	changed, err = m.PointerOver(3)
	require.NoError(t, err)
	require.True(t, changed)

	commit, ok := m.PointerUp()
	require.True(t, ok)
	require.Equal(t, []int{1}, commit.Vector.FreeSlots())
	require.Equal(t, availability.Vector{true, true, false, true}, start)
}

func TestMachine_IdleEventsIgnored(t *testing.T) {
	m := paint.NewMachine(availability.NewVector(4))

	changed, err := m.PointerOver(1)
	require.NoError(t, err)
	require.False(t, changed)

	_, ok := m.PointerUp()
	require.False(t, ok)
	require.Equal(t, availability.NewVector(4), m.Vector())
}

func TestMachine_DownWhilePaintingIgnored(t *testing.T) {
	m := paint.NewMachine(availability.NewVector(4))
	_, err := m.PointerDown(0)
	require.NoError(t, err)

	changed, err := m.PointerDown(1)
	require.NoError(t, err)
	require.False(t, changed)
	require.Equal(t, []int{0}, m.Vector().FreeSlots())
}

func TestMachine_OutOfRange(t *testing.T) {
	m := paint.NewMachine(availability.NewVector(4))
	_, err := m.PointerDown(4)
	require.ErrorIs(t, err, paint.ErrOutOfRange)
	require.Equal(t, paint.Idle, m.State())

	_, err = m.PointerDown(1)
	require.NoError(t, err)
	_, err = m.PointerOver(-1)
	require.ErrorIs(t, err, paint.ErrOutOfRange)
	require.Equal(t, paint.PaintingFree, m.State())
}

func TestMachine_ResetIgnoredMidStroke(t *testing.T) {
	m := paint.NewMachine(availability.NewVector(3))
	_, err := m.PointerDown(0)
	require.NoError(t, err)
	require.False(t, m.Reset(availability.Vector{true, true, true}))

	m.PointerUp()
	require.True(t, m.Reset(availability.Vector{false, false, true}))
	require.Equal(t, []int{2}, m.Vector().FreeSlots())
}
