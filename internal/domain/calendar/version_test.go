package calendar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionClock(t *testing.T) {
	var c versionClock
	first := c.issue()
	second := c.issue()
	require.Less(t, first, second)
	require.False(t, c.newest(first))
	require.True(t, c.newest(second))

	require.True(t, c.complete(second))
	require.False(t, c.complete(first))
	require.False(t, c.complete(second))

	third := c.issue()
	require.True(t, c.complete(third))
}
