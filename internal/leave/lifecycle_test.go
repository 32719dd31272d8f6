package leave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to State
		want     bool
	}{
		{Pending, Approved, true},
		{Pending, Rejected, true},
		{Pending, Cancelled, true},
		{Approved, Cancelled, true},
		{Approved, Approved, false},
		{Approved, Rejected, false},
		{Rejected, Cancelled, false},
		{Rejected, Approved, false},
		{Cancelled, Cancelled, false},
		{Cancelled, Pending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestPreconditions(t *testing.T) {
	assert.ElementsMatch(t, []State{Pending}, ActionApprove.Preconditions())
	assert.ElementsMatch(t, []State{Pending}, ActionReject.Preconditions())
	assert.ElementsMatch(t, []State{Pending, Approved}, ActionCancel.Preconditions())
	assert.Nil(t, Action("archive").Preconditions())
}

func TestTerminal(t *testing.T) {
	assert.False(t, Pending.Terminal())
	assert.False(t, Approved.Terminal())
	assert.True(t, Rejected.Terminal())
	assert.True(t, Cancelled.Terminal())
}

func TestParseState(t *testing.T) {
	st, err := ParseState("APROB")
	require.NoError(t, err)
	assert.Equal(t, Approved, st)

	_, err = ParseState("approved")
	assert.Error(t, err)
}

func TestActionPrivileged(t *testing.T) {
	assert.True(t, ActionApprove.Privileged())
	assert.True(t, ActionReject.Privileged())
	assert.False(t, ActionCancel.Privileged())
}
