package snowflake

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPrefixed(t *testing.T) {
	require.NoError(t, Init(1, 1))

	before := time.Now().Add(-time.Second)
	a, err := NextPrefixed("recompute")
	require.NoError(t, err)
	b, err := NextPrefixed("recompute")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "recompute_"))
	assert.NotEqual(t, a, b)

	id, err := NextID()
	require.NoError(t, err)
	assert.True(t, Time(id).After(before))
}
