package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	h, err := HashPassword("pw")
	require.NoError(t, err)
	require.NotEqual(t, "pw", h)

	require.True(t, CheckPassword(h, "pw"))
	require.False(t, CheckPassword(h, "wrong"))
	require.False(t, CheckPassword("not-a-hash", "pw"))
}
