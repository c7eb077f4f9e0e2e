package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashVerify(t *testing.T) {
	Cost = bcrypt.MinCost
	t.Cleanup(func() { Cost = bcrypt.DefaultCost })

	h, err := Hash("s3cret-value")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-value", h)
	assert.True(t, Verify("s3cret-value", h))
	assert.False(t, Verify("s3cret-valuf", h))
	assert.False(t, Verify("", h))
	assert.False(t, Verify("s3cret-value", ""))

	_, err = Hash("")
	assert.ErrorIs(t, err, ErrEmpty)
}
