package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasherRoundTrip(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	hash, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", hash)

	ok, err := h.Verify(hash, "pw1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(hash, "pw2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasherSalts(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPasswordHasherRejectsCorruptHash(t *testing.T) {
	_, err := NewPasswordHasher(bcrypt.MinCost).Verify("not-a-hash", "pw")
	assert.Error(t, err)
}

func TestPasswordHasherCostFallback(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(99).cost)
}

func TestPasswordHasherLongPasswords(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	long := strings.Repeat("p", 80)

	hash, err := h.Hash(long)
	require.NoError(t, err)

	ok, err := h.Verify(hash, long)
	require.NoError(t, err)
	assert.True(t, ok)

	// Bytes past 72 still count.
	ok, err = h.Verify(hash, strings.Repeat("p", 79)+"q")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = h.Verify(hash, long[:72])
	require.NoError(t, err)
	assert.False(t, ok)
}
