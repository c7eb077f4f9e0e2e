package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidScopeName(t *testing.T) {
	valids := []string{"a", "read", "write", "api.read", "orders-admin", "Read_All", strings.Repeat("a", 64)}
	for _, v := range valids {
		assert.True(t, ValidScopeName(v), "expected valid: %q", v)
	}

	invalids := []string{"", "bad space", "a:b", "semicolon;hack", "slash/x", strings.Repeat("a", 65)}
	for _, v := range invalids {
		assert.False(t, ValidScopeName(v), "expected invalid: %q", v)
	}
}

func TestInvalidScopes(t *testing.T) {
	assert.Nil(t, InvalidScopes([]string{"read", "write"}))
	assert.Equal(t, []string{"bad scope", "x:y"}, InvalidScopes([]string{"read", "bad scope", "x:y"}))
}

func TestClientFieldRules(t *testing.T) {
	assert.True(t, ValidClientID("abc"))
	assert.True(t, ValidClientID("my_client-01"))
	assert.False(t, ValidClientID("ab"))
	assert.False(t, ValidClientID("has space"))
	assert.False(t, ValidClientID("dot.not.allowed"))
	assert.False(t, ValidClientID(strings.Repeat("x", 101)))

	assert.True(t, ValidSecret("12345678"))
	assert.False(t, ValidSecret("1234567"))
	assert.False(t, ValidSecret(strings.Repeat("s", 256)))

	assert.True(t, ValidClientName("My"))
	assert.False(t, ValidClientName("M"))
	assert.True(t, ValidClientName("Ñu"))

	assert.True(t, ValidAccessTokenTTL(60))
	assert.True(t, ValidAccessTokenTTL(86400))
	assert.False(t, ValidAccessTokenTTL(59))
	assert.False(t, ValidAccessTokenTTL(86401))
}
