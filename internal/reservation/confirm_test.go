package reservation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmTokenRoundTrip(t *testing.T) {
	m := NewConfirmTokenManager("test-secret")

	token, err := m.Generate("res-42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "res-42", id)
}

func TestConfirmTokenWrongSecret(t *testing.T) {
	m := NewConfirmTokenManager("test-secret")
	other := NewConfirmTokenManager("other-secret")

	token, err := m.Generate("res-42")
	require.NoError(t, err)

	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestConfirmTokenGarbage(t *testing.T) {
	m := NewConfirmTokenManager("test-secret")

	_, err := m.Parse("not-a-token")
	assert.Error(t, err)
}
