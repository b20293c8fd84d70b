package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	a, err := New(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)

	ct, err := a.EncryptToString(`{"access_token":"abc"}`)
	require.NoError(t, err)
	assert.NotContains(t, ct, "abc")

	again, err := a.EncryptToString(`{"access_token":"abc"}`)
	require.NoError(t, err)
	assert.NotEqual(t, ct, again, "nonce must be random")

	pt, err := a.DecryptString(ct)
	require.NoError(t, err)
	assert.Equal(t, `{"access_token":"abc"}`, pt)
}

func TestRejects(t *testing.T) {
	_, err := New([]byte("short"))
	assert.Error(t, err)

	a, err := New(bytes.Repeat([]byte{1}, 32))
	require.NoError(t, err)
	other, err := New(bytes.Repeat([]byte{2}, 32))
	require.NoError(t, err)

	ct, err := a.EncryptToString("secret")
	require.NoError(t, err)
	_, err = other.DecryptString(ct)
	assert.Error(t, err)

	_, err = a.DecryptString("AAAA")
	assert.Error(t, err)
	_, err = a.DecryptString("!!!")
	assert.Error(t, err)
}
