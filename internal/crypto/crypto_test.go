package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxidian/engine/internal/errs"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	pw := []byte("correct horse battery staple")
	msg := []byte("hello, vault")

	blob, err := Encrypt(msg, pw)
	require.NoError(t, err)

	got, err := Decrypt(blob, pw)
	require.NoError(t, err)
	require.Equal(t, msg, got)
}

func TestDecryptWrongPasswordFails(t *testing.T) {
	blob, err := Encrypt([]byte("secret"), []byte("pw1"))
	require.NoError(t, err)

	_, err = Decrypt(blob, []byte("pw2"))
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.DecryptFailure))
}

func TestEncryptDecryptFileEnvelope(t *testing.T) {
	pw := []byte("pw1")
	data, err := EncryptToFile([]byte("hello"), pw)
	require.NoError(t, err)
	require.True(t, LooksEncrypted(string(data)))

	plain, err := DecryptFromFile(data, pw)
	require.NoError(t, err)
	require.Equal(t, "hello", string(plain))
}

func TestLooksEncryptedSniff(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{`{"salt":"abc","nonce":"def","data":"ghi"}`, true},
		{"# Plain markdown note", false},
		{`{"foo": "bar"}`, false},
		{"  \n  " + `{"salt":"x"}`, true},
	}
	for _, c := range cases {
		if got := LooksEncrypted(c.raw); got != c.want {
			t.Errorf("LooksEncrypted(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestVerificationBlobRoundTrip(t *testing.T) {
	pw := []byte("setup-password")
	data, err := EncryptToFile([]byte(VerificationPlaintext), pw)
	require.NoError(t, err)

	plain, err := DecryptFromFile(data, pw)
	require.NoError(t, err)
	require.Equal(t, VerificationPlaintext, string(plain))

	_, err = DecryptFromFile(data, []byte("wrong"))
	require.Error(t, err)
}
