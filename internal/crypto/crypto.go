// Package crypto implements the vault's at-rest encryption envelope:
// Argon2id key derivation wrapping AES-256-GCM authenticated encryption,
// for notes marked encrypted.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"

	"golang.org/x/crypto/argon2"

	"github.com/oxidian/engine/internal/errs"
)

const (
	saltSize  = 32
	nonceSize = 12
	keySize   = 32

	// Argon2id parameters. time=1, memory=64MiB, threads=4 is the
	// parameter set the golang.org/x/crypto/argon2 package itself
	// documents as a reasonable interactive default.
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// Blob is the on-disk encryption envelope: salt + nonce + ciphertext.
type Blob struct {
	Salt       [saltSize]byte
	Nonce      [nonceSize]byte
	Ciphertext []byte
}

// envelope is Blob's JSON-over-the-wire shape: base64-encoded fields.
type envelope struct {
	Salt  string `json:"salt"`
	Nonce string `json:"nonce"`
	Data  string `json:"data"`
}

// DeriveKey runs Argon2id over pw with the given salt.
func DeriveKey(pw []byte, salt [saltSize]byte) [keySize]byte {
	derived := argon2.IDKey(pw, salt[:], argonTime, argonMemory, argonThreads, keySize)
	var key [keySize]byte
	copy(key[:], derived)
	return key
}

// Encrypt generates a fresh salt and nonce, derives a key from pw, and seals
// plaintext with AES-256-GCM.
func Encrypt(plaintext, pw []byte) (Blob, error) {
	var blob Blob
	if _, err := rand.Read(blob.Salt[:]); err != nil {
		return Blob{}, errs.Wrap(errs.IOFailure, err, "generating salt")
	}
	if _, err := rand.Read(blob.Nonce[:]); err != nil {
		return Blob{}, errs.Wrap(errs.IOFailure, err, "generating nonce")
	}

	key := DeriveKey(pw, blob.Salt)
	gcm, err := newGCM(key)
	if err != nil {
		return Blob{}, errs.Wrap(errs.IOFailure, err, "initializing cipher")
	}

	blob.Ciphertext = gcm.Seal(nil, blob.Nonce[:], plaintext, nil)
	return blob, nil
}

// Decrypt opens a Blob with pw. Any authentication failure (wrong password,
// corrupt ciphertext, truncated input) is reported uniformly as
// DecryptFailure — callers must not be able to distinguish tag-mismatch from other
// AES-GCM failures, for side-channel hygiene.
func Decrypt(blob Blob, pw []byte) ([]byte, error) {
	key := DeriveKey(pw, blob.Salt)
	gcm, err := newGCM(key)
	if err != nil {
		return nil, errs.New(errs.DecryptFailure, "wrong password or corrupt data")
	}

	plaintext, err := gcm.Open(nil, blob.Nonce[:], blob.Ciphertext, nil)
	if err != nil {
		return nil, errs.New(errs.DecryptFailure, "wrong password or corrupt data")
	}
	return plaintext, nil
}

func newGCM(key [keySize]byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptToFile encrypts plaintext and JSON-encodes the envelope, matching
// the on-disk envelope shape: {"salt":"<b64>","nonce":"<b64>","data":"<b64>"}.
func EncryptToFile(plaintext, pw []byte) ([]byte, error) {
	blob, err := Encrypt(plaintext, pw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{
		Salt:  base64.StdEncoding.EncodeToString(blob.Salt[:]),
		Nonce: base64.StdEncoding.EncodeToString(blob.Nonce[:]),
		Data:  base64.StdEncoding.EncodeToString(blob.Ciphertext),
	})
}

// DecryptFromFile reverses EncryptToFile.
func DecryptFromFile(data, pw []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errs.Wrap(errs.InvalidInput, err, "malformed encryption envelope")
	}

	blob, err := decodeEnvelope(env)
	if err != nil {
		return nil, err
	}
	return Decrypt(blob, pw)
}

func decodeEnvelope(env envelope) (Blob, error) {
	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil || len(salt) != saltSize {
		return Blob{}, errs.New(errs.InvalidInput, "malformed salt in encryption envelope")
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil || len(nonce) != nonceSize {
		return Blob{}, errs.New(errs.InvalidInput, "malformed nonce in encryption envelope")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return Blob{}, errs.New(errs.InvalidInput, "malformed ciphertext in encryption envelope")
	}

	var blob Blob
	copy(blob.Salt[:], salt)
	copy(blob.Nonce[:], nonce)
	blob.Ciphertext = ciphertext
	return blob, nil
}

// LooksEncrypted sniffs whether raw note content is the JSON envelope
// format: starts with '{' and contains the literal
// substring `"salt"`. This is a heuristic, not a format guarantee: a
// plaintext note that happens to match is treated as encrypted.
func LooksEncrypted(raw string) bool {
	trimmed := raw
	for len(trimmed) > 0 && (trimmed[0] == ' ' || trimmed[0] == '\t' || trimmed[0] == '\n' || trimmed[0] == '\r') {
		trimmed = trimmed[1:]
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return containsSalt(raw)
}

func containsSalt(raw string) bool {
	const needle = `"salt"`
	for i := 0; i+len(needle) <= len(raw); i++ {
		if raw[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

// VerificationPlaintext is the fixed known plaintext stored at
// .oxidian/vault.key; decryptability of this blob proves password
// correctness.
const VerificationPlaintext = "OXIDIAN_VAULT_KEY"
