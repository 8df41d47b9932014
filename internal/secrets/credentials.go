// Package secrets seals and opens the Garmin credential blob. The stored
// value is base64(nonce || AES-256-GCM ciphertext) of the credential JSON;
// the key comes from configuration, never from the database.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Miittkkoo/gaf-insight-engine-sub000/internal/domain"
)

var (
	// ErrNoKey indicates credential encryption is not configured.
	ErrNoKey = errors.New("credential encryption key not configured")
	// ErrBadCiphertext indicates a stored blob that cannot be opened.
	ErrBadCiphertext = errors.New("credential blob corrupt or wrong key")
)

// Codec seals and opens credential blobs with a fixed key.
type Codec struct {
	key []byte
}

// NewCodec parses a hex-encoded 32-byte AES key. An empty key yields a
// disabled codec whose Seal/Open return ErrNoKey.
func NewCodec(hexKey string) (*Codec, error) {
	if hexKey == "" {
		return &Codec{}, nil
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode credential key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("credential key must be 32 bytes, got %d", len(key))
	}
	return &Codec{key: key}, nil
}

// Enabled reports whether a key is configured.
func (c *Codec) Enabled() bool {
	return len(c.key) != 0
}

// Seal encrypts credentials for storage.
func (c *Codec) Seal(creds domain.GarminCredentials) (string, error) {
	if !c.Enabled() {
		return "", ErrNoKey
	}

	plaintext, err := json.Marshal(creds)
	if err != nil {
		return "", err
	}

	gcm, err := c.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a stored blob.
func (c *Codec) Open(blob string) (domain.GarminCredentials, error) {
	var creds domain.GarminCredentials
	if !c.Enabled() {
		return creds, ErrNoKey
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return creds, ErrBadCiphertext
	}

	gcm, err := c.gcm()
	if err != nil {
		return creds, err
	}

	if len(raw) < gcm.NonceSize() {
		return creds, ErrBadCiphertext
	}
	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return creds, ErrBadCiphertext
	}

	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return creds, ErrBadCiphertext
	}
	return creds, nil
}

func (c *Codec) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
