package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CapabilityTTL is how long a download capability stays redeemable after
// issue, independent of any session state.
const CapabilityTTL = 24 * time.Hour

// capabilityContext separates the capability key from the session signing
// key: both derive from the same server secret, but a session token can
// never decrypt as a capability or vice versa.
const capabilityContext = "esf-download-capability-v1"

var (
	// ErrCapabilityDecode means the string was not a well-formed capability.
	ErrCapabilityDecode = errors.New("capability decode error")
	// ErrCapabilityDecrypt means authenticated decryption failed: wrong key,
	// truncation, or tampering. No partial data is ever returned.
	ErrCapabilityDecrypt = errors.New("capability decrypt error")
	// ErrCapabilityExpired means the capability was valid but older than
	// CapabilityTTL.
	ErrCapabilityExpired = errors.New("capability expired")
)

// CapabilityCodec issues and redeems encrypted download capabilities. The
// capability rides in a URL query parameter, which may be logged or cached,
// so it is encrypted (AES-256-GCM) rather than merely signed: its contents
// must not be readable by anyone who sees the URL.
type CapabilityCodec struct {
	aead cipher.AEAD
}

// NewCapabilityCodec derives the cipher key from the server secret via a
// one-way hash with a capability-specific context string.
func NewCapabilityCodec(secret string) (*CapabilityCodec, error) {
	key := sha256.Sum256([]byte(capabilityContext + ":" + secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to build capability cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to build capability cipher: %w", err)
	}
	return &CapabilityCodec{aead: aead}, nil
}

// Issue binds a file and the requesting identity into a URL-safe encrypted
// capability stamped with the issue time.
//
// The ':' separator is safe: both IDs are canonical UUIDs and the timestamp
// is decimal unix seconds, none of which can contain a colon.
func (c *CapabilityCodec) Issue(fileID, userID uuid.UUID, now time.Time) (string, error) {
	plaintext := fileID.String() + ":" + userID.String() + ":" + strconv.FormatInt(now.Unix(), 10)

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate capability nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Redeem decodes, decrypts, and parses a capability and checks its age
// against CapabilityTTL. It fails closed: any ambiguity in decoding is
// treated as invalid, never as "maybe valid".
func (c *CapabilityCodec) Redeem(capability string, now time.Time) (fileID, userID uuid.UUID, err error) {
	raw, err := base64.RawURLEncoding.DecodeString(capability)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrCapabilityDecode
	}
	if len(raw) < c.aead.NonceSize() {
		return uuid.Nil, uuid.Nil, ErrCapabilityDecode
	}

	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrCapabilityDecrypt
	}

	parts := strings.Split(string(plaintext), ":")
	if len(parts) != 3 {
		return uuid.Nil, uuid.Nil, ErrCapabilityDecode
	}
	fileID, err = uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrCapabilityDecode
	}
	userID, err = uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrCapabilityDecode
	}
	issued, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrCapabilityDecode
	}

	if now.Sub(time.Unix(issued, 0)) > CapabilityTTL {
		return uuid.Nil, uuid.Nil, ErrCapabilityExpired
	}
	return fileID, userID, nil
}
