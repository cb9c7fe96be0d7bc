// Package passwd hashes and verifies app lock passwords.
//
// New digests use argon2id with a random per-installation salt and are encoded in a
// self-describing form:
//
//	argon2id$v=19$m=65536,t=1,p=4$<base64 salt>$<base64 key>
//
// Digests written by the earlier fixed-salt SHA-256 scheme are plain hex strings. They still
// verify, and [Hasher.NeedsRehash] reports them so callers can upgrade on the next successful unlock.
package passwd

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	algorithm   = "argon2id"
	legacySalt  = "open_zero_launcher_salt_2024"
	saltLen     = 16
	DefaultTime = 1
	DefaultMem  = 64 * 1024
	DefaultPar  = 4
	DefaultKey  = 32
)

var b64 = base64.RawStdEncoding

// Params are the argon2id cost parameters.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
}

// DefaultParams returns the recommended interactive-login parameters.
func DefaultParams() Params {
	return Params{Time: DefaultTime, Memory: DefaultMem, Threads: DefaultPar, KeyLen: DefaultKey}
}

func (p Params) normalize() Params {
	d := DefaultParams()
	if p.Time == 0 {
		p.Time = d.Time
	}
	if p.Memory == 0 {
		p.Memory = d.Memory
	}
	if p.Threads == 0 {
		p.Threads = d.Threads
	}
	if p.KeyLen == 0 {
		p.KeyLen = d.KeyLen
	}
	return p
}

// Hasher derives and checks password digests.
type Hasher struct {
	params Params
}

// NewHasher creates a [Hasher]. Zero fields in p fall back to [DefaultParams].
func NewHasher(p Params) *Hasher {
	return &Hasher{params: p.normalize()}
}

// NewSalt returns fresh random salt bytes.
func (h *Hasher) NewSalt() ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// Hash encodes the argon2id digest of password under salt. The same inputs always produce the same output.
func (h *Hasher) Hash(password string, salt []byte) string {
	return encode(h.params, salt, derive(h.params, password, salt))
}

// HashNew hashes password under a freshly generated salt.
func (h *Hasher) HashNew(password string) (string, error) {
	salt, err := h.NewSalt()
	if err != nil {
		return "", err
	}
	return h.Hash(password, salt), nil
}

// Verify reports whether password matches encoded, which may be an argon2id or legacy digest.
func (h *Hasher) Verify(password, encoded string) bool {
	if encoded == "" {
		return false
	}

	if isLegacy(encoded) {
		want := LegacyDigest(password)
		return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(encoded))) == 1
	}

	p, salt, key, err := decode(encoded)
	if err != nil {
		return false
	}
	got := derive(p, password, salt)
	return subtle.ConstantTimeCompare(got, key) == 1
}

// NeedsRehash reports whether encoded is a legacy digest or was produced with different parameters.
func (h *Hasher) NeedsRehash(encoded string) bool {
	if encoded == "" || isLegacy(encoded) {
		return true
	}
	p, _, _, err := decode(encoded)
	if err != nil {
		return true
	}
	return p != h.params
}

// LegacyDigest is the fixed-salt SHA-256 digest used by earlier releases, hex encoded.
func LegacyDigest(password string) string {
	sum := sha256.Sum256([]byte(password + legacySalt))
	return hex.EncodeToString(sum[:])
}

func derive(p Params, password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
}

func isLegacy(encoded string) bool {
	return !strings.HasPrefix(encoded, algorithm+"$")
}

func encode(p Params, salt, key []byte) string {
	return fmt.Sprintf("%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithm, argon2.Version, p.Memory, p.Time, p.Threads, b64.EncodeToString(salt), b64.EncodeToString(key))
}

func decode(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != algorithm {
		return Params{}, nil, nil, fmt.Errorf("malformed digest")
	}

	var version int
	if _, err := fmt.Sscanf(parts[1], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, fmt.Errorf("unsupported argon2 version %q", parts[1])
	}

	var p Params
	if _, err := fmt.Sscanf(parts[2], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return Params{}, nil, nil, fmt.Errorf("malformed parameters: %w", err)
	}

	salt, err := b64.DecodeString(parts[3])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("malformed salt: %w", err)
	}
	key, err := b64.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("malformed key: %w", err)
	}
	p.KeyLen = uint32(len(key))

	return p, salt, key, nil
}
