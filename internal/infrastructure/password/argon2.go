// Package password derives and verifies Argon2id password digests in PHC
// string format: $argon2id$v=19$m=<KiB>,t=<passes>,p=<lanes>$<salt>$<key>.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/stonemarket/storefront/internal/core/domain"
	"github.com/stonemarket/storefront/internal/core/ports"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTime        uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	algorithmID           = "argon2id"
)

// Config holds Argon2id cost parameters.
type Config struct {
	MemoryKB    uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultConfig is the production cost profile.
func DefaultConfig() Config {
	return Config{
		MemoryKB:    64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Argon2 is safe for concurrent use.
type Argon2 struct {
	config Config
	rand   io.Reader
}

var _ ports.PasswordHasher = (*Argon2)(nil)

// NewArgon2 validates cfg and returns a hasher. Invalid parameters wrap
// domain.ErrHashingFailed.
func NewArgon2(cfg Config) (*Argon2, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHashingFailed, err)
	}
	return &Argon2{config: cfg, rand: rand.Reader}, nil
}

// Hash derives a digest with a fresh random salt, so two calls with the same
// plaintext never produce the same string.
func (a *Argon2) Hash(plaintext string) (string, error) {
	salt := make([]byte, a.config.SaltLength)
	if _, err := io.ReadFull(a.rand, salt); err != nil {
		return "", fmt.Errorf("%w: read salt: %v", domain.ErrHashingFailed, err)
	}

	key := argon2.IDKey(
		[]byte(plaintext),
		salt,
		a.config.Time,
		a.config.MemoryKB,
		a.config.Parallelism,
		a.config.KeyLength,
	)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		a.config.MemoryKB,
		a.config.Time,
		a.config.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the key with the digest's own parameters and compares in
// constant time.
func (a *Argon2) Verify(plaintext, digest string) (bool, error) {
	parsed, err := parsePHC(digest)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrHashingFailed, err)
	}

	computed := argon2.IDKey(
		[]byte(plaintext),
		parsed.salt,
		parsed.time,
		parsed.memory,
		parsed.parallelism,
		uint32(len(parsed.key)),
	)

	return subtle.ConstantTimeCompare(computed, parsed.key) == 1, nil
}

type phc struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func parsePHC(digest string) (*phc, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, errors.New("invalid PHC format")
	}
	if parts[1] != algorithmID {
		return nil, errors.New("unsupported algorithm")
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || !strings.HasPrefix(parts[2], "v=") {
		return nil, errors.New("invalid argon2 version")
	}
	if version != argon2.Version {
		return nil, errors.New("unsupported argon2 version")
	}

	out := &phc{}
	if err := parseParams(parts[3], out); err != nil {
		return nil, err
	}

	out.salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(out.salt) < int(minSaltLength) {
		return nil, errors.New("invalid salt")
	}
	out.key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(out.key) < int(minKeyLength) {
		return nil, errors.New("invalid key")
	}
	return out, nil
}

func parseParams(part string, out *phc) error {
	pairs := strings.Split(part, ",")
	if len(pairs) != 3 {
		return errors.New("invalid parameter format")
	}

	var seen int
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return errors.New("invalid parameter entry")
		}
		switch k {
		case "m":
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil || n < uint64(minMemoryKB) {
				return errors.New("invalid memory parameter")
			}
			out.memory = uint32(n)
		case "t":
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil || n < uint64(minTime) {
				return errors.New("invalid time parameter")
			}
			out.time = uint32(n)
		case "p":
			n, err := strconv.ParseUint(v, 10, 8)
			if err != nil || n < uint64(minParallelism) {
				return errors.New("invalid parallelism parameter")
			}
			out.parallelism = uint8(n)
		default:
			return errors.New("unsupported parameter")
		}
		seen++
	}
	if seen != 3 || out.memory == 0 || out.time == 0 || out.parallelism == 0 {
		return errors.New("missing parameters")
	}
	return nil
}

func validateConfig(cfg Config) error {
	switch {
	case cfg.MemoryKB < minMemoryKB:
		return fmt.Errorf("memory must be >= %d KiB", minMemoryKB)
	case cfg.Time < minTime:
		return errors.New("time must be >= 1")
	case cfg.Parallelism < minParallelism:
		return errors.New("parallelism must be >= 1")
	case cfg.SaltLength < minSaltLength:
		return fmt.Errorf("salt length must be >= %d", minSaltLength)
	case cfg.KeyLength < minKeyLength:
		return fmt.Errorf("key length must be >= %d", minKeyLength)
	}
	return nil
}
