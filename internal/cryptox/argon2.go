// Package cryptox implements password hashing and verification using
// Argon2id with hashes stored in PHC string form:
//
//	$argon2id$v=19$m=15000,t=2,p=1$<salt>$<hash>
//
// Hashing cost parameters travel inside the PHC string, so verification
// always uses the parameters the hash was created with.
package cryptox

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
)

const algorithmID = "argon2id"

var (
	ErrInvalidHash         = errors.New("invalid PHC hash format")
	ErrUnsupportedVersion  = errors.New("unsupported argon2 version")
	ErrUnsupportedVariant  = errors.New("unsupported hashing algorithm")
	ErrPasswordMismatch    = errors.New("password does not match hash")
	errInvalidParams       = errors.New("invalid argon2 parameters")
	errInvalidSaltEncoding = errors.New("invalid salt encoding")
	errInvalidHashEncoding = errors.New("invalid hash encoding")
)

// Params holds Argon2id cost parameters. Memory is in KiB.
type Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams mirrors the cost used when hashing new passwords.
func DefaultParams() Params {
	return Params{
		Memory:      15000,
		Time:        2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Argon2 hashes and verifies passwords with a fixed Params set. It is
// stateless and safe for concurrent use.
type Argon2 struct {
	params Params
}

func NewArgon2(p Params) (*Argon2, error) {
	if p.Memory == 0 || p.Time == 0 || p.Parallelism == 0 {
		return nil, errInvalidParams
	}
	if p.SaltLength < 8 || p.KeyLength < 16 {
		return nil, errInvalidParams
	}
	return &Argon2{params: p}, nil
}

// Hash derives a key from password with a fresh random salt and returns the
// PHC-encoded result.
func (a *Argon2) Hash(password string) (string, error) {
	salt := make([]byte, a.params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		a.params.Time,
		a.params.Memory,
		a.params.Parallelism,
		a.params.KeyLength,
	)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		a.params.Memory,
		a.params.Time,
		a.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the hash of password using the parameters embedded in
// encodedHash and compares the digests in constant time. It returns
// ErrPasswordMismatch when the password is wrong and a parse error when the
// stored hash is malformed.
func (a *Argon2) Verify(password string, encodedHash string) error {
	parsed, err := parsePHC(encodedHash)
	if err != nil {
		return err
	}

	computed := argon2.IDKey(
		[]byte(password),
		parsed.salt,
		parsed.time,
		parsed.memory,
		parsed.parallelism,
		uint32(len(parsed.hash)),
	)

	if subtle.ConstantTimeCompare(computed, parsed.hash) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

type parsedPHC struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

func parsePHC(encodedHash string) (*parsedPHC, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, ErrInvalidHash
	}
	if parts[1] != algorithmID {
		return nil, ErrUnsupportedVariant
	}

	version, ok := strings.CutPrefix(parts[2], "v=")
	if !ok {
		return nil, ErrInvalidHash
	}
	v, err := strconv.Atoi(version)
	if err != nil {
		return nil, ErrInvalidHash
	}
	if v != argon2.Version {
		return nil, ErrUnsupportedVersion
	}

	var p parsedPHC
	if err := parseParams(parts[3], &p); err != nil {
		return nil, err
	}

	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, errInvalidSaltEncoding
	}
	if p.hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, errInvalidHashEncoding
	}
	if len(p.salt) == 0 || len(p.hash) == 0 {
		return nil, ErrInvalidHash
	}

	return &p, nil
}

func parseParams(part string, out *parsedPHC) error {
	pairs := strings.Split(part, ",")
	if len(pairs) != 3 {
		return errInvalidParams
	}

	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return errInvalidParams
		}
		switch k {
		case "m":
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil || n == 0 {
				return errInvalidParams
			}
			out.memory = uint32(n)
		case "t":
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil || n == 0 {
				return errInvalidParams
			}
			out.time = uint32(n)
		case "p":
			n, err := strconv.ParseUint(v, 10, 8)
			if err != nil || n == 0 {
				return errInvalidParams
			}
			out.parallelism = uint8(n)
		default:
			return errInvalidParams
		}
	}

	if out.memory == 0 || out.time == 0 || out.parallelism == 0 {
		return errInvalidParams
	}
	return nil
}
