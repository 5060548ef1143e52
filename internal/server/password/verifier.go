// Package password verifies user passwords against stored Argon2id hashes
// without leaking account existence through response timing.
package password

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/matoscout/api/internal/common"
	"github.com/matoscout/api/internal/cryptox"
	"github.com/matoscout/api/internal/logging"
)

// Verifier hashes and verifies passwords on a bounded execution context:
// a weighted semaphore caps the number of concurrent Argon2 computations so
// CPU-bound hashing cannot starve request-serving goroutines. Acquisition
// honors the caller's context.
//
// A dummy hash with the same cost parameters is precomputed at construction.
// When no user matches a sign-in attempt, callers verify against DummyHash
// anyway so the elapsed time is indistinguishable from a real mismatch.
type Verifier struct {
	hasher    *cryptox.Argon2
	sem       *semaphore.Weighted
	logger    logging.Logger
	dummyHash string
}

// NewVerifier builds a Verifier with the given cost parameters. workers
// bounds concurrent hashing; zero or negative means GOMAXPROCS.
func NewVerifier(params cryptox.Params, workers int, logger logging.Logger) (*Verifier, error) {
	hasher, err := cryptox.NewArgon2(params)
	if err != nil {
		return nil, err
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// The dummy credential is random per process; only its cost shape matters.
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("precomputing dummy hash: %w", err)
	}

	return &Verifier{
		hasher:    hasher,
		sem:       semaphore.NewWeighted(int64(workers)),
		logger:    logger.With("module", "password"),
		dummyHash: dummy,
	}, nil
}

// DummyHash returns the precomputed stand-in hash for the no-such-user path.
func (v *Verifier) DummyHash() string {
	return v.dummyHash
}

// Hash derives a PHC-encoded hash of password on the bounded executor.
func (v *Verifier) Hash(ctx context.Context, password string) (string, error) {
	if err := v.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	defer v.sem.Release(1)

	return v.hasher.Hash(password)
}

// Verify checks candidate against expectedHash. A wrong password and a
// malformed stored hash both collapse into common.ErrInvalidCredentials so
// the caller cannot distinguish the failure cause; the malformed-hash case
// is additionally logged as a warning. A dispatch failure
// (context cancelled before a hashing slot freed up) surfaces as
// common.ErrorInternal.
func (v *Verifier) Verify(ctx context.Context, candidate, expectedHash string) error {
	if err := v.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	defer v.sem.Release(1)

	if err := v.hasher.Verify(candidate, expectedHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			// The stored hash does not parse: server-side data corruption.
			// Logged here since the caller only sees invalid credentials.
			v.logger.Warn(ctx, "stored password hash is malformed", "error", err.Error())
		}
		return common.ErrInvalidCredentials
	}

	return nil
}
