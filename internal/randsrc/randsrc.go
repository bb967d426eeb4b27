// Package randsrc provides the daemon's single source of randomness: a
// blocking read from the kernel CSPRNG, consumed only through rejection
// sampling so no draw is ever biased by a raw modulo.
package randsrc

import (
	"crypto/rand"
	"fmt"
	"math"

	"github.com/ArrayBolt3/kloak-v2/internal/logger"
)

// Source draws uniformly random bytes from crypto/rand. A failed draw is
// always fatal: there is no degraded fallback.
type Source struct{}

// New returns a Source. There is no state to initialize; crypto/rand reads
// directly from the kernel CSPRNG on every call.
func New() *Source {
	return &Source{}
}

// mustRead fills buf with random bytes or terminates the process. Per the
// daemon's error taxonomy, a randomness failure is a fatal environmental
// condition, never a retried or substituted one.
func (s *Source) mustRead(buf []byte) {
	if _, err := rand.Read(buf); err != nil {
		logger.Fatalf("random source unavailable: %v", err)
	}
}

// UniformUint64 draws an unbiased uniform value in [0, n) using rejection
// sampling over raw 64-bit draws. n must be > 0.
func (s *Source) UniformUint64(n uint64) uint64 {
	if n == 0 {
		panic("randsrc: UniformUint64 called with n == 0")
	}
	if n == 1 {
		return 0
	}

	// The largest multiple of n that fits in 64 bits. Draws at or above
	// this threshold would bias the low end of the modulo and are
	// discarded rather than reduced.
	limit := (math.MaxUint64/n)*n - 1

	var buf [8]byte
	for {
		s.mustRead(buf[:])
		v := uint64(buf[0]) | uint64(buf[1])<<8 | uint64(buf[2])<<16 | uint64(buf[3])<<24 |
			uint64(buf[4])<<32 | uint64(buf[5])<<40 | uint64(buf[6])<<48 | uint64(buf[7])<<56
		if v <= limit {
			return v % n
		}
	}
}

// UniformIntClosed draws an unbiased uniform integer in the closed interval
// [lower, upper]. lower must be <= upper.
func (s *Source) UniformIntClosed(lower, upper int64) int64 {
	if lower > upper {
		panic(fmt.Sprintf("randsrc: invalid interval [%d, %d]", lower, upper))
	}
	span := uint64(upper-lower) + 1
	return lower + int64(s.UniformUint64(span))
}

const shmNameAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// ShmName returns a shared-memory object name of the form "/kloak-XXXXXXXXXX"
// where the ten X's are drawn uniformly from [A-Za-z], matching the
// regex ^/kloak-[A-Za-z]{10}$.
func (s *Source) ShmName() string {
	const nameLen = 10
	buf := make([]byte, nameLen)
	for i := range buf {
		buf[i] = shmNameAlphabet[s.UniformUint64(uint64(len(shmNameAlphabet)))]
	}
	return "/kloak-" + string(buf)
}
