// Package random provides the injectable random source used by generation
// and objective regeneration, plus seed helpers.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// RNG is the subset of *rand.Rand the generators depend on.
type RNG interface {
	Intn(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// New returns a deterministic RNG for seed.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NewSeed generates a seed using crypto/rand, falling back to the clock.
func NewSeed() int64 {
	seed, err := CryptoSeed()
	if err != nil {
		return time.Now().UnixNano()
	}
	return seed
}

// CryptoSeed reads a seed from crypto/rand.
func CryptoSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Between returns a uniform integer in [lo, hi]. hi < lo returns lo.
func Between(rng RNG, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// Chance reports true with probability p.
func Chance(rng RNG, p float64) bool {
	return rng.Float64() < p
}

// Locked serializes access to an RNG shared between goroutines.
type Locked struct {
	mu  sync.Mutex
	rng RNG
}

// NewLocked wraps rng for concurrent use.
func NewLocked(rng RNG) *Locked {
	return &Locked{rng: rng}
}

func (l *Locked) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Intn(n)
}

func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}

func (l *Locked) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rng.Shuffle(n, swap)
}
