// internal/keycodec/generate.go
//
// Fresh key generation. This is the only randomized step in the system, so
// the random source is always passed in: production uses crypto/rand, tests
// and the daily card use a seeded math/rand.

package keycodec

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Source yields uniform integers in [0, n). *math/rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// CryptoSource draws from crypto/rand.
type CryptoSource struct{}

// Intn returns a cryptographically random int in [0, n). Panics if n <= 0,
// matching math/rand.
func (CryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("keycodec: Intn with non-positive n")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("keycodec: crypto/rand failed: %v", err))
	}
	return int(v.Int64())
}

// Generate shuffles the indices 0..n-1 with Fisher–Yates and returns the first
// 24, in shuffled order. Every ordered 24-selection is equally likely given a
// uniform src.
func Generate(src Source, n int) ([]int, error) {
	if n < Cells {
		return nil, fmt.Errorf("%w: %d", ErrCatalogTooSmall, n)
	}
	if n > MaxCatalog {
		return nil, fmt.Errorf("%w: %d", ErrCatalogTooLarge, n)
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm[:Cells:Cells], nil
}

// NewKey generates and encodes a fresh key for a catalog of n items.
func NewKey(src Source, n int) (string, error) {
	sel, err := Generate(src, n)
	if err != nil {
		return "", err
	}
	return Encode(sel)
}
