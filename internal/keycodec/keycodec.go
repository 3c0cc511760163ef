// internal/keycodec/keycodec.go
//
// Encoding of a bingo card's layout into a short shareable key.
//
// A key is 24 two-character hexadecimal codes (48 characters). Each code is a
// catalog index; the order of the codes is the fill order of the card's
// non-free cells. Keys only mean something relative to the catalog that
// produced them.
//
// Decode does not check that indices are inside the catalog or distinct.
// Callers look indices up through catalog.Lookup, which degrades to a
// placeholder.

package keycodec

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Cells is the number of non-free cells on a card, and so the number of
	// codes in a well-formed key.
	Cells = 24

	// KeyLen is the length of a well-formed key.
	KeyLen = Cells * 2

	// MaxCatalog is the largest catalog a two-hex-digit code can address.
	MaxCatalog = 256

	// Invalid is returned by Decode for a chunk with no leading hex digit.
	Invalid = -1
)

var (
	ErrOddLength       = errors.New("keycodec: key length is odd")
	ErrWrongCount      = errors.New("keycodec: selection must have exactly 24 indices")
	ErrIndexRange      = errors.New("keycodec: index does not fit in one byte")
	ErrCatalogTooSmall = errors.New("keycodec: catalog has fewer than 24 items")
	ErrCatalogTooLarge = errors.New("keycodec: catalog has more than 256 items")
)

const hexDigits = "0123456789abcdef"

// Encode renders a selection of exactly 24 indices as a 48-character
// lowercase hex key, preserving order.
func Encode(indices []int) (string, error) {
	if len(indices) != Cells {
		return "", fmt.Errorf("%w: got %d", ErrWrongCount, len(indices))
	}
	var b strings.Builder
	b.Grow(KeyLen)
	for pos, idx := range indices {
		if idx < 0 || idx >= MaxCatalog {
			return "", fmt.Errorf("%w: position %d holds %d", ErrIndexRange, pos, idx)
		}
		b.WriteByte(hexDigits[idx>>4])
		b.WriteByte(hexDigits[idx&0x0f])
	}
	return b.String(), nil
}

// Decode splits key into consecutive two-character codes and parses each as
// base 16 (either case). A key may be shorter or longer than 48 characters;
// which codes reach the card is the caller's concern. Odd-length keys are
// rejected.
func Decode(key string) ([]int, error) {
	if len(key)%2 != 0 {
		return nil, fmt.Errorf("%w: %d characters", ErrOddLength, len(key))
	}
	out := make([]int, 0, len(key)/2)
	for i := 0; i < len(key); i += 2 {
		out = append(out, code(key[i], key[i+1]))
	}
	return out, nil
}

// code parses one chunk the way a lenient prefix parser does: leading space
// or '+' is skipped, parsing stops at the first non-hex digit, and a chunk
// with no digits (or a bare "0x" prefix, or a minus sign) is Invalid.
//
//	"1f" → 31   "1g" → 1   " 7" → 7   "g1" → Invalid   "0x" → Invalid
func code(a, b byte) int {
	hi, lo := nibble(a), nibble(b)
	switch {
	case hi >= 0 && lo >= 0:
		return hi<<4 | lo
	case a == '0' && (b == 'x' || b == 'X'):
		return Invalid
	case hi >= 0:
		return hi
	case isSpace(a) || a == '+':
		if lo >= 0 {
			return lo
		}
	}
	return Invalid
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// nibble returns the value of one hex digit, or -1.
func nibble(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
