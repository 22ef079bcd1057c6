// Package digest fingerprints encoded assets so round trips can be compared
// without holding both buffers.
package digest

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Hash is a BLAKE3-256 digest.
type Hash [32]byte

func Sum(data []byte) Hash { return blake3.Sum256(data) }

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// Short returns the first 12 hex digits, enough to tell files apart in logs.
func (h Hash) Short() string { return h.String()[:12] }

// MarshalText encodes the hash as hex so it prints the same in every dump
// format.
func (h Hash) MarshalText() ([]byte, error) { return []byte(h.String()), nil }
