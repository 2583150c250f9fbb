package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sort"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex characters, enough for filenames and logs
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// Fingerprint accumulates labelled float blocks into one deterministic hash.
// Keys are sorted before hashing so insertion order does not matter.
type Fingerprint struct {
	parts map[string][]byte
}

// NewFingerprint creates an empty fingerprint accumulator
func NewFingerprint() *Fingerprint {
	return &Fingerprint{parts: make(map[string][]byte)}
}

// AddFloats appends values under key
func (f *Fingerprint) AddFloats(key string, values []float64) {
	buf := f.parts[key]
	var b [8]byte
	for _, v := range values {
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		buf = append(buf, b[:]...)
	}
	f.parts[key] = buf
}

// AddString appends a label under key
func (f *Fingerprint) AddString(key, value string) {
	f.parts[key] = append(f.parts[key], value...)
	f.parts[key] = append(f.parts[key], 0)
}

// Sum returns the combined hash
func (f *Fingerprint) Sum() Hash {
	keys := make([]string, 0, len(f.parts))
	for k := range f.parts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write(f.parts[k])
	}
	return Hash(hex.EncodeToString(h.Sum(nil)))
}
