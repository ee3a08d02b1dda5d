// Package hash computes content hashes, used by the import resolver to
// compare struct definitions for identity.
package hash

import "crypto/sha256"

// Hash is a 256-bit digest.
type Hash [32]byte

// Bytes hashes a byte slice.
func Bytes(data []byte) Hash {
	return sha256.Sum256(data)
}

// String hashes a string.
func String(s string) Hash {
	return Bytes([]byte(s))
}

// Add combines two hashes commutatively: h.Add(h2) == h2.Add(h), and
// Hash{}.Add(h) == h. Useful for hashing an unordered collection, such as
// the set of struct members compared during import-time struct-identity
// checks, where insertion order must not affect the result.
//
// Add treats each hash as a 256-bit big-endian integer and adds them modulo
// 2**256 (with carry), which is commutative and has Hash{} as the additive
// identity.
func (h Hash) Add(h2 Hash) Hash {
	var out Hash
	var carry uint16
	for i := len(out) - 1; i >= 0; i-- {
		sum := uint16(h[i]) + uint16(h2[i]) + carry
		out[i] = byte(sum)
		carry = sum >> 8
	}
	return out
}

// Merge combines two hashes order-sensitively: h.Merge(h2) generally differs
// from h2.Merge(h). Suited to folding a hash into a running accumulator
// where element order matters; struct identity checks use Add instead.
func (h Hash) Merge(h2 Hash) Hash {
	buf := make([]byte, 0, len(h)+len(h2))
	buf = append(buf, h[:]...)
	buf = append(buf, h2[:]...)
	return Bytes(buf)
}

// String renders the hash as a hex string, e.g. for use in cache-file names.
func (h Hash) String() string {
	const hextable = "0123456789abcdef"
	buf := make([]byte, len(h)*2)
	for i, b := range h {
		buf[i*2] = hextable[b>>4]
		buf[i*2+1] = hextable[b&0xf]
	}
	return string(buf)
}
