// Package digest computes the hex addresses used for blobs and commits.
//
// Addresses are SHA-1 digests rendered as 40 lowercase hex characters, so a
// 7-character prefix is a usable abbreviation. Hashing goes through
// multihash to keep the function code explicit at the call site.
package digest

import (
	"encoding/hex"
	"fmt"

	"github.com/multiformats/go-multihash"
)

// Len is the length of a hex address.
const Len = 40

// Sum returns the hex address of data.
func Sum(data []byte) (string, error) {
	mh, err := multihash.Sum(data, multihash.SHA1, -1)
	if err != nil {
		return "", fmt.Errorf("multihash: %w", err)
	}
	dec, err := multihash.Decode(mh)
	if err != nil {
		return "", fmt.Errorf("decode multihash: %w", err)
	}
	return hex.EncodeToString(dec.Digest), nil
}

// MustSum is Sum for inputs that cannot fail to hash. SHA-1 is always
// registered, so an error here means a broken build.
func MustSum(data []byte) string {
	s, err := Sum(data)
	if err != nil {
		panic(err)
	}
	return s
}

// Valid reports whether s looks like a full hex address.
func Valid(s string) bool {
	if len(s) != Len {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
