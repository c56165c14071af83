// Package idhash computes the deterministic element identifiers used
// throughout the engine: "<kind>_" + first 16 hex chars of
// blake3("<kind>/" + join(parts, "/")).
package idhash

import (
	"strings"

	"lukechampine.com/blake3"
)

// Generate returns the deterministic id for an element of the given kind
// whose identity is formed from parts (e.g. [relative_path] for a file,
// [relative_path, name] for a top-level element, or
// [relative_path, parent_class, name] for a method).
func Generate(kind string, parts ...string) string {
	input := kind + "/" + strings.Join(parts, "/")
	sum := blake3.Sum256([]byte(input))
	return kind + "_" + hex16(sum[:])
}

const hexDigits = "0123456789abcdef"

// hex16 returns the first 16 lowercase hex characters of b (i.e. the first
// 8 bytes), matching the original implementation's first16Hex truncation.
func hex16(b []byte) string {
	n := 8
	if len(b) < n {
		n = len(b)
	}
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		out[i*2] = hexDigits[b[i]>>4]
		out[i*2+1] = hexDigits[b[i]&0x0f]
	}
	return string(out)
}
