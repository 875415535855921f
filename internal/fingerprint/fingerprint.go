// Package fingerprint computes content digests for change detection.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// New returns the hex digest over an article's title and concatenated body
// text. Collision resistance is not a security requirement here; the digest
// is only compared for equality between crawl runs.
func New(title, body string) string {
	sum := sha256.Sum256([]byte(title + body))
	return hex.EncodeToString(sum[:])
}
