// Package id generates prefixed, URL-safe entity identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes. The prefix makes IDs self-describing in logs and URLs.
const (
	PrefixUser      = "usr"
	PrefixAuthor    = "aut"
	PrefixBook      = "bk"
	PrefixCartItem  = "ci"
	PrefixOrder     = "ord"
	PrefixOrderItem = "oi"
)

// Generate creates a prefixed unique ID using NanoID,
// e.g. "bk-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

