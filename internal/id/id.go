// Package id generates prefixed NanoID identifiers, e.g.
// "search-V1StGXR8_Z5jdHi6B-myT". NanoIDs are URL-safe and shorter
// than UUIDs, which keeps search record IDs readable in logs.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate returns prefix + "-" + a 21-character NanoID. It fails only
// when the system cannot supply secure random bytes.
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// MustGenerate is Generate panicking on failure. Use it where an
// entropy failure should crash the program.
func MustGenerate(prefix string) string {
	nid, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("generate id: %v", err))
	}
	return nid
}
