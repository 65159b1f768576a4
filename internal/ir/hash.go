package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows a future algorithm change.
const (
	DomainSnapshot = "reductions/snapshot/v1"
	DomainEntry    = "reductions/entry/v1"
)

// hashWithDomain computes SHA256(domain || 0x00 || data).
// The separator keeps domain and data boundaries unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash returns the domain-separated hash of v's canonical JSON.
func ContentHash(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("ContentHash: failed to marshal: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// EntryKey identifies a reduction registration by its endpoints and variants.
// Two registrations with the same key describe the same reduction.
func EntryKey(source string, sourceVariant Variant, target string, targetVariant Variant) (string, error) {
	return ContentHash(DomainEntry, Object{
		"source":         String(source),
		"source_variant": sourceVariant.IR(),
		"target":         String(target),
		"target_variant": targetVariant.IR(),
	})
}
