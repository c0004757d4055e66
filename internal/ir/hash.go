package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSpec = "propdeps/spec/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SpecHash computes a content-addressed hash over a set of type specs.
// The hash is independent of map ordering but depends on spec order and on
// declaration order within each property, since both are observable in
// notification order.
func SpecHash(specs []TypeSpec) (string, error) {
	list := make([]any, len(specs))
	for i, s := range specs {
		list[i] = specToMap(s)
	}

	canonical, err := MarshalCanonical(map[string]any{
		"ir_version": IRVersion,
		"types":      list,
	})
	if err != nil {
		return "", fmt.Errorf("SpecHash: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainSpec, canonical), nil
}

// MustSpecHash is like SpecHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSpecHash(specs []TypeSpec) string {
	h, err := SpecHash(specs)
	if err != nil {
		panic(err)
	}
	return h
}

func specToMap(s TypeSpec) map[string]any {
	props := make([]any, len(s.Properties))
	for i, p := range s.Properties {
		deps := p.DependsOn
		if deps == nil {
			deps = []string{}
		}
		props[i] = map[string]any{
			"name":       p.Name,
			"depends_on": deps,
		}
	}
	return map[string]any{
		"name":       s.Name,
		"extends":    s.Extends,
		"properties": props,
	}
}
