package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for a future algorithm migration.
const (
	DomainCircuit = "qnet/circuit/v1"
	DomainCounts  = "qnet/counts/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CircuitHash computes the content-addressed identity of a circuit.
// Two structurally equal circuits always hash to the same value, which is
// how the builder's determinism is checked and how stored runs are grouped.
func CircuitHash(c *Circuit) (string, error) {
	canonical, err := MarshalCanonical(c.IR())
	if err != nil {
		return "", fmt.Errorf("CircuitHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCircuit, canonical), nil
}

// CountsHash computes the identity of an outcome-count mapping.
func CountsHash(c Counts) (string, error) {
	canonical, err := MarshalCanonical(c.IR())
	if err != nil {
		return "", fmt.Errorf("CountsHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCounts, canonical), nil
}

// MustCircuitHash is like CircuitHash but panics on error.
// Use only in tests or when the circuit is known to be valid.
func MustCircuitHash(c *Circuit) string {
	h, err := CircuitHash(c)
	if err != nil {
		panic(err)
	}
	return h
}
