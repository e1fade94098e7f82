package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// BookingReferencePrefix starts every booking reference
const BookingReferencePrefix = "BK-"

const (
	referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	referenceLength   = 9
	// largest multiple of 36 that fits in a byte; bytes at or above it are rejected
	referenceByteLimit = 252
)

// GenerateSecret generates a cryptographically secure random secret
func GenerateSecret(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateJWTSecret generates a 256-bit signing secret
func GenerateJWTSecret() (string, error) {
	secret, err := GenerateSecret(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate jwt secret: %w", err)
	}
	return secret, nil
}

// GenerateBookingReference returns "BK-" followed by nine upper-case base-36
// characters, e.g. BK-7QX2M0ZKA.
func GenerateBookingReference() (string, error) {
	out := make([]byte, 0, referenceLength)
	buf := make([]byte, referenceLength*2)

	for len(out) < referenceLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate booking reference: %w", err)
		}
		for _, b := range buf {
			if b >= referenceByteLimit {
				continue
			}
			out = append(out, referenceAlphabet[int(b)%len(referenceAlphabet)])
			if len(out) == referenceLength {
				break
			}
		}
	}

	return BookingReferencePrefix + string(out), nil
}
