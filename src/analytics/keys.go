package analytics

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/nbd-wtf/go-nostr"
)

// EncodeBech32 encodes a hex key under the given human readable prefix
// ("nsec" or "npub").
func EncodeBech32(hrp, hexKey string) (string, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return "", fmt.Errorf("invalid hex key: %w", err)
	}

	fiveBitGroups, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("failed to convert key bits: %w", err)
	}

	encoded, err := bech32.Encode(hrp, fiveBitGroups)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", hrp, err)
	}
	return encoded, nil
}

// Npub returns the bech32 public key that signs analytics notes for
// privateKey.
func Npub(privateKey string) (string, error) {
	publicKey, err := nostr.GetPublicKey(privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to derive public key: %w", err)
	}
	return EncodeBech32("npub", publicKey)
}

// Identity returns the npub analytics notes are published under, or an empty
// string when publishing is disabled.
func (a *NostrAnalytics) Identity() string {
	if !a.config.Enabled {
		return ""
	}
	npub, err := Npub(a.config.PrivateKey)
	if err != nil {
		return ""
	}
	return npub
}
