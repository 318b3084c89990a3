package analytics

import (
	"testing"

	"github.com/OpenTollGate/awareness-food/src/config_manager"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBech32RoundTrip(t *testing.T) {
	nsec, err := EncodeBech32("nsec", testKey)
	require.NoError(t, err)

	hrp, data, err := bech32.Decode(nsec)
	require.NoError(t, err)
	assert.Equal(t, "nsec", hrp)

	raw, err := bech32.ConvertBits(data, 5, 8, false)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	_, err = EncodeBech32("nsec", "xyz")
	assert.Error(t, err)
}

func TestNpubMatchesPublicKey(t *testing.T) {
	publicKey, err := nostr.GetPublicKey(testKey)
	require.NoError(t, err)

	expected, err := EncodeBech32("npub", publicKey)
	require.NoError(t, err)

	npub, err := Npub(testKey)
	require.NoError(t, err)
	assert.Equal(t, expected, npub)
	assert.Contains(t, npub, "npub1")
}

func TestIdentity(t *testing.T) {
	disabled, err := New(config_manager.AnalyticsConfig{PrivateKey: testKey}, nil)
	require.NoError(t, err)
	assert.Empty(t, disabled.Identity())

	enabled, err := New(config_manager.AnalyticsConfig{Enabled: true, PrivateKey: testKey}, &recordingPublisher{})
	require.NoError(t, err)
	npub, err := Npub(testKey)
	require.NoError(t, err)
	assert.Equal(t, npub, enabled.Identity())
}
