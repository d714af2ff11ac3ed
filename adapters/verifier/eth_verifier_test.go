package verifier

import (
	"context"
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/addrauth/core"
)

func personalSign(t *testing.T, key *ecdsa.PrivateKey, msg string, walletV bool) string {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash([]byte(msg)), key)
	require.NoError(t, err)
	if walletV {
		sig[crypto.RecoveryIDOffset] += 27
	}
	return hexutil.Encode(sig)
}

func TestEthVerifier(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	other, err := crypto.GenerateKey()
	require.NoError(t, err)

	challenge := "5f2c" + core.ChallengeSuffix
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()
	uncompressed := hexutil.Encode(crypto.FromECDSAPub(&key.PublicKey))
	compressed := hexutil.Encode(crypto.CompressPubkey(&key.PublicKey))
	otherKey := hexutil.Encode(crypto.FromECDSAPub(&other.PublicKey))

	tests := []struct {
		name      string
		signature string
		publicKey string
		address   string
		want      bool
	}{
		{
			name:      "wallet signature",
			signature: personalSign(t, key, challenge, true),
			address:   address,
			want:      true,
		},
		{
			name:      "raw recovery id",
			signature: personalSign(t, key, challenge, false),
			address:   address,
			want:      true,
		},
		{
			name:      "matching uncompressed public key",
			signature: personalSign(t, key, challenge, true),
			publicKey: uncompressed,
			address:   address,
			want:      true,
		},
		{
			name:      "matching compressed public key",
			signature: personalSign(t, key, challenge, true),
			publicKey: compressed,
			address:   address,
			want:      true,
		},
		{
			name:      "lowercase address",
			signature: personalSign(t, key, challenge, true),
			address:   hexutil.Encode(crypto.PubkeyToAddress(key.PublicKey).Bytes()),
			want:      true,
		},
		{
			name:      "mismatched public key",
			signature: personalSign(t, key, challenge, true),
			publicKey: otherKey,
			address:   address,
			want:      false,
		},
		{
			name:      "signed by another account",
			signature: personalSign(t, other, challenge, true),
			address:   address,
			want:      false,
		},
		{
			name:      "different message",
			signature: personalSign(t, key, "something else", true),
			address:   address,
			want:      false,
		},
		{
			name:      "not hex",
			signature: "signature",
			address:   address,
			want:      false,
		},
		{
			name:      "short signature",
			signature: "0x1234",
			address:   address,
			want:      false,
		},
		{
			name:      "not an address",
			signature: personalSign(t, key, challenge, true),
			address:   "cosmos1xyz",
			want:      false,
		},
		{
			name:      "garbage public key",
			signature: personalSign(t, key, challenge, true),
			publicKey: "0xdeadbeef",
			address:   address,
			want:      false,
		},
	}

	v := NewEthVerifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := v.Verify(context.Background(), challenge, tt.signature, tt.publicKey, tt.address)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestEthVerifierCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEthVerifier().Verify(ctx, "challenge", "0x", "", "0x0000000000000000000000000000000000000000")
	assert.ErrorIs(t, err, context.Canceled)
}
