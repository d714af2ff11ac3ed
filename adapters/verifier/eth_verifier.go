package verifier

import (
	"context"
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/layer-3/addrauth/ports"
)

// EthVerifier verifies EIP-191 personal_sign signatures made by an Ethereum account
type EthVerifier struct{}

// NewEthVerifier creates a new Ethereum signature verifier
func NewEthVerifier() ports.SignatureVerifier {
	return EthVerifier{}
}

// Verify recovers the signer of challenge from signature and compares it with address.
// When publicKey is set it must belong to the same account.
// Malformed input is reported as an invalid signature, not as an error.
func (EthVerifier) Verify(ctx context.Context, challenge, signature, publicKey, address string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if !common.IsHexAddress(address) {
		return false, nil
	}
	expected := common.HexToAddress(address)

	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return false, nil
	}

	// Wallets return V as 27/28, SigToPub expects 0/1
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(challenge)), sig)
	if err != nil {
		return false, nil
	}

	if crypto.PubkeyToAddress(*pub) != expected {
		return false, nil
	}

	if publicKey != "" {
		claimed, ok := parsePublicKey(publicKey)
		if !ok || crypto.PubkeyToAddress(*claimed) != expected {
			return false, nil
		}
	}

	return true, nil
}

// parsePublicKey accepts a hex encoded secp256k1 key, compressed or not
func parsePublicKey(s string) (*ecdsa.PublicKey, bool) {
	raw, err := hexutil.Decode(s)
	if err != nil {
		return nil, false
	}

	var pub *ecdsa.PublicKey
	if len(raw) == 33 {
		pub, err = crypto.DecompressPubkey(raw)
	} else {
		pub, err = crypto.UnmarshalPubkey(raw)
	}
	if err != nil {
		return nil, false
	}

	return pub, true
}
