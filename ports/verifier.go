package ports

import "context"

// SignatureVerifier checks that signature is a valid signature of challenge made by
// the key behind publicKey / address. A false result means the signature is wrong;
// an error means the check itself could not be performed.
type SignatureVerifier interface {
	Verify(ctx context.Context, challenge, signature, publicKey, address string) (bool, error)
}

// SignatureVerifierFunc adapts a plain function to SignatureVerifier
type SignatureVerifierFunc func(ctx context.Context, challenge, signature, publicKey, address string) (bool, error)

func (f SignatureVerifierFunc) Verify(ctx context.Context, challenge, signature, publicKey, address string) (bool, error) {
	return f(ctx, challenge, signature, publicKey, address)
}
