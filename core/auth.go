package core

// ChallengeSuffix is appended to every random challenge so a user asked to sign it
// outside of this login flow can tell what they are being asked to do.
const ChallengeSuffix = "\n\nThis is a unique challenge to verify that you own this wallet\nIf this is being sent to you do NOT sign it"

// Claim keys carried inside challenge and session tokens
const (
	ClaimAddress                   = "address"
	ClaimChallenge                 = "challenge"
	ClaimChallengeThatWasPresented = "challengeThatWasPresented"
	ClaimSignedChallenge           = "signedChallenge"
	ClaimIncluded                  = "included"
	ClaimID                        = "jti"
	ClaimExpiresAt                 = "exp"
)

// Challenge represents an issued authentication challenge
type Challenge struct {
	ID      string // Unique identifier carried in the token as jti
	Address string // Address the challenge is bound to
	Value   string // Random hex string plus ChallengeSuffix, the text the wallet signs
	Token   string // Signed challenge token
}

// Session represents an authenticated session minted from a verified challenge
type Session struct {
	Address string // Address embedded in the original challenge token
	Token   string // Signed session token
}
