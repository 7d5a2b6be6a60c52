package jwt

// Verifier checks bearer credentials against a single HMAC secret.
// It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	secret string
}

// NewVerifier returns a Verifier for tokens signed with secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Verify returns the user id carried by token, or an error wrapping ErrUnauthorized.
func (v *Verifier) Verify(token string) (int64, error) {
	payload, err := ParseToken(token, v.secret)
	if err != nil {
		return 0, err
	}
	return payload.UserID, nil
}

// Payload is Verify returning the full claim set.
func (v *Verifier) Payload(token string) (*Payload, error) {
	return ParseToken(token, v.secret)
}
