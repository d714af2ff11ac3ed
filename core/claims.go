package core

// Claims is the decoded payload of a token.
type Claims map[string]any

// String returns the claim under key if it is a non-empty string.
func (c Claims) String(key string) (string, bool) {
	v, ok := c[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Clone returns a shallow copy of the claims.
func (c Claims) Clone() Claims {
	out := make(Claims, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	return out
}
