package auth

// TokenValidator validates a raw token and returns its claims. TokenService
// satisfies it, custom implementations let the authenticator accept tokens
// minted by another issuer.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a plain function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrUnableToDecodeSession
	}
	return f(tokenString)
}

// MultiTokenValidator chains validators, useful during key or issuer
// rotation. A validator that reports the token as malformed hands off to the
// next one in the chain, any other failure stops the chain immediately.
type MultiTokenValidator struct {
	chain []TokenValidator
}

func NewMultiTokenValidator(validators ...TokenValidator) *MultiTokenValidator {
	m := &MultiTokenValidator{}
	for _, v := range validators {
		if v != nil {
			m.chain = append(m.chain, v)
		}
	}
	return m
}

func (m *MultiTokenValidator) Validate(tokenString string) (AuthClaims, error) {
	var lastErr error
	for _, v := range m.chain {
		claims, err := v.Validate(tokenString)
		if err == nil {
			return claims, nil
		}
		if !IsMalformedError(err) {
			return nil, err
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = ErrTokenMalformed
	}

	return nil, lastErr
}

var (
	_ TokenValidator = TokenValidatorFunc(nil)
	_ TokenValidator = (*MultiTokenValidator)(nil)
)
