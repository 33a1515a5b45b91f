package auth

import (
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMalformed = errors.New("token malformed or signature invalid")
	ErrTokenExpired   = errors.New("token expired")
)

// Manager owns the HMAC signing key and the configured token lifetime.
// Tokens are stateless: validity is a function of content, key and clock.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager decodes the base64-encoded secret from configuration.
func NewManager(secretBase64 string, ttl time.Duration) (*Manager, error) {
	if secretBase64 == "" {
		return nil, errors.New("jwt secret is required")
	}

	secret, err := base64.StdEncoding.DecodeString(secretBase64)

	if err != nil {
		return nil, errors.New("jwt secret must be base64-encoded")
	}

	return &Manager{secret: secret, ttl: ttl}, nil
}

// Issue signs a token for subject with iat=now and exp=now+lifetime. Extra
// claims are merged in before the registered ones, so callers cannot
// overwrite sub/iat/exp.
func (m *Manager) Issue(subject string, extra map[string]any) (string, error) {
	now := time.Now().UTC()

	claims := jwt.MapClaims{}

	for k, v := range extra {
		claims[k] = v
	}

	claims["sub"] = subject
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(m.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify returns nil iff the signature checks out against the configured key
// and the expiration claim is strictly in the future. No leeway is applied.
func (m *Manager) Verify(tokenStr string) error {
	claims, err := m.parse(tokenStr)

	if err != nil {
		return err
	}

	exp, err := claims.GetExpirationTime()

	if err != nil || exp == nil {
		return ErrTokenMalformed
	}

	if !exp.After(time.Now()) {
		return ErrTokenExpired
	}
	return nil
}

// MatchesSubject reports whether the token verifies and its subject equals
// the expected identity.
func (m *Manager) MatchesSubject(tokenStr, expected string) bool {
	if err := m.Verify(tokenStr); err != nil {
		return false
	}

	sub, err := m.ExtractSubject(tokenStr)

	if err != nil {
		return false
	}
	return sub == expected
}

// ExtractSubject decodes the subject claim. It fails with ErrTokenMalformed
// when the token cannot be parsed or its signature does not verify.
func (m *Manager) ExtractSubject(tokenStr string) (string, error) {
	claims, err := m.parse(tokenStr)

	if err != nil {
		return "", err
	}

	sub, err := claims.GetSubject()

	if err != nil || sub == "" {
		return "", ErrTokenMalformed
	}
	return sub, nil
}

// Lifetime returns the configured token lifetime, not a per-token remaining
// value. Clients use it to know the expected TTL.
func (m *Manager) Lifetime() time.Duration {
	return m.ttl
}

func (m *Manager) parse(tokenStr string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	if !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
