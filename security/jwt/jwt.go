package jwt

import (
	"fmt"
	"time"

	jwtstd "github.com/golang-jwt/jwt/v5"
)

// TokenError represents JWT token related errors
type TokenError string

func (e TokenError) Error() string {
	return string(e)
}

const (
	DefaultAccessTokenExpire = time.Hour * 24 * 7

	ErrNeedTokenProvider = TokenError("cannot sign token without token provider")
	ErrInvalidToken      = TokenError("invalid token")
	ErrTokenParsing      = TokenError("token parsing error")
)

// Token represents the token body
type Token struct {
	JTI     string         `json:"jti"`
	Payload map[string]any `json:"payload"`
	Subject string         `json:"sub"`
	Expire  time.Duration  `json:"-"`
}

// TokenManager handles JWT token operations
type TokenManager struct {
	key    string
	expire time.Duration
	now    func() time.Time
}

// NewTokenManager creates a new TokenManager instance. A non-positive
// expire uses DefaultAccessTokenExpire.
func NewTokenManager(key string, expire time.Duration) *TokenManager {
	if expire <= 0 {
		expire = DefaultAccessTokenExpire
	}
	return &TokenManager{key: key, expire: expire, now: time.Now}
}

// validateKey validates the token key
func (jtm *TokenManager) validateKey() error {
	if jtm.key == "" {
		return ErrNeedTokenProvider
	}
	return nil
}

// generateToken generates a JWT token
func (jtm *TokenManager) generateToken(token *Token) (string, time.Time, error) {
	if err := jtm.validateKey(); err != nil {
		return "", time.Time{}, err
	}

	now := jtm.now()
	expiresAt := now.Add(token.Expire)
	claims := jwtstd.MapClaims{
		"jti":     token.JTI,
		"sub":     token.Subject,
		"payload": token.Payload,
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
	}

	t := jwtstd.NewWithClaims(jwtstd.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(jtm.key))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, time.Unix(expiresAt.Unix(), 0), nil
}

// GenerateAccessToken signs an access token for subject and returns it
// with its expiry.
func (jtm *TokenManager) GenerateAccessToken(jti string, payload map[string]any, subject string) (string, time.Time, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	return jtm.generateToken(&Token{JTI: jti, Payload: payload, Subject: subject, Expire: jtm.expire})
}

// ValidateToken parses and verifies a token signed with HS256.
func (jtm *TokenManager) ValidateToken(tokenString string) (*jwtstd.Token, error) {
	if err := jtm.validateKey(); err != nil {
		return nil, err
	}

	return jwtstd.Parse(tokenString, func(token *jwtstd.Token) (any, error) {
		if _, ok := token.Method.(*jwtstd.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, token.Header["alg"])
		}
		return []byte(jtm.key), nil
	}, jwtstd.WithTimeFunc(jtm.now))
}

// DecodeToken decodes a JWT token into its claims
func (jtm *TokenManager) DecodeToken(tokenString string) (map[string]any, error) {
	token, err := jtm.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return token.Claims.(jwtstd.MapClaims), nil
}

// GetTokenExpiryTime extracts the expiration time from a token
func (jtm *TokenManager) GetTokenExpiryTime(tokenString string) (time.Time, error) {
	claims, err := jtm.DecodeToken(tokenString)
	if err != nil {
		return time.Time{}, err
	}

	exp := GetExpirationFromToken(claims)
	if exp.IsZero() {
		return time.Time{}, ErrTokenParsing
	}
	return exp, nil
}
