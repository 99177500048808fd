package identity

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zentale/story-system/internal/core/domain"
)

// JWTVerifier validates HS256-signed identity tokens and extracts the user ID
// from the "sub" claim, falling back to "user_id" for older token issuers.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify checks the token's signature and expiry and returns the subject.
func (v *JWTVerifier) Verify(_ context.Context, token string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !tkn.Valid {
		return "", domain.ErrInvalidToken
	}

	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub, nil
	}
	if uid, ok := claims["user_id"].(string); ok && uid != "" {
		return uid, nil
	}
	return "", domain.ErrInvalidToken
}
