package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"eventhub/internal/domain"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload the identity provider puts into access tokens.
type Claims struct {
	jwt.RegisteredClaims
	Email       string `json:"email"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

type jwtVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTVerifier returns a TokenVerifier for HS256 tokens signed with secret.
func NewJWTVerifier(secret string) domain.TokenVerifier {
	return &jwtVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

func (v *jwtVerifier) Verify(token string) (*domain.Actor, error) {
	var claims Claims
	parsed, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &domain.Actor{
		UserID:      claims.Subject,
		Email:       claims.Email,
		IsStaff:     claims.IsStaff,
		IsSuperuser: claims.IsSuperuser,
	}, nil
}
