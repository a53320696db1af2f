// Package jwttoken issues and validates the bearer tokens the HTTP facade
// uses to authenticate participant principals. The ledger core never sees
// tokens; middleware extracts the principal and hands it down via context.
package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
	derrors "github.com/grace-umanah/bit-holdings/pkg/domain-errors"
)

// Claims represents the JWT claims for our access tokens. The participant
// principal rides in the subject claim.
type Claims struct {
	jwt.RegisteredClaims
}

// Principal returns the participant principal carried by the token.
func (c *Claims) Principal() (id.Participant, error) {
	return id.ParseParticipant(c.Subject)
}

// JWTService handles JWT creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

func (s *JWTService) GenerateAccessToken(principal id.Participant, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// PrincipalFromToken validates the token and returns the participant
// principal it carries. This is the shape the auth middleware consumes.
func (s *JWTService) PrincipalFromToken(tokenString string) (id.Participant, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	principal, err := claims.Principal()
	if err != nil {
		return "", derrors.New(derrors.CodeUnauthorized, "invalid token subject")
	}
	return principal, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, derrors.New(derrors.CodeUnauthorized, "token has expired")
		}
		return nil, derrors.New(derrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, derrors.New(derrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, derrors.New(derrors.CodeUnauthorized, "invalid token claims")
	}

	return claims, nil
}
