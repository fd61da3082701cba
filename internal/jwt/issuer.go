// Package jwt emite y verifica los access tokens del API móvil.
//
// Los access tokens son HS256, stateless y de vida corta (15m): se validan
// solo por firma y expiración. La revocación vive en los refresh tokens,
// que son opacos y con estado (ver store/pg).
package jwt

import (
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/shepherd/internal/domain"
)

// Nombres de claims propios del API. Los estándar (iss/sub/iat/nbf/exp) van
// aparte.
const (
	ClaimUserID             = "userId"
	ClaimRoles              = "roles"
	ClaimTenantID           = "tenantId"
	ClaimLocalChurchID      = "localChurchId"
	ClaimAccessibleChurches = "accessibleChurchIds"
)

// Issuer firma access tokens con el secreto HS256 compartido.
type Issuer struct {
	Iss       string
	Secret    []byte
	AccessTTL time.Duration // default 15m
}

func NewIssuer(iss string, secret []byte) *Issuer {
	return &Issuer{
		Iss:       iss,
		Secret:    secret,
		AccessTTL: 15 * time.Minute,
	}
}

// IssueAccess emite un access token para el principal dado. El claim set es
// la proyección completa del principal: quien verifica el token reconstruye
// el Principal sin tocar la base.
func (i *Issuer) IssueAccess(p domain.Principal) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(i.AccessTTL)

	churches := p.AccessibleChurchIDs
	if churches == nil {
		churches = []string{}
	}

	claims := jwtv5.MapClaims{
		"iss":                   i.Iss,
		"sub":                   p.UserID,
		"iat":                   now.Unix(),
		"nbf":                   now.Unix(),
		"exp":                   exp.Unix(),
		ClaimUserID:             p.UserID,
		ClaimRoles:              []string{string(p.Role)},
		ClaimTenantID:           p.TenantID,
		ClaimLocalChurchID:      p.LocalChurchID,
		ClaimAccessibleChurches: churches,
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, exp, nil
}
