package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/shepherd/internal/domain"
)

var (
	// ErrInvalid cubre firma inválida, formato roto, issuer ajeno o claims
	// que no proyectan a un principal válido.
	ErrInvalid = errors.New("invalid access token")
	// ErrExpired indica exp vencido (el cliente debe refrescar).
	ErrExpired = errors.New("access token expired")
)

// VerifyAccess valida firma y vigencia del token y reconstruye el Principal.
// Cualquier claim que no proyecte a un rol conocido invalida el token: un rol
// desconocido nunca debe ganar acceso.
func (i *Issuer) VerifyAccess(token string) (domain.Principal, error) {
	keyfunc := func(t *jwtv5.Token) (any, error) {
		return i.Secret, nil
	}

	tok, err := jwtv5.Parse(token, keyfunc,
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithIssuer(i.Iss),
		jwtv5.WithLeeway(30*time.Second),
	)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return domain.Principal{}, ErrExpired
		}
		return domain.Principal{}, ErrInvalid
	}
	if !tok.Valid {
		return domain.Principal{}, ErrInvalid
	}

	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return domain.Principal{}, ErrInvalid
	}

	userID := claimString(claims, ClaimUserID)
	if userID == "" {
		// Compat: sub siempre lleva el user id.
		userID = claimString(claims, "sub")
	}
	if userID == "" {
		return domain.Principal{}, ErrInvalid
	}

	roles := claimStringSlice(claims, ClaimRoles)
	if len(roles) == 0 {
		return domain.Principal{}, ErrInvalid
	}
	role, err := domain.ParseRole(roles[0])
	if err != nil {
		return domain.Principal{}, ErrInvalid
	}

	return domain.Principal{
		UserID:              userID,
		Role:                role,
		TenantID:            claimString(claims, ClaimTenantID),
		LocalChurchID:       claimString(claims, ClaimLocalChurchID),
		AccessibleChurchIDs: claimStringSlice(claims, ClaimAccessibleChurches),
	}, nil
}

func claimString(claims jwtv5.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func claimStringSlice(claims jwtv5.MapClaims, key string) []string {
	raw, ok := claims[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
