package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/shepherd/internal/audit"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/auth"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
	"github.com/dropDatabas3/shepherd/internal/security/token"
)

// Refresh implementa la máquina de estados del refresh token:
//
//	desconocido o revocado  -> ErrRefreshInvalid
//	vencido                 -> ErrRefreshExpired
//	ya usado (reuso)        -> revocar cadena completa, ErrRefreshReused
//	activo                  -> rotar: marcar usado + emitir sucesor
//
// La detección de reuso vive en el store (check-and-set transaccional sobre
// used_at), así vale entre múltiples instancias del servidor.
func (s *service) Refresh(ctx context.Context, rawToken string) (*dto.RefreshResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("auth"), logger.Op("Refresh"))

	if rawToken == "" {
		return nil, ErrRefreshInvalid
	}

	rec, err := s.deps.Tokens.GetByHash(ctx, token.SHA256Hex(rawToken))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrRefreshInvalid
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}

	switch {
	case rec.RevokedAt != nil:
		return nil, ErrRefreshInvalid
	case time.Now().After(rec.ExpiresAt):
		return nil, ErrRefreshExpired
	case rec.UsedAt != nil:
		// Reuso detectado por la lectura: revocar la cadena entera.
		return nil, s.handleReuse(ctx, rec)
	}

	next, err := token.GenerateOpaqueToken(32)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenIssue, err)
	}

	_, err = s.deps.Tokens.Rotate(ctx, rec.ID, repository.CreateRefreshTokenInput{
		UserID:     rec.UserID,
		TokenHash:  token.SHA256Hex(next),
		RotationID: rec.RotationID,
		TTL:        s.deps.RefreshTTL,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyRotated) {
			// Carrera: otro request rotó este mismo token entre la lectura y
			// el check-and-set. Mismo tratamiento que el reuso.
			return nil, s.handleReuse(ctx, rec)
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}

	u, err := s.deps.Users.GetByID(ctx, rec.UserID)
	if err != nil || u.Disabled() {
		// Usuario borrado o deshabilitado después del login: cortar la cadena.
		if _, revErr := s.deps.Tokens.RevokeChain(ctx, rec.RotationID); revErr != nil {
			log.Warn("chain revoke failed", logger.Err(revErr))
		}
		return nil, ErrRefreshInvalid
	}

	p, err := s.principalFor(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	access, _, err := s.deps.Issuer.IssueAccess(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenIssue, err)
	}

	audit.Log(ctx, audit.EventTokenRotated, map[string]any{
		"user_id":     rec.UserID,
		"rotation_id": rec.RotationID,
	})

	return &dto.RefreshResponse{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.deps.Issuer.AccessTTL.Seconds()),
		RefreshToken: next,
	}, nil
}

// handleReuse revoca la cadena del token reusado y deja rastro de auditoría.
// Siempre devuelve ErrRefreshReused.
func (s *service) handleReuse(ctx context.Context, rec *repository.RefreshToken) error {
	n, err := s.deps.Tokens.RevokeChain(ctx, rec.RotationID)
	if err != nil {
		logger.From(ctx).Error("revoke chain on reuse failed",
			logger.String("rotation_id", rec.RotationID), logger.Err(err))
	}
	audit.Log(ctx, audit.EventTokenReuse, map[string]any{
		"user_id":     rec.UserID,
		"rotation_id": rec.RotationID,
		"revoked":     n,
	})
	return ErrRefreshReused
}
