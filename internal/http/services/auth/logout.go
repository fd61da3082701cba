package auth

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/shepherd/internal/audit"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
	"github.com/dropDatabas3/shepherd/internal/security/token"
)

// Logout revoca la cadena del token presentado. Un token desconocido o ya
// revocado no es error: el logout es idempotente por contrato.
func (s *service) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}

	rec, err := s.deps.Tokens.GetByHash(ctx, token.SHA256Hex(rawToken))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("logout: %w", err)
	}

	n, err := s.deps.Tokens.RevokeChain(ctx, rec.RotationID)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	audit.Log(ctx, audit.EventLogout, map[string]any{
		"user_id":     rec.UserID,
		"rotation_id": rec.RotationID,
		"revoked":     n,
	})
	logger.From(ctx).Debug("logout", logger.UserID(rec.UserID), logger.Count(n))
	return nil
}
