package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/shepherd/internal/audit"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/auth"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
	"github.com/dropDatabas3/shepherd/internal/security/password"
	"github.com/dropDatabas3/shepherd/internal/security/token"
)

// hash argon2id de relleno para igualar el costo cuando el email no existe.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

func (s *service) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("auth"), logger.Op("Login"))

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.deps.Users.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			// Verificación de relleno: mismo costo que un password real para
			// no filtrar si el email existe por timing.
			password.Verify(req.Password, dummyHash)
			audit.Log(ctx, audit.EventLoginFailed, map[string]any{"email": email, "reason": "unknown_email"})
			return nil, ErrInvalidCredentials
		}
		log.Error("login lookup failed", logger.Err(err))
		return nil, fmt.Errorf("login: %w", err)
	}

	if !password.Verify(req.Password, u.PasswordHash) {
		audit.Log(ctx, audit.EventLoginFailed, map[string]any{"user_id": u.ID, "reason": "bad_password"})
		return nil, ErrInvalidCredentials
	}
	if u.Disabled() {
		audit.Log(ctx, audit.EventLoginFailed, map[string]any{"user_id": u.ID, "reason": "disabled"})
		return nil, ErrUserDisabled
	}

	p, err := s.principalFor(ctx, u)
	if err != nil {
		log.Error("principal build failed", logger.Err(err))
		return nil, fmt.Errorf("login: %w", err)
	}

	access, _, err := s.deps.Issuer.IssueAccess(p)
	if err != nil {
		log.Error("access token issue failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrTokenIssue, err)
	}

	refresh, err := token.GenerateOpaqueToken(32)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenIssue, err)
	}
	if _, err := s.deps.Tokens.Create(ctx, repository.CreateRefreshTokenInput{
		UserID:    u.ID,
		TokenHash: token.SHA256Hex(refresh),
		TTL:       s.deps.RefreshTTL,
	}); err != nil {
		log.Error("refresh token persist failed", logger.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrTokenIssue, err)
	}

	audit.Log(ctx, audit.EventLoginOK, map[string]any{"user_id": u.ID})
	log.Info("login ok", logger.UserID(u.ID), logger.Role(string(u.Role)))

	return &dto.LoginResponse{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.deps.Issuer.AccessTTL.Seconds()),
		RefreshToken: refresh,
		User:         userInfo(u),
	}, nil
}
