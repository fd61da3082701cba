// Package audit registra eventos de seguridad: logins, rotaciones, reuso de
// refresh tokens, revocaciones, cambios de flags. Los eventos salen por el
// logger estructurado con un marcador fijo para poder filtrarlos aguas abajo.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// Eventos conocidos. La lista no es cerrada, pero estos son los que el
// pipeline de seguridad espera encontrar.
const (
	EventLoginOK          = "auth.login.ok"
	EventLoginFailed      = "auth.login.failed"
	EventTokenRotated     = "auth.token.rotated"
	EventTokenReuse       = "auth.token.reuse_detected"
	EventChainRevoked     = "auth.chain.revoked"
	EventLogout           = "auth.logout"
	EventFlagUpdated      = "flags.updated"
	EventFlagKillSwitch   = "flags.kill_switch"
	EventSessionsRevoked  = "admin.sessions.revoked"
	EventBootstrapAdmin   = "bootstrap.super_admin_created"
	EventFirstTimerCreate = "firsttimer.created"
)

// Log escribe un evento de auditoría estructurado. Usa el logger del contexto
// para heredar request_id y campos del request.
func Log(ctx context.Context, event string, fields map[string]any) {
	zf := make([]zap.Field, 0, len(fields)+2)
	zf = append(zf, zap.String("audit_event", event), zap.Bool("audit", true))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	logger.From(ctx).Info("audit", zf...)
}
