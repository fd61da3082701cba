// Package admin contiene los DTOs de la superficie administrativa.
package admin

import "time"

// TenantStats es la fila de GET /admin/tenants.
type TenantStats struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	ChurchCount int       `json:"churchCount"`
	UserCount   int       `json:"userCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TenantsResponse es la respuesta de GET /admin/tenants.
type TenantsResponse struct {
	Tenants []TenantStats `json:"tenants"`
}

// Flag es la proyección administrativa de un feature flag.
type Flag struct {
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Enabled           bool      `json:"enabled"`
	RolloutPercentage int       `json:"rolloutPercentage"`
	KillSwitchActive  bool      `json:"killSwitchActive"`
	RiskLevel         string    `json:"riskLevel"`
	UpdatedAt         time.Time `json:"updatedAt"`
	UpdatedBy         string    `json:"updatedBy,omitempty"`
}

// FlagsResponse es la respuesta de GET /admin/flags.
type FlagsResponse struct {
	Flags []Flag `json:"flags"`
}

// UpdateFlagRequest es el body de PATCH /admin/flags/{name}. Campos ausentes
// no cambian.
type UpdateFlagRequest struct {
	Description       *string `json:"description,omitempty"`
	Enabled           *bool   `json:"enabled,omitempty"`
	RolloutPercentage *int    `json:"rolloutPercentage,omitempty"`
	RiskLevel         *string `json:"riskLevel,omitempty"`
}

// SessionChain agrupa los refresh tokens de una cadena de rotación.
type SessionChain struct {
	RotationID string         `json:"rotationId"`
	Tokens     []SessionToken `json:"tokens"`
}

// SessionToken es un registro de refresh token, sin el hash.
type SessionToken struct {
	ID           string     `json:"id"`
	IssuedAt     time.Time  `json:"issuedAt"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	UsedAt       *time.Time `json:"usedAt,omitempty"`
	RevokedAt    *time.Time `json:"revokedAt,omitempty"`
	SupersededBy string     `json:"supersededBy,omitempty"`
}

// SessionsResponse es la respuesta de GET /admin/sessions.
type SessionsResponse struct {
	UserID string         `json:"userId"`
	Chains []SessionChain `json:"chains"`
}

// RevokeSessionsRequest es el body de POST /admin/sessions/revoke.
type RevokeSessionsRequest struct {
	UserID string `json:"userId"`
}

// RevokeSessionsResponse es la respuesta de POST /admin/sessions/revoke.
type RevokeSessionsResponse struct {
	UserID  string `json:"userId"`
	Revoked int    `json:"revoked"`
}
