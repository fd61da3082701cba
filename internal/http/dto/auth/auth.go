// Package auth contiene los DTOs de los endpoints de autenticación.
package auth

// LoginRequest es el body de POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInfo es la proyección del usuario que viaja en la respuesta de login.
type UserInfo struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	Name          string   `json:"name"`
	Roles         []string `json:"roles"`
	TenantID      string   `json:"tenantId,omitempty"`
	LocalChurchID string   `json:"localChurchId,omitempty"`
}

// LoginResponse es la respuesta de POST /auth/login.
type LoginResponse struct {
	AccessToken  string   `json:"accessToken"`
	TokenType    string   `json:"tokenType"`
	ExpiresIn    int64    `json:"expiresIn"`
	RefreshToken string   `json:"refreshToken"`
	User         UserInfo `json:"user"`
}

// RefreshRequest es el body de POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse es la respuesta de POST /auth/refresh.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
	RefreshToken string `json:"refreshToken"`
}

// LogoutRequest es el body de POST /auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}
