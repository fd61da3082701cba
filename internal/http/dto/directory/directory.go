// Package directory contiene los DTOs del directorio de miembros.
package directory

// Member es la proyección redactada de un miembro. Email y Phone solo viajan
// cuando la política de contacto lo permite.
type Member struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	LocalChurchID string `json:"localChurchId,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
}

// SearchResponse es la respuesta de GET /directory/search.
type SearchResponse struct {
	Members []Member `json:"members"`
}

// Me es el perfil propio, siempre completo.
type Me struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone,omitempty"`
	Role              string `json:"role"`
	TenantID          string `json:"tenantId,omitempty"`
	LocalChurchID     string `json:"localChurchId,omitempty"`
	ProfileVisibility string `json:"profileVisibility"`
	AllowContact      bool   `json:"allowContact"`
	IsNewBeliever     bool   `json:"isNewBeliever"`
}

// UpdateMeRequest es el body de PATCH /me. Campos ausentes no cambian.
type UpdateMeRequest struct {
	Name              *string `json:"name,omitempty"`
	Phone             *string `json:"phone,omitempty"`
	ProfileVisibility *string `json:"profileVisibility,omitempty"`
	AllowContact      *bool   `json:"allowContact,omitempty"`
}
