// Package announcements contiene los DTOs de anuncios.
package announcements

import "time"

// Announcement es la proyección de un anuncio.
type Announcement struct {
	ID            string     `json:"id"`
	LocalChurchID string     `json:"localChurchId,omitempty"` // vacío = todo el tenant
	Title         string     `json:"title"`
	Body          string     `json:"body"`
	MinRole       string     `json:"minRole"`
	CreatedAt     time.Time  `json:"createdAt"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

// ListResponse es la respuesta de GET /announcements.
type ListResponse struct {
	Announcements []Announcement `json:"announcements"`
}

// CreateRequest es el body de POST /announcements. LocalChurchID vacío
// publica a todo el tenant; NotifyByEmail dispara el fan-out a los roles
// alcanzados.
type CreateRequest struct {
	Title         string     `json:"title"`
	Body          string     `json:"body"`
	LocalChurchID string     `json:"localChurchId,omitempty"`
	MinRole       string     `json:"minRole,omitempty"` // default MEMBER
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	NotifyByEmail bool       `json:"notifyByEmail,omitempty"`
}
