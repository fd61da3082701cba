// Package announcements implementa anuncios del tenant con fan-out opcional
// por email a los roles alcanzados.
package announcements

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	"github.com/dropDatabas3/shepherd/internal/email"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/announcements"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// Límites del servicio.
const (
	DefaultListLimit = 50
	MaxTitleLen      = 200
	MaxBodyLen       = 8000

	// fanoutConcurrency acota los envíos SMTP simultáneos del fan-out.
	fanoutConcurrency = 4
	// fanoutTimeout corta el fan-out completo; corre fuera del request.
	fanoutTimeout = 2 * time.Minute
)

// Service define las operaciones de anuncios.
type Service interface {
	// List lista los anuncios vigentes visibles para el tier del principal.
	List(ctx context.Context, p domain.Principal) (*dto.ListResponse, error)

	// Create publica un anuncio (ADMIN+). Con NotifyByEmail dispara el
	// fan-out en background: la respuesta nunca espera al SMTP.
	Create(ctx context.Context, p domain.Principal, req dto.CreateRequest) (*dto.Announcement, error)
}

// Deps contiene las dependencias del servicio.
type Deps struct {
	Announcements repository.AnnouncementRepository
	Users         repository.UserRepository
	Mailer        email.Sender
}

var (
	// ErrAdminRequired indica que publicar pide ADMIN+.
	ErrAdminRequired = errors.New("admin role required")
	// ErrInvalidInput marca un campo fuera de rango.
	ErrInvalidInput = errors.New("invalid announcement input")
	// ErrChurchOutOfScope indica una iglesia destino fuera del alcance.
	ErrChurchOutOfScope = errors.New("target church out of scope")
)

type service struct {
	deps Deps
}

func New(deps Deps) Service {
	return &service{deps: deps}
}

func (s *service) List(ctx context.Context, p domain.Principal) (*dto.ListResponse, error) {
	scope := authz.BuildScope(p, "", authz.ScopeTenant)
	rows, err := s.deps.Announcements.List(ctx, scope, p.LocalChurchID, p.Role, DefaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}

	out := make([]dto.Announcement, 0, len(rows))
	for i := range rows {
		out = append(out, projectAnnouncement(&rows[i]))
	}
	return &dto.ListResponse{Announcements: out}, nil
}

func (s *service) Create(ctx context.Context, p domain.Principal, req dto.CreateRequest) (*dto.Announcement, error) {
	if !authz.HasMinRole(p.Role, domain.RoleAdmin) {
		return nil, ErrAdminRequired
	}

	title := strings.TrimSpace(req.Title)
	body := strings.TrimSpace(req.Body)
	if title == "" || len(title) > MaxTitleLen {
		return nil, fmt.Errorf("%w: title", ErrInvalidInput)
	}
	if body == "" || len(body) > MaxBodyLen {
		return nil, fmt.Errorf("%w: body", ErrInvalidInput)
	}

	minRole := domain.RoleMember
	if req.MinRole != "" {
		r, err := domain.ParseRole(req.MinRole)
		if err != nil {
			return nil, fmt.Errorf("%w: minRole", ErrInvalidInput)
		}
		minRole = r
	}

	// Un ADMIN solo publica dentro de su alcance de iglesias.
	if req.LocalChurchID != "" {
		scope := authz.BuildScope(p, "", authz.ScopeChurch)
		if !scope.Matches(p.TenantID, req.LocalChurchID) {
			return nil, ErrChurchOutOfScope
		}
	}
	if p.TenantID == "" {
		return nil, ErrChurchOutOfScope
	}

	a, err := s.deps.Announcements.Create(ctx, repository.CreateAnnouncementInput{
		TenantID:      p.TenantID,
		LocalChurchID: req.LocalChurchID,
		Title:         title,
		Body:          body,
		MinRole:       minRole,
		CreatedBy:     p.UserID,
		ExpiresAt:     req.ExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("create announcement: %w", err)
	}

	if req.NotifyByEmail && s.deps.Mailer.Enabled() {
		s.fanout(ctx, p, a, minRole)
	}

	out := projectAnnouncement(a)
	return &out, nil
}

// fanout manda el anuncio por email a los roles alcanzados. Corre en una
// goroutine con contexto propio: la latencia del SMTP nunca bloquea la
// respuesta ni la cancela el cierre del request.
func (s *service) fanout(ctx context.Context, p domain.Principal, a *repository.Announcement, minRole domain.Role) {
	log := logger.From(ctx).With(logger.Component("announcements"), logger.Op("fanout"), logger.ID(a.ID))

	scope := authz.BuildScope(p, "", authz.ScopeTenant)

	go func() {
		bg, cancel := context.WithTimeout(context.Background(), fanoutTimeout)
		defer cancel()

		emails, err := s.deps.Users.EmailsByRole(bg, scope, minRole)
		if err != nil {
			log.Error("fanout recipient lookup failed", logger.Err(err))
			return
		}
		if len(emails) == 0 {
			return
		}

		subject := "[" + a.Title + "]"
		htmlBody := "<h2>" + html.EscapeString(a.Title) + "</h2><p>" +
			strings.ReplaceAll(html.EscapeString(a.Body), "\n", "<br>") + "</p>"

		g, _ := errgroup.WithContext(bg)
		g.SetLimit(fanoutConcurrency)
		for _, to := range emails {
			to := to
			g.Go(func() error {
				if err := s.deps.Mailer.Send(to, subject, htmlBody, a.Body); err != nil {
					// Un destinatario caído no frena al resto.
					log.Warn("fanout send failed", logger.String("to", to), logger.Err(err))
				}
				return nil
			})
		}
		_ = g.Wait()
		log.Info("fanout finished", logger.Count(len(emails)))
	}()
}

func projectAnnouncement(a *repository.Announcement) dto.Announcement {
	out := dto.Announcement{
		ID:        a.ID,
		Title:     a.Title,
		Body:      a.Body,
		MinRole:   string(a.MinRole),
		CreatedAt: a.CreatedAt,
		ExpiresAt: a.ExpiresAt,
	}
	if a.LocalChurchID != nil {
		out.LocalChurchID = *a.LocalChurchID
	}
	return out
}
