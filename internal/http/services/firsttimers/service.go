// Package firsttimers implementa las fichas de seguimiento del equipo VIP:
// alta del recién llegado (usuario + ficha), listado y actualización.
package firsttimers

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/shepherd/internal/audit"
	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	"github.com/dropDatabas3/shepherd/internal/email"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/firsttimers"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
	"github.com/dropDatabas3/shepherd/internal/security/password"
	"github.com/dropDatabas3/shepherd/internal/security/token"
	"github.com/dropDatabas3/shepherd/internal/validation"
)

// Límites del servicio.
const (
	DefaultListLimit = 100

	// notifyConcurrency acota los envíos SMTP simultáneos del aviso VIP.
	notifyConcurrency = 4
	// notifyTimeout corta el aviso completo; corre fuera del request.
	notifyTimeout = time.Minute
)

// Service define las operaciones de first timers. Todas piden VIP+.
type Service interface {
	// Create da de alta al recién llegado: crea el usuario MEMBER en el scope
	// del principal y su ficha, asignada al VIP creador, en una transacción.
	Create(ctx context.Context, p domain.Principal, req dto.CreateRequest) (*dto.CreateResponse, error)

	// List lista las fichas del scope, más recientes primero.
	List(ctx context.Context, p domain.Principal) (*dto.ListResponse, error)

	// Update actualiza seguimiento (gospel shared, notas, VIP asignado).
	Update(ctx context.Context, p domain.Principal, id string, req dto.UpdateRequest) (*dto.FirstTimer, error)
}

// Deps contiene las dependencias del servicio. Mailer nil desactiva el aviso
// al equipo VIP.
type Deps struct {
	FirstTimers repository.FirstTimerRepository
	Users       repository.UserRepository
	Mailer      email.Sender
}

var (
	// ErrVIPRequired indica que la operación pide rol VIP o superior.
	ErrVIPRequired = errors.New("vip role required")
	// ErrNotFound cubre fichas inexistentes o fuera del scope.
	ErrNotFound = errors.New("first timer not found")
	// ErrEmailTaken indica que ya existe un usuario con ese email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidInput marca un campo fuera de rango; el detalle viaja en el
	// mensaje envuelto.
	ErrInvalidInput = errors.New("invalid first timer input")
	// ErrNoChurch indica un principal sin iglesia local donde registrar.
	ErrNoChurch = errors.New("principal has no local church")
)

type service struct {
	deps Deps
}

func New(deps Deps) Service {
	return &service{deps: deps}
}

func (s *service) Create(ctx context.Context, p domain.Principal, req dto.CreateRequest) (*dto.CreateResponse, error) {
	if !authz.HasMinRole(p.Role, domain.RoleVIP) {
		return nil, ErrVIPRequired
	}
	if p.LocalChurchID == "" || p.TenantID == "" {
		return nil, ErrNoChurch
	}

	if !validation.ValidName(req.Name) {
		return nil, fmt.Errorf("%w: name", ErrInvalidInput)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validation.ValidEmail(email) {
		return nil, fmt.Errorf("%w: email", ErrInvalidInput)
	}
	if req.Phone != "" && !validation.ValidPhone(req.Phone) {
		return nil, fmt.Errorf("%w: phone", ErrInvalidInput)
	}

	// El recién llegado entra sin credenciales utilizables: password aleatorio
	// que se resetea recién cuando activa la cuenta.
	randomPw, err := token.GenerateOpaqueToken(24)
	if err != nil {
		return nil, fmt.Errorf("first timer create: %w", err)
	}
	hash, err := password.Hash(password.Default, randomPw)
	if err != nil {
		return nil, fmt.Errorf("first timer create: %w", err)
	}

	ft, u, err := s.deps.FirstTimers.Create(ctx,
		repository.CreateUserInput{
			TenantID:          p.TenantID,
			LocalChurchID:     p.LocalChurchID,
			Email:             email,
			Name:              strings.TrimSpace(req.Name),
			Phone:             req.Phone,
			Role:              domain.RoleMember,
			PasswordHash:      hash,
			ProfileVisibility: domain.VisibilityMembers,
			IsNewBeliever:     req.NewBeliever,
		},
		repository.CreateFirstTimerInput{
			LocalChurchID: p.LocalChurchID,
			AssignedVipID: p.UserID,
			GospelShared:  req.GospelShared,
			Notes:         req.Notes,
		},
	)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("first timer create: %w", err)
	}

	audit.Log(ctx, audit.EventFirstTimerCreate, map[string]any{
		"first_timer_id": ft.ID,
		"member_id":      u.ID,
		"assigned_vip":   p.UserID,
	})
	logger.From(ctx).Info("first timer registered",
		logger.ID(ft.ID), logger.UserID(u.ID))

	if s.deps.Mailer != nil && s.deps.Mailer.Enabled() {
		s.notifyVIPTeam(ctx, p, ft, u.Name)
	}

	return &dto.CreateResponse{
		FirstTimer: projectFirstTimer(ft),
		Status:     "ok",
	}, nil
}

func (s *service) List(ctx context.Context, p domain.Principal) (*dto.ListResponse, error) {
	if !authz.HasMinRole(p.Role, domain.RoleVIP) {
		return nil, ErrVIPRequired
	}

	scope := authz.BuildScope(p, "", authz.ScopeChurch)
	rows, err := s.deps.FirstTimers.List(ctx, scope, DefaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("list first timers: %w", err)
	}

	out := make([]dto.FirstTimer, 0, len(rows))
	for i := range rows {
		out = append(out, projectFirstTimer(&rows[i]))
	}
	return &dto.ListResponse{FirstTimers: out}, nil
}

func (s *service) Update(ctx context.Context, p domain.Principal, id string, req dto.UpdateRequest) (*dto.FirstTimer, error) {
	if !authz.HasMinRole(p.Role, domain.RoleVIP) {
		return nil, ErrVIPRequired
	}

	scope := authz.BuildScope(p, "", authz.ScopeChurch)
	ft, err := s.deps.FirstTimers.Update(ctx, scope, id, repository.UpdateFirstTimerInput{
		AssignedVipID: req.AssignedVipID,
		GospelShared:  req.GospelShared,
		Notes:         req.Notes,
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update first timer: %w", err)
	}

	out := projectFirstTimer(ft)
	return &out, nil
}

// notifyVIPTeam avisa por email a los VIP de la iglesia que entró un recién
// llegado. Best effort en background: el alta nunca espera al SMTP.
func (s *service) notifyVIPTeam(ctx context.Context, p domain.Principal, ft *repository.FirstTimer, memberName string) {
	log := logger.From(ctx).With(logger.Component("firsttimers"), logger.Op("notify"), logger.ID(ft.ID))

	scope := authz.BuildScope(p, "", authz.ScopeChurch)

	go func() {
		bg, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		emails, err := s.deps.Users.EmailsByRole(bg, scope, domain.RoleVIP)
		if err != nil {
			log.Error("vip notify recipient lookup failed", logger.Err(err))
			return
		}
		if len(emails) == 0 {
			return
		}

		subject := "New first timer: " + memberName
		htmlBody := "<p><b>" + html.EscapeString(memberName) +
			"</b> just got registered as a first timer. Follow up within 48 hours.</p>"
		textBody := memberName + " just got registered as a first timer. Follow up within 48 hours."

		g, _ := errgroup.WithContext(bg)
		g.SetLimit(notifyConcurrency)
		for _, to := range emails {
			to := to
			g.Go(func() error {
				if err := s.deps.Mailer.Send(to, subject, htmlBody, textBody); err != nil {
					// Un VIP sin mail no frena el aviso al resto.
					log.Warn("vip notify send failed", logger.String("to", to), logger.Err(err))
				}
				return nil
			})
		}
		_ = g.Wait()
		log.Info("vip team notified", logger.Count(len(emails)))
	}()
}

func projectFirstTimer(ft *repository.FirstTimer) dto.FirstTimer {
	out := dto.FirstTimer{
		ID:            ft.ID,
		MemberID:      ft.MemberID,
		LocalChurchID: ft.LocalChurchID,
		GospelShared:  ft.GospelShared,
		Notes:         ft.Notes,
		CreatedAt:     ft.CreatedAt,
	}
	if ft.AssignedVipID != nil {
		out.AssignedVipID = *ft.AssignedVipID
	}
	return out
}
