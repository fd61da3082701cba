// Package bootstrap crea el primer SUPER_ADMIN cuando la base está vacía.
// Sin un SUPER_ADMIN no hay forma de administrar tenants ni flags, así que
// el server corre este chequeo antes de aceptar tráfico.
package bootstrap

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"context"

	"golang.org/x/term"

	"github.com/dropDatabas3/shepherd/internal/audit"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
	"github.com/dropDatabas3/shepherd/internal/security/password"
	"github.com/dropDatabas3/shepherd/internal/validation"
)

// AdminConfig controla la creación del primer SUPER_ADMIN.
type AdminConfig struct {
	Users repository.UserRepository

	// AdminEmail/AdminPassword vienen por env (BOOTSTRAP_ADMIN_EMAIL /
	// BOOTSTRAP_ADMIN_PASSWORD). Con ambos presentes no se pregunta nada,
	// que es lo que un deploy sin TTY necesita.
	AdminEmail    string
	AdminPassword string

	// NonInteractive evita el prompt aunque haya TTY. Sin credenciales por
	// env, el bootstrap falla en vez de colgarse esperando input.
	NonInteractive bool
}

// EnsureSuperAdmin garantiza que exista al menos un SUPER_ADMIN. Si ya hay
// uno no hace nada. El usuario creado no pertenece a ningún tenant: su scope
// es global por rol, no por membresía.
func EnsureSuperAdmin(ctx context.Context, cfg AdminConfig) error {
	has, err := cfg.Users.HasSuperAdmin(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: check super admin: %w", err)
	}
	if has {
		return nil
	}

	email := strings.TrimSpace(strings.ToLower(cfg.AdminEmail))
	plain := cfg.AdminPassword

	if email == "" || plain == "" {
		if cfg.NonInteractive {
			return fmt.Errorf("bootstrap: no SUPER_ADMIN exists and BOOTSTRAP_ADMIN_EMAIL/BOOTSTRAP_ADMIN_PASSWORD are not set")
		}
		email, plain, err = promptCredentials()
		if err != nil {
			return fmt.Errorf("bootstrap: prompt credentials: %w", err)
		}
	}

	if !validation.ValidEmail(email) {
		return fmt.Errorf("bootstrap: invalid admin email %q", email)
	}
	if ok, reasons := password.Bootstrap.Validate(plain); !ok {
		return fmt.Errorf("bootstrap: admin password rejected: %s", strings.Join(reasons, ", "))
	}
	if password.Common(plain) {
		return fmt.Errorf("bootstrap: admin password is on the common-passwords denylist")
	}

	hash, err := password.Hash(password.Default, plain)
	if err != nil {
		return fmt.Errorf("bootstrap: hash password: %w", err)
	}

	u, err := cfg.Users.Create(ctx, repository.CreateUserInput{
		Email:             email,
		Name:              "Super Admin",
		Role:              domain.RoleSuperAdmin,
		PasswordHash:      hash,
		ProfileVisibility: domain.VisibilityPrivate,
	})
	if err != nil {
		// Otro replica pudo ganar la carrera entre HasSuperAdmin y Create.
		if err == repository.ErrConflict {
			return nil
		}
		return fmt.Errorf("bootstrap: create super admin: %w", err)
	}

	audit.Log(ctx, audit.EventBootstrapAdmin, map[string]any{
		"userId": u.ID,
		"email":  u.Email,
	})
	logger.L().Info("super admin created",
		logger.Layer("bootstrap"),
		logger.UserID(u.ID),
	)
	return nil
}

// promptCredentials pide email y password por consola. El password se lee
// sin eco; se pide dos veces para atrapar typos.
func promptCredentials() (string, string, error) {
	fmt.Println("No SUPER_ADMIN found. Creating the first one.")

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return "", "", err
	}
	email = strings.TrimSpace(strings.ToLower(email))

	fmt.Print("Password: ")
	p1, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", "", err
	}

	fmt.Print("Confirm password: ")
	p2, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", "", err
	}

	if string(p1) != string(p2) {
		return "", "", fmt.Errorf("passwords do not match")
	}
	return email, string(p1), nil
}
