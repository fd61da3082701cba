package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
)

type fakeUsers struct {
	hasSuper bool
	created  *repository.CreateUserInput
}

func (f *fakeUsers) GetByEmail(_ context.Context, _ string) (*repository.User, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, _ string) (*repository.User, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetScoped(_ context.Context, _ authz.Scope, _ string) (*repository.User, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) Search(_ context.Context, _ authz.Scope, _ repository.DirectoryFilter) ([]repository.User, error) {
	return nil, nil
}

func (f *fakeUsers) Create(_ context.Context, in repository.CreateUserInput) (*repository.User, error) {
	f.created = &in
	return &repository.User{ID: "u-root", Email: in.Email, Role: in.Role}, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, _ string, _ repository.UpdateProfileInput) (*repository.User, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) SetRole(_ context.Context, _ string, _ domain.Role) error { return nil }

func (f *fakeUsers) HasSuperAdmin(_ context.Context) (bool, error) { return f.hasSuper, nil }

func (f *fakeUsers) EmailsByRole(_ context.Context, _ authz.Scope, _ domain.Role) ([]string, error) {
	return nil, nil
}

func TestEnsureSuperAdminCreatesGlobalAccount(t *testing.T) {
	users := &fakeUsers{}

	err := EnsureSuperAdmin(context.Background(), AdminConfig{
		Users:          users,
		AdminEmail:     "Root@Shepherd.App",
		AdminPassword:  "Tr3s-Pastores-Manila",
		NonInteractive: true,
	})
	require.NoError(t, err)
	require.NotNil(t, users.created)
	assert.Equal(t, "root@shepherd.app", users.created.Email)
	assert.Equal(t, domain.RoleSuperAdmin, users.created.Role)
	assert.Equal(t, domain.VisibilityPrivate, users.created.ProfileVisibility)
	// Cuenta global: sin tenant ni iglesia.
	assert.Empty(t, users.created.TenantID)
	assert.Empty(t, users.created.LocalChurchID)
}

func TestEnsureSuperAdminSkipsWhenOneExists(t *testing.T) {
	users := &fakeUsers{hasSuper: true}

	err := EnsureSuperAdmin(context.Background(), AdminConfig{Users: users, NonInteractive: true})
	require.NoError(t, err)
	assert.Nil(t, users.created)
}

func TestEnsureSuperAdminRejectsWeakPassword(t *testing.T) {
	users := &fakeUsers{}

	err := EnsureSuperAdmin(context.Background(), AdminConfig{
		Users:          users,
		AdminEmail:     "root@shepherd.app",
		AdminPassword:  "corta1A",
		NonInteractive: true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too_short")
	assert.Nil(t, users.created)
}

func TestEnsureSuperAdminRejectsCommonPassword(t *testing.T) {
	users := &fakeUsers{}

	// Cumple la política de composición pero está en la denylist.
	err := EnsureSuperAdmin(context.Background(), AdminConfig{
		Users:          users,
		AdminEmail:     "root@shepherd.app",
		AdminPassword:  "Password123!",
		NonInteractive: true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denylist")
	assert.Nil(t, users.created)
}

func TestEnsureSuperAdminNonInteractiveWithoutCreds(t *testing.T) {
	users := &fakeUsers{}

	err := EnsureSuperAdmin(context.Background(), AdminConfig{Users: users, NonInteractive: true})
	require.Error(t, err)
	assert.Nil(t, users.created)
}
