package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/admin"
)

type fakeTenants struct{}

func (f *fakeTenants) GetTenant(_ context.Context, _ string) (*repository.Tenant, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeTenants) GetTenantBySlug(_ context.Context, _ string) (*repository.Tenant, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeTenants) ListTenants(_ context.Context) ([]repository.TenantStats, error) {
	return []repository.TenantStats{
		{Tenant: repository.Tenant{ID: "t1", Name: "Victory Manila", Slug: "manila"}, ChurchCount: 2, UserCount: 40},
		{Tenant: repository.Tenant{ID: "t2", Name: "Victory Cebu", Slug: "cebu"}, ChurchCount: 1, UserCount: 12},
	}, nil
}

func (f *fakeTenants) ListChurches(_ context.Context, _ string) ([]repository.LocalChurch, error) {
	return nil, nil
}

func (f *fakeTenants) ChurchIDs(_ context.Context, _ string) ([]string, error) { return nil, nil }

func (f *fakeTenants) CreateTenant(_ context.Context, _ repository.CreateTenantInput) (*repository.Tenant, error) {
	return nil, repository.ErrConflict
}

func (f *fakeTenants) CreateChurch(_ context.Context, _ repository.CreateChurchInput) (*repository.LocalChurch, error) {
	return nil, repository.ErrConflict
}

type fakeFlags struct {
	flags map[string]*repository.FeatureFlag
}

func (f *fakeFlags) List(_ context.Context) ([]repository.FeatureFlag, error) {
	var out []repository.FeatureFlag
	for _, fl := range f.flags {
		out = append(out, *fl)
	}
	return out, nil
}

func (f *fakeFlags) Get(_ context.Context, name string) (*repository.FeatureFlag, error) {
	fl, ok := f.flags[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return fl, nil
}

func (f *fakeFlags) Upsert(_ context.Context, in repository.UpsertFlagInput) (*repository.FeatureFlag, error) {
	fl, ok := f.flags[in.Name]
	if !ok {
		fl = &repository.FeatureFlag{Name: in.Name, RiskLevel: repository.RiskLow}
		f.flags[in.Name] = fl
	}
	if in.Description != nil {
		fl.Description = *in.Description
	}
	if in.Enabled != nil {
		fl.Enabled = *in.Enabled
	}
	if in.RolloutPercentage != nil {
		fl.RolloutPercentage = *in.RolloutPercentage
	}
	if in.RiskLevel != nil {
		fl.RiskLevel = *in.RiskLevel
	}
	fl.UpdatedAt = time.Now()
	fl.UpdatedBy = &in.UpdatedBy
	return fl, nil
}

func (f *fakeFlags) SetKillSwitch(_ context.Context, name string, active bool, by string) (*repository.FeatureFlag, error) {
	fl, ok := f.flags[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fl.KillSwitchActive = active
	fl.UpdatedAt = time.Now()
	fl.UpdatedBy = &by
	return fl, nil
}

type fakeUsers struct {
	users map[string]repository.User
}

func (f *fakeUsers) GetByEmail(_ context.Context, _ string) (*repository.User, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*repository.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) GetScoped(_ context.Context, scope authz.Scope, id string) (*repository.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	var tenant, church string
	if u.TenantID != nil {
		tenant = *u.TenantID
	}
	if u.LocalChurchID != nil {
		church = *u.LocalChurchID
	}
	if !scope.Matches(tenant, church) {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) Search(_ context.Context, _ authz.Scope, _ repository.DirectoryFilter) ([]repository.User, error) {
	return nil, nil
}

func (f *fakeUsers) Create(_ context.Context, _ repository.CreateUserInput) (*repository.User, error) {
	return nil, repository.ErrConflict
}

func (f *fakeUsers) UpdateProfile(_ context.Context, _ string, _ repository.UpdateProfileInput) (*repository.User, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) SetRole(_ context.Context, _ string, _ domain.Role) error { return nil }

func (f *fakeUsers) HasSuperAdmin(_ context.Context) (bool, error) { return true, nil }

func (f *fakeUsers) EmailsByRole(_ context.Context, _ authz.Scope, _ domain.Role) ([]string, error) {
	return nil, nil
}

type fakeTokens struct {
	tokens  []repository.RefreshToken
	revoked int
}

func (f *fakeTokens) Create(_ context.Context, _ repository.CreateRefreshTokenInput) (*repository.RefreshToken, error) {
	return nil, nil
}

func (f *fakeTokens) GetByHash(_ context.Context, _ string) (*repository.RefreshToken, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeTokens) Rotate(_ context.Context, _ string, _ repository.CreateRefreshTokenInput) (*repository.RefreshToken, error) {
	return nil, repository.ErrAlreadyRotated
}

func (f *fakeTokens) RevokeChain(_ context.Context, _ string) (int, error) { return 0, nil }

func (f *fakeTokens) RevokeAllByUser(_ context.Context, userID string) (int, error) {
	n := 0
	for _, t := range f.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			n++
		}
	}
	f.revoked += n
	return n, nil
}

func (f *fakeTokens) ListByUser(_ context.Context, userID string, _ int) ([]repository.RefreshToken, error) {
	var out []repository.RefreshToken
	for _, t := range f.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTokens) PurgeExpired(_ context.Context, _ time.Duration) (int, error) { return 0, nil }

func strptr(s string) *string { return &s }

func superAdmin() domain.Principal {
	return domain.Principal{UserID: "u-root", Role: domain.RoleSuperAdmin}
}

func tenantAdmin() domain.Principal {
	return domain.Principal{
		UserID: "u-admin", Role: domain.RoleAdmin,
		TenantID: "t1", LocalChurchID: "c1",
		AccessibleChurchIDs: []string{"c1", "c2"},
	}
}

func testService() (Service, *fakeFlags, *fakeTokens) {
	flags := &fakeFlags{flags: map[string]*repository.FeatureFlag{
		"new_giving_flow": {Name: "new_giving_flow", Enabled: true, RolloutPercentage: 10, RiskLevel: repository.RiskHigh},
	}}
	now := time.Now()
	tokens := &fakeTokens{tokens: []repository.RefreshToken{
		{ID: "tk1", RotationID: "rot-a", UserID: "u-member", IssuedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(24 * time.Hour), UsedAt: &now, SupersededBy: strptr("tk2")},
		{ID: "tk2", RotationID: "rot-a", UserID: "u-member", IssuedAt: now.Add(-1 * time.Hour), ExpiresAt: now.Add(24 * time.Hour)},
		{ID: "tk3", RotationID: "rot-b", UserID: "u-member", IssuedAt: now.Add(-10 * time.Minute), ExpiresAt: now.Add(24 * time.Hour)},
	}}
	users := &fakeUsers{users: map[string]repository.User{
		"u-member":  {ID: "u-member", TenantID: strptr("t1"), LocalChurchID: strptr("c1"), Role: domain.RoleMember},
		"u-foreign": {ID: "u-foreign", TenantID: strptr("t2"), LocalChurchID: strptr("c9"), Role: domain.RoleMember},
	}}
	svc := New(Deps{Tenants: &fakeTenants{}, Flags: flags, Users: users, Tokens: tokens})
	return svc, flags, tokens
}

func TestListTenantsSuperAdminOnly(t *testing.T) {
	svc, _, _ := testService()
	ctx := context.Background()

	res, err := svc.ListTenants(ctx, superAdmin())
	require.NoError(t, err)
	assert.Len(t, res.Tenants, 2)

	_, err = svc.ListTenants(ctx, tenantAdmin())
	assert.ErrorIs(t, err, ErrSuperAdminRequired)
}

func TestUpdateFlagValidation(t *testing.T) {
	svc, _, _ := testService()
	ctx := context.Background()

	bad := 150
	_, err := svc.UpdateFlag(ctx, superAdmin(), "new_giving_flow", dto.UpdateFlagRequest{RolloutPercentage: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	risk := "extreme"
	_, err = svc.UpdateFlag(ctx, superAdmin(), "new_giving_flow", dto.UpdateFlagRequest{RiskLevel: &risk})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateFlagPartial(t *testing.T) {
	svc, flags, _ := testService()

	rollout := 50
	res, err := svc.UpdateFlag(context.Background(), superAdmin(), "new_giving_flow", dto.UpdateFlagRequest{
		RolloutPercentage: &rollout,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, res.RolloutPercentage)
	// Los campos ausentes no cambian.
	assert.True(t, flags.flags["new_giving_flow"].Enabled)
	assert.Equal(t, repository.RiskHigh, res.RiskLevel)
}

func TestKillSwitch(t *testing.T) {
	svc, flags, _ := testService()
	ctx := context.Background()

	res, err := svc.SetKillSwitch(ctx, superAdmin(), "new_giving_flow", true)
	require.NoError(t, err)
	assert.True(t, res.KillSwitchActive)
	assert.True(t, flags.flags["new_giving_flow"].KillSwitchActive)

	_, err = svc.SetKillSwitch(ctx, superAdmin(), "unknown_flag", true)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SetKillSwitch(ctx, tenantAdmin(), "new_giving_flow", true)
	assert.ErrorIs(t, err, ErrSuperAdminRequired)
}

func TestListSessionsGroupsChains(t *testing.T) {
	svc, _, _ := testService()

	res, err := svc.ListSessions(context.Background(), tenantAdmin(), "u-member")
	require.NoError(t, err)
	require.Len(t, res.Chains, 2)

	// Cadenas ordenadas por emisión descendente; rot-b es la más nueva.
	assert.Equal(t, "rot-b", res.Chains[0].RotationID)
	assert.Len(t, res.Chains[1].Tokens, 2)
	// Dentro de la cadena, el token más nuevo primero.
	assert.Equal(t, "tk2", res.Chains[1].Tokens[0].ID)
}

func TestSessionAccessScoping(t *testing.T) {
	svc, _, _ := testService()
	ctx := context.Background()

	// Usuario de otro tenant: indistinguible de inexistente.
	_, err := svc.ListSessions(ctx, tenantAdmin(), "u-foreign")
	assert.ErrorIs(t, err, ErrNotFound)

	// Un LEADER no accede al panel de sesiones.
	leader := domain.Principal{UserID: "u-l", Role: domain.RoleLeader, TenantID: "t1", LocalChurchID: "c1", AccessibleChurchIDs: []string{"c1"}}
	_, err = svc.ListSessions(ctx, leader, "u-member")
	assert.ErrorIs(t, err, ErrAdminRequired)

	_, err = svc.ListSessions(ctx, tenantAdmin(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRevokeSessions(t *testing.T) {
	svc, _, tokens := testService()

	res, err := svc.RevokeSessions(context.Background(), tenantAdmin(), "u-member")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Revoked)
	assert.Equal(t, 3, tokens.revoked)
}
