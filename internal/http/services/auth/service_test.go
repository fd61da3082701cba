package auth

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/auth"
	jwtx "github.com/dropDatabas3/shepherd/internal/jwt"
	"github.com/dropDatabas3/shepherd/internal/security/password"
	"github.com/dropDatabas3/shepherd/internal/security/token"
)

// ---- fakes ----

type fakeUsers struct {
	byID    map[string]*repository.User
	byEmail map[string]*repository.User
}

func newFakeUsers(users ...*repository.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]*repository.User{}, byEmail: map[string]*repository.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
		f.byEmail[u.Email] = u
	}
	return f
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*repository.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*repository.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetScoped(context.Context, authz.Scope, string) (*repository.User, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeUsers) Search(context.Context, authz.Scope, repository.DirectoryFilter) ([]repository.User, error) {
	return nil, nil
}
func (f *fakeUsers) Create(context.Context, repository.CreateUserInput) (*repository.User, error) {
	return nil, repository.ErrConflict
}
func (f *fakeUsers) UpdateProfile(context.Context, string, repository.UpdateProfileInput) (*repository.User, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeUsers) SetRole(context.Context, string, domain.Role) error { return nil }
func (f *fakeUsers) HasSuperAdmin(context.Context) (bool, error)        { return true, nil }
func (f *fakeUsers) EmailsByRole(context.Context, authz.Scope, domain.Role) ([]string, error) {
	return nil, nil
}

type fakeTenants struct {
	churches map[string][]string
}

func (f *fakeTenants) GetTenant(context.Context, string) (*repository.Tenant, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeTenants) GetTenantBySlug(context.Context, string) (*repository.Tenant, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeTenants) ListTenants(context.Context) ([]repository.TenantStats, error) {
	return nil, nil
}
func (f *fakeTenants) ListChurches(context.Context, string) ([]repository.LocalChurch, error) {
	return nil, nil
}
func (f *fakeTenants) ChurchIDs(_ context.Context, tenantID string) ([]string, error) {
	return f.churches[tenantID], nil
}
func (f *fakeTenants) CreateTenant(context.Context, repository.CreateTenantInput) (*repository.Tenant, error) {
	return nil, repository.ErrConflict
}
func (f *fakeTenants) CreateChurch(context.Context, repository.CreateChurchInput) (*repository.LocalChurch, error) {
	return nil, repository.ErrConflict
}

type fakeTokens struct {
	mu     sync.Mutex
	seq    int
	byID   map[string]*repository.RefreshToken
	byHash map[string]*repository.RefreshToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{byID: map[string]*repository.RefreshToken{}, byHash: map[string]*repository.RefreshToken{}}
}

func (f *fakeTokens) insertLocked(in repository.CreateRefreshTokenInput) *repository.RefreshToken {
	f.seq++
	id := "tok-" + strconv.Itoa(f.seq)
	rotation := in.RotationID
	if rotation == "" {
		rotation = "rot-" + strconv.Itoa(f.seq)
	}
	rec := &repository.RefreshToken{
		ID: id, RotationID: rotation, UserID: in.UserID, TokenHash: in.TokenHash,
		IssuedAt: time.Now(), ExpiresAt: time.Now().Add(in.TTL),
	}
	f.byID[id] = rec
	f.byHash[in.TokenHash] = rec
	return rec
}

func (f *fakeTokens) Create(_ context.Context, in repository.CreateRefreshTokenInput) (*repository.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertLocked(in), nil
}

func (f *fakeTokens) GetByHash(_ context.Context, hash string) (*repository.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.byHash[hash]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTokens) Rotate(_ context.Context, oldID string, in repository.CreateRefreshTokenInput) (*repository.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.byID[oldID]
	if !ok || old.UsedAt != nil || old.RevokedAt != nil {
		return nil, repository.ErrAlreadyRotated
	}
	now := time.Now()
	old.UsedAt = &now
	rec := f.insertLocked(in)
	old.SupersededBy = &rec.ID
	return rec, nil
}

func (f *fakeTokens) RevokeChain(_ context.Context, rotationID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	n := 0
	for _, rec := range f.byID {
		if rec.RotationID == rotationID && rec.RevokedAt == nil {
			rec.RevokedAt = &now
			n++
		}
	}
	return n, nil
}

func (f *fakeTokens) RevokeAllByUser(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	n := 0
	for _, rec := range f.byID {
		if rec.UserID == userID && rec.RevokedAt == nil {
			rec.RevokedAt = &now
			n++
		}
	}
	return n, nil
}

func (f *fakeTokens) ListByUser(_ context.Context, userID string, _ int) ([]repository.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.RefreshToken
	for _, rec := range f.byID {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeTokens) PurgeExpired(context.Context, time.Duration) (int, error) { return 0, nil }

// ---- helpers ----

func strptr(s string) *string { return &s }

func testService(t *testing.T, users *fakeUsers) (Service, *fakeTokens) {
	t.Helper()
	tokens := newFakeTokens()
	issuer := jwtx.NewIssuer("shepherd-test", []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"))
	svc := New(Deps{
		Users:      users,
		Tenants:    &fakeTenants{churches: map[string][]string{"t1": {"c1", "c2"}}},
		Tokens:     tokens,
		Issuer:     issuer,
		RefreshTTL: time.Hour,
	})
	return svc, tokens
}

func testUser(t *testing.T, role domain.Role) *repository.User {
	t.Helper()
	hash, err := password.Hash(password.Default, "password123")
	require.NoError(t, err)
	return &repository.User{
		ID: "u1", TenantID: strptr("t1"), LocalChurchID: strptr("c1"),
		Email: "member1@test.com", Name: "Member One", Role: role,
		PasswordHash: hash, ProfileVisibility: domain.VisibilityMembers,
	}
}

// ---- tests ----

func TestLoginOK(t *testing.T) {
	u := testUser(t, domain.RoleMember)
	svc, tokens := testService(t, newFakeUsers(u))

	res, err := svc.Login(context.Background(), dto.LoginRequest{Email: "Member1@Test.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, []string{"MEMBER"}, res.User.Roles)

	// El refresh token se persiste hasheado, nunca en claro.
	rec, err := tokens.GetByHash(context.Background(), token.SHA256Hex(res.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, "u1", rec.UserID)
	assert.NotEqual(t, res.RefreshToken, rec.TokenHash)
}

func TestLoginBadCredentials(t *testing.T) {
	u := testUser(t, domain.RoleMember)
	svc, _ := testService(t, newFakeUsers(u))

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "member1@test.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Email desconocido: mismo error, indistinguible.
	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "nobody@test.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDisabledUser(t *testing.T) {
	u := testUser(t, domain.RoleMember)
	now := time.Now()
	u.DisabledAt = &now
	svc, _ := testService(t, newFakeUsers(u))

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "member1@test.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrUserDisabled)
}

func TestLoginAdminGetsAllTenantChurches(t *testing.T) {
	u := testUser(t, domain.RoleAdmin)
	svc, _ := testService(t, newFakeUsers(u))

	res, err := svc.Login(context.Background(), dto.LoginRequest{Email: "member1@test.com", Password: "password123"})
	require.NoError(t, err)

	issuer := jwtx.NewIssuer("shepherd-test", []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"))
	p, err := issuer.VerifyAccess(res.AccessToken)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c1", "c2"}, p.AccessibleChurchIDs)
}

func TestRefreshRotates(t *testing.T) {
	u := testUser(t, domain.RoleMember)
	svc, tokens := testService(t, newFakeUsers(u))

	login, err := svc.Login(context.Background(), dto.LoginRequest{Email: "member1@test.com", Password: "password123"})
	require.NoError(t, err)

	res, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, login.RefreshToken, res.RefreshToken)

	// El viejo quedó marcado como usado; el nuevo comparte la cadena.
	old, err := tokens.GetByHash(context.Background(), token.SHA256Hex(login.RefreshToken))
	require.NoError(t, err)
	assert.NotNil(t, old.UsedAt)
	next, err := tokens.GetByHash(context.Background(), token.SHA256Hex(res.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, old.RotationID, next.RotationID)
}

func TestRefreshReuseRevokesChain(t *testing.T) {
	u := testUser(t, domain.RoleMember)
	svc, tokens := testService(t, newFakeUsers(u))

	login, err := svc.Login(context.Background(), dto.LoginRequest{Email: "member1@test.com", Password: "password123"})
	require.NoError(t, err)

	second, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)

	// Reusar el primero: toda la cadena cae, incluido el sucesor vigente.
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshReused)

	_, err = svc.Refresh(context.Background(), second.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshInvalid)

	rec, err := tokens.GetByHash(context.Background(), token.SHA256Hex(second.RefreshToken))
	require.NoError(t, err)
	assert.NotNil(t, rec.RevokedAt)
}

func TestRefreshUnknownAndExpired(t *testing.T) {
	u := testUser(t, domain.RoleMember)
	svc, tokens := testService(t, newFakeUsers(u))

	_, err := svc.Refresh(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrRefreshInvalid)

	// Token vencido.
	raw, err := token.GenerateOpaqueToken(32)
	require.NoError(t, err)
	_, err = tokens.Create(context.Background(), repository.CreateRefreshTokenInput{
		UserID: "u1", TokenHash: token.SHA256Hex(raw), TTL: -time.Minute,
	})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), raw)
	assert.ErrorIs(t, err, ErrRefreshExpired)
}

func TestLogoutIsIdempotent(t *testing.T) {
	u := testUser(t, domain.RoleMember)
	svc, tokens := testService(t, newFakeUsers(u))

	login, err := svc.Login(context.Background(), dto.LoginRequest{Email: "member1@test.com", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken))
	rec, err := tokens.GetByHash(context.Background(), token.SHA256Hex(login.RefreshToken))
	require.NoError(t, err)
	assert.NotNil(t, rec.RevokedAt)

	// Segunda vez y token desconocido: también 204.
	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken))
	require.NoError(t, svc.Logout(context.Background(), "unknown"))
}
