package directory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/directory"
)

type fakeUsers struct {
	users map[string]*repository.User
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*repository.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*repository.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetScoped(_ context.Context, scope authz.Scope, id string) (*repository.User, error) {
	u, ok := f.users[id]
	if !ok || !scope.Matches(deref(u.TenantID), deref(u.LocalChurchID)) {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) Search(_ context.Context, scope authz.Scope, filter repository.DirectoryFilter) ([]repository.User, error) {
	var out []repository.User
	for _, u := range f.users {
		if !scope.Matches(deref(u.TenantID), deref(u.LocalChurchID)) {
			continue
		}
		if filter.Query != "" && !strings.HasPrefix(u.Name, filter.Query) {
			continue
		}
		out = append(out, *u)
		if len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeUsers) Create(_ context.Context, _ repository.CreateUserInput) (*repository.User, error) {
	return nil, repository.ErrConflict
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id string, in repository.UpdateProfileInput) (*repository.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Phone != nil {
		u.Phone = in.Phone
	}
	if in.ProfileVisibility != nil {
		u.ProfileVisibility = *in.ProfileVisibility
	}
	if in.AllowContact != nil {
		u.AllowContact = *in.AllowContact
	}
	return u, nil
}

func (f *fakeUsers) SetRole(_ context.Context, _ string, _ domain.Role) error { return nil }

func (f *fakeUsers) HasSuperAdmin(_ context.Context) (bool, error) { return true, nil }

func (f *fakeUsers) EmailsByRole(_ context.Context, _ authz.Scope, _ domain.Role) ([]string, error) {
	return nil, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strptr(s string) *string { return &s }

func testService() Service {
	users := map[string]*repository.User{
		"u-viewer": {
			ID: "u-viewer", TenantID: strptr("t1"), LocalChurchID: strptr("c1"),
			Email: "viewer@test.com", Name: "Viviana Viewer", Role: domain.RoleMember,
			ProfileVisibility: domain.VisibilityMembers,
		},
		"u-open": {
			ID: "u-open", TenantID: strptr("t1"), LocalChurchID: strptr("c1"),
			Email: "open@test.com", Name: "Omar Open", Phone: strptr("+63 917 000 1111"),
			Role: domain.RoleMember, ProfileVisibility: domain.VisibilityMembers,
			AllowContact: true,
		},
		"u-shy": {
			ID: "u-shy", TenantID: strptr("t1"), LocalChurchID: strptr("c1"),
			Email: "shy@test.com", Name: "Sofia Shy", Role: domain.RoleMember,
			ProfileVisibility: domain.VisibilityPrivate,
		},
		"u-leadersonly": {
			ID: "u-leadersonly", TenantID: strptr("t1"), LocalChurchID: strptr("c1"),
			Email: "lead@test.com", Name: "Lena Leaderscope", Role: domain.RoleMember,
			ProfileVisibility: domain.VisibilityLeaders, AllowContact: true,
		},
		"u-foreign": {
			ID: "u-foreign", TenantID: strptr("t2"), LocalChurchID: strptr("c9"),
			Email: "foreign@test.com", Name: "Omar Outsider", Role: domain.RoleMember,
			ProfileVisibility: domain.VisibilityPublic,
		},
	}
	return New(Deps{Users: &fakeUsers{users: users}})
}

func viewer(role domain.Role) domain.Principal {
	return domain.Principal{
		UserID: "u-viewer", Role: role,
		TenantID: "t1", LocalChurchID: "c1",
		AccessibleChurchIDs: []string{"c1"},
	}
}

func TestSearchSkipsInvisibleProfiles(t *testing.T) {
	svc := testService()

	res, err := svc.Search(context.Background(), viewer(domain.RoleMember), "", 0)
	require.NoError(t, err)

	ids := make([]string, 0, len(res.Members))
	for _, m := range res.Members {
		ids = append(ids, m.ID)
	}
	// PRIVATE se omite; LEADERS se omite para un MEMBER; otro tenant no entra.
	assert.NotContains(t, ids, "u-shy")
	assert.NotContains(t, ids, "u-leadersonly")
	assert.NotContains(t, ids, "u-foreign")
	assert.Contains(t, ids, "u-open")
}

func TestSearchRedactsContactWithoutConsent(t *testing.T) {
	svc := testService()

	res, err := svc.Search(context.Background(), viewer(domain.RoleMember), "", 0)
	require.NoError(t, err)

	byID := map[string]dto.Member{}
	for _, m := range res.Members {
		byID[m.ID] = m
	}

	// u-open dio consentimiento: contacto visible.
	assert.Equal(t, "open@test.com", byID["u-open"].Email)
	assert.NotEmpty(t, byID["u-open"].Phone)
	// u-viewer (self en el listado) siempre completo.
	assert.Equal(t, "viewer@test.com", byID["u-viewer"].Email)
}

func TestGetMemberInvisibleIsNotFound(t *testing.T) {
	svc := testService()

	// PRIVATE para un MEMBER: indistinguible de inexistente.
	_, err := svc.GetMember(context.Background(), viewer(domain.RoleMember), "u-shy")
	assert.ErrorIs(t, err, ErrNotFound)

	// Otro tenant: mismo resultado.
	_, err = svc.GetMember(context.Background(), viewer(domain.RoleMember), "u-foreign")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetMemberAdminSeesPrivateButNotContact(t *testing.T) {
	svc := testService()

	m, err := svc.GetMember(context.Background(), viewer(domain.RoleAdmin), "u-shy")
	require.NoError(t, err)
	assert.Equal(t, "Sofia Shy", m.Name)
	// Sin allowContact ni el ADMIN ve email/teléfono.
	assert.Empty(t, m.Email)
	assert.Empty(t, m.Phone)
}

func TestGetMemberLeaderTier(t *testing.T) {
	svc := testService()

	_, err := svc.GetMember(context.Background(), viewer(domain.RoleMember), "u-leadersonly")
	assert.ErrorIs(t, err, ErrNotFound)

	m, err := svc.GetMember(context.Background(), viewer(domain.RoleLeader), "u-leadersonly")
	require.NoError(t, err)
	assert.Equal(t, "lead@test.com", m.Email)
}

func TestUpdateMe(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	newName := "Viviana Updated"
	vis := "PRIVATE"
	me, err := svc.UpdateMe(ctx, viewer(domain.RoleMember), dto.UpdateMeRequest{
		Name:              &newName,
		ProfileVisibility: &vis,
	})
	require.NoError(t, err)
	assert.Equal(t, "Viviana Updated", me.Name)
	assert.Equal(t, "PRIVATE", me.ProfileVisibility)
}

func TestUpdateMeRejectsBadVisibility(t *testing.T) {
	svc := testService()

	vis := "EVERYONE"
	_, err := svc.UpdateMe(context.Background(), viewer(domain.RoleMember), dto.UpdateMeRequest{
		ProfileVisibility: &vis,
	})
	assert.ErrorIs(t, err, ErrInvalidField)
}
