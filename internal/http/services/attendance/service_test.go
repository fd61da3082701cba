package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/attendance"
)

type fakeAttendance struct {
	services map[string]repository.Service
	checkins map[string]repository.Checkin // service_id+member_id
}

func newFakeAttendance() *fakeAttendance {
	return &fakeAttendance{
		services: map[string]repository.Service{},
		checkins: map[string]repository.Checkin{},
	}
}

func (f *fakeAttendance) GetService(_ context.Context, scope authz.Scope, serviceID string) (*repository.Service, error) {
	s, ok := f.services[serviceID]
	if !ok || !scope.Matches("", s.LocalChurchID) {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (f *fakeAttendance) ListServices(_ context.Context, scope authz.Scope, _ time.Time, _ int) ([]repository.Service, error) {
	var out []repository.Service
	for _, s := range f.services {
		if scope.Matches("", s.LocalChurchID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeAttendance) CreateService(_ context.Context, in repository.CreateServiceInput) (*repository.Service, error) {
	s := repository.Service{ID: "svc-" + in.Name, LocalChurchID: in.LocalChurchID, Name: in.Name, ServiceDate: in.ServiceDate}
	f.services[s.ID] = s
	return &s, nil
}

func (f *fakeAttendance) CreateCheckin(_ context.Context, in repository.CreateCheckinInput) (*repository.Checkin, bool, error) {
	key := in.ServiceID + "|" + in.MemberID
	if existing, ok := f.checkins[key]; ok {
		return &existing, false, nil
	}
	c := repository.Checkin{
		ID:            "chk-" + key,
		LocalChurchID: in.LocalChurchID,
		ServiceID:     in.ServiceID,
		MemberID:      in.MemberID,
		NewBeliever:   in.NewBeliever,
		CreatedAt:     time.Now(),
	}
	f.checkins[key] = c
	return &c, true, nil
}

func (f *fakeAttendance) CountCheckins(_ context.Context, scope authz.Scope, serviceID string) (int, error) {
	n := 0
	for _, c := range f.checkins {
		if c.ServiceID == serviceID && scope.Matches("", c.LocalChurchID) {
			n++
		}
	}
	return n, nil
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

func strptr(s string) *string { return &s }

func testService() (Service, *fakeAttendance) {
	att := newFakeAttendance()
	att.services["svc-1"] = repository.Service{ID: "svc-1", LocalChurchID: "c1", Name: "Sunday 10AM"}
	att.services["svc-other"] = repository.Service{ID: "svc-other", LocalChurchID: "c9", Name: "Elsewhere"}

	users := &fakeUsers{users: map[string]repository.User{
		"u-member": {ID: "u-member", TenantID: strptr("t1"), LocalChurchID: strptr("c1"), Role: domain.RoleMember},
		"u-new":    {ID: "u-new", TenantID: strptr("t1"), LocalChurchID: strptr("c1"), Role: domain.RoleMember, IsNewBeliever: true},
		"u-leader": {ID: "u-leader", TenantID: strptr("t1"), LocalChurchID: strptr("c1"), Role: domain.RoleLeader},
	}}

	return New(Deps{Attendance: att, Users: users}), att
}

func member() domain.Principal {
	return domain.Principal{
		UserID: "u-member", Role: domain.RoleMember,
		TenantID: "t1", LocalChurchID: "c1",
		AccessibleChurchIDs: []string{"c1"},
	}
}

func leader() domain.Principal {
	return domain.Principal{
		UserID: "u-leader", Role: domain.RoleLeader,
		TenantID: "t1", LocalChurchID: "c1",
		AccessibleChurchIDs: []string{"c1"},
	}
}

func TestCheckinSelf(t *testing.T) {
	svc, _ := testService()

	res, created, err := svc.Checkin(context.Background(), member(), dto.CheckinRequest{ServiceID: "svc-1"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, dto.StatusOK, res.Status)
	assert.NotEmpty(t, res.ID)
}

func TestCheckinDuplicateReturnsSameRecord(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()

	first, created, err := svc.Checkin(ctx, member(), dto.CheckinRequest{ServiceID: "svc-1"})
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.Checkin(ctx, member(), dto.CheckinRequest{ServiceID: "svc-1"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, dto.StatusDuplicate, second.Status)
	assert.Equal(t, first.ID, second.ID)
}

func TestCheckinMemberCannotRegisterOthers(t *testing.T) {
	svc, _ := testService()

	_, _, err := svc.Checkin(context.Background(), member(), dto.CheckinRequest{
		ServiceID: "svc-1",
		MemberID:  "u-new",
	})
	assert.ErrorIs(t, err, ErrSelfOnly)
}

func TestCheckinLeaderRegistersOther(t *testing.T) {
	svc, att := testService()

	res, created, err := svc.Checkin(context.Background(), leader(), dto.CheckinRequest{
		ServiceID: "svc-1",
		MemberID:  "u-new",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, dto.StatusOK, res.Status)

	// El flag de nuevo creyente del perfil se propaga al check-in.
	c := att.checkins["svc-1|u-new"]
	assert.True(t, c.NewBeliever)
}

func TestCheckinServiceOutOfScopeIsNotFound(t *testing.T) {
	svc, _ := testService()

	_, _, err := svc.Checkin(context.Background(), member(), dto.CheckinRequest{ServiceID: "svc-other"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckinUnknownServiceIsNotFound(t *testing.T) {
	svc, _ := testService()

	_, _, err := svc.Checkin(context.Background(), member(), dto.CheckinRequest{ServiceID: "nope"})
	assert.ErrorIs(t, err, ErrNotFound)
}
