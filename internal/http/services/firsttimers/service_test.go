package firsttimers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/firsttimers"
)

type fakeFirstTimers struct {
	fts    map[string]*repository.FirstTimer
	emails map[string]bool
	users  map[string]repository.User
	seq    int
}

func newFakeFirstTimers() *fakeFirstTimers {
	return &fakeFirstTimers{
		fts:    map[string]*repository.FirstTimer{},
		emails: map[string]bool{},
		users:  map[string]repository.User{},
	}
}

func (f *fakeFirstTimers) Create(_ context.Context, user repository.CreateUserInput, in repository.CreateFirstTimerInput) (*repository.FirstTimer, *repository.User, error) {
	if f.emails[user.Email] {
		return nil, nil, repository.ErrConflict
	}
	f.emails[user.Email] = true

	f.seq++
	u := repository.User{
		ID:            fmt.Sprintf("u%d", f.seq),
		Email:         user.Email,
		Name:          user.Name,
		Role:          user.Role,
		IsNewBeliever: user.IsNewBeliever,
	}
	f.users[u.ID] = u

	f.seq++
	ft := &repository.FirstTimer{
		ID:            fmt.Sprintf("ft%d", f.seq),
		LocalChurchID: in.LocalChurchID,
		MemberID:      u.ID,
		GospelShared:  in.GospelShared,
		Notes:         in.Notes,
		CreatedAt:     time.Now(),
	}
	if in.AssignedVipID != "" {
		vip := in.AssignedVipID
		ft.AssignedVipID = &vip
	}
	f.fts[ft.ID] = ft
	return ft, &u, nil
}

func (f *fakeFirstTimers) List(_ context.Context, scope authz.Scope, _ int) ([]repository.FirstTimer, error) {
	var out []repository.FirstTimer
	for _, ft := range f.fts {
		if scope.Matches("", ft.LocalChurchID) {
			out = append(out, *ft)
		}
	}
	return out, nil
}

func (f *fakeFirstTimers) Get(_ context.Context, scope authz.Scope, id string) (*repository.FirstTimer, error) {
	ft, ok := f.fts[id]
	if !ok || !scope.Matches("", ft.LocalChurchID) {
		return nil, repository.ErrNotFound
	}
	return ft, nil
}

func (f *fakeFirstTimers) Update(_ context.Context, scope authz.Scope, id string, in repository.UpdateFirstTimerInput) (*repository.FirstTimer, error) {
	ft, ok := f.fts[id]
	if !ok || !scope.Matches("", ft.LocalChurchID) {
		return nil, repository.ErrNotFound
	}
	if in.AssignedVipID != nil {
		ft.AssignedVipID = in.AssignedVipID
	}
	if in.GospelShared != nil {
		ft.GospelShared = *in.GospelShared
	}
	if in.Notes != nil {
		ft.Notes = *in.Notes
	}
	return ft, nil
}

type fakeUsers struct {
	vipEmails []string
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

func (f *fakeUsers) Create(_ context.Context, _ repository.CreateUserInput) (*repository.User, error) {
	return nil, repository.ErrConflict
}

func (f *fakeUsers) UpdateProfile(_ context.Context, _ string, _ repository.UpdateProfileInput) (*repository.User, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) SetRole(_ context.Context, _ string, _ domain.Role) error { return nil }

func (f *fakeUsers) HasSuperAdmin(_ context.Context) (bool, error) { return true, nil }

func (f *fakeUsers) EmailsByRole(_ context.Context, _ authz.Scope, role domain.Role) ([]string, error) {
	if role == domain.RoleVIP {
		return f.vipEmails, nil
	}
	return nil, nil
}

// fakeSender avisa por canal para sincronizar el envío en background.
type fakeSender struct {
	done chan string
}

func (f *fakeSender) Enabled() bool { return true }

func (f *fakeSender) Send(to, subject, htmlBody, textBody string) error {
	f.done <- to
	return nil
}

func vip() domain.Principal {
	return domain.Principal{
		UserID: "u-vip", Role: domain.RoleVIP,
		TenantID: "t1", LocalChurchID: "c1",
		AccessibleChurchIDs: []string{"c1"},
	}
}

func testService() (Service, *fakeFirstTimers) {
	repo := newFakeFirstTimers()
	return New(Deps{FirstTimers: repo}), repo
}

func TestCreateAssignsVipAndMember(t *testing.T) {
	svc, repo := testService()

	res, err := svc.Create(context.Background(), vip(), dto.CreateRequest{
		Name:         "Juan Nuevo",
		Email:        "Juan.Nuevo@Test.com",
		NewBeliever:  true,
		GospelShared: true,
		Notes:        "vino con su prima",
	})
	require.NoError(t, err)
	assert.Equal(t, "u-vip", res.AssignedVipID)
	assert.True(t, res.GospelShared)
	require.NotEmpty(t, res.MemberID)

	// El miembro queda MEMBER, con email normalizado y flag de nuevo creyente.
	u := repo.users[res.MemberID]
	assert.Equal(t, domain.RoleMember, u.Role)
	assert.Equal(t, "juan.nuevo@test.com", u.Email)
	assert.True(t, u.IsNewBeliever)
}

func TestCreateRequiresVIP(t *testing.T) {
	svc, _ := testService()

	leader := domain.Principal{
		UserID: "u-leader", Role: domain.RoleLeader,
		TenantID: "t1", LocalChurchID: "c1",
		AccessibleChurchIDs: []string{"c1"},
	}
	_, err := svc.Create(context.Background(), leader, dto.CreateRequest{
		Name: "Juan", Email: "juan@test.com",
	})
	assert.ErrorIs(t, err, ErrVIPRequired)
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()

	_, err := svc.Create(ctx, vip(), dto.CreateRequest{Name: "Juan", Email: "juan@test.com"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, vip(), dto.CreateRequest{Name: "Otro Juan", Email: "juan@test.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()

	_, err := svc.Create(ctx, vip(), dto.CreateRequest{Name: "", Email: "juan@test.com"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, vip(), dto.CreateRequest{Name: "Juan", Email: "no-es-email"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateWithoutChurch(t *testing.T) {
	svc, _ := testService()

	// SUPER_ADMIN global sin iglesia: no hay dónde registrar la ficha.
	root := domain.Principal{UserID: "u-root", Role: domain.RoleSuperAdmin}
	_, err := svc.Create(context.Background(), root, dto.CreateRequest{
		Name: "Juan", Email: "juan@test.com",
	})
	assert.ErrorIs(t, err, ErrNoChurch)
}

func TestListScopedToChurch(t *testing.T) {
	svc, repo := testService()
	ctx := context.Background()

	_, err := svc.Create(ctx, vip(), dto.CreateRequest{Name: "Juan", Email: "juan@test.com"})
	require.NoError(t, err)

	// Ficha de otra iglesia, directo en el repo.
	_, _, err = repo.Create(ctx,
		repository.CreateUserInput{Email: "ana@test.com", Name: "Ana", Role: domain.RoleMember},
		repository.CreateFirstTimerInput{LocalChurchID: "c9"},
	)
	require.NoError(t, err)

	res, err := svc.List(ctx, vip())
	require.NoError(t, err)
	require.Len(t, res.FirstTimers, 1)
	assert.Equal(t, "c1", res.FirstTimers[0].LocalChurchID)
}

func TestCreateNotifiesVIPTeam(t *testing.T) {
	repo := newFakeFirstTimers()
	sender := &fakeSender{done: make(chan string, 2)}
	svc := New(Deps{
		FirstTimers: repo,
		Users:       &fakeUsers{vipEmails: []string{"vip1@test.com", "vip2@test.com"}},
		Mailer:      sender,
	})

	_, err := svc.Create(context.Background(), vip(), dto.CreateRequest{
		Name: "Juan Nuevo", Email: "juan@test.com",
	})
	require.NoError(t, err)

	// El aviso corre en background; esperar los dos envíos.
	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case to := <-sender.done:
			got[to] = true
		case <-time.After(2 * time.Second):
			t.Fatal("vip notify did not finish in time")
		}
	}
	assert.True(t, got["vip1@test.com"])
	assert.True(t, got["vip2@test.com"])
}

func TestUpdateFollowup(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()

	res, err := svc.Create(ctx, vip(), dto.CreateRequest{Name: "Juan", Email: "juan@test.com"})
	require.NoError(t, err)

	shared := true
	notes := "agendado One2One"
	ft, err := svc.Update(ctx, vip(), res.ID, dto.UpdateRequest{
		GospelShared: &shared,
		Notes:        &notes,
	})
	require.NoError(t, err)
	assert.True(t, ft.GospelShared)
	assert.Equal(t, "agendado One2One", ft.Notes)

	// Fuera del scope: 404.
	foreign := domain.Principal{
		UserID: "u-x", Role: domain.RoleVIP,
		TenantID: "t1", LocalChurchID: "c9",
		AccessibleChurchIDs: []string{"c9"},
	}
	_, err = svc.Update(ctx, foreign, res.ID, dto.UpdateRequest{Notes: &notes})
	assert.ErrorIs(t, err, ErrNotFound)
}
