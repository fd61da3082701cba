package pathways

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
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/pathways"
)

type fakePathways struct {
	pathways    map[string]*repository.Pathway
	enrollments map[string]*repository.Enrollment
	progress    map[string]*repository.StepProgress // enrollment_id+step_id
	seq         int
}

func newFakePathways() *fakePathways {
	return &fakePathways{
		pathways:    map[string]*repository.Pathway{},
		enrollments: map[string]*repository.Enrollment{},
		progress:    map[string]*repository.StepProgress{},
	}
}

func (f *fakePathways) List(_ context.Context, scope authz.Scope) ([]repository.Pathway, error) {
	var out []repository.Pathway
	for _, pw := range f.pathways {
		if scope.Matches(pw.TenantID, "") {
			out = append(out, *pw)
		}
	}
	return out, nil
}

func (f *fakePathways) Get(_ context.Context, scope authz.Scope, pathwayID string) (*repository.Pathway, error) {
	pw, ok := f.pathways[pathwayID]
	if !ok || !scope.Matches(pw.TenantID, "") {
		return nil, repository.ErrNotFound
	}
	return pw, nil
}

func (f *fakePathways) Create(_ context.Context, in repository.CreatePathwayInput) (*repository.Pathway, error) {
	f.seq++
	pw := &repository.Pathway{
		ID:          fmt.Sprintf("pw%d", f.seq),
		TenantID:    in.TenantID,
		Name:        in.Name,
		Description: in.Description,
	}
	for i, name := range in.StepNames {
		f.seq++
		pw.Steps = append(pw.Steps, repository.PathwayStep{
			ID: fmt.Sprintf("st%d", f.seq), PathwayID: pw.ID, Name: name, Position: i + 1,
		})
	}
	f.pathways[pw.ID] = pw
	return pw, nil
}

func (f *fakePathways) Enroll(_ context.Context, pathwayID, userID string) (*repository.Enrollment, bool, error) {
	for _, e := range f.enrollments {
		if e.PathwayID == pathwayID && e.UserID == userID {
			return e, false, nil
		}
	}
	f.seq++
	e := &repository.Enrollment{
		ID:         fmt.Sprintf("en%d", f.seq),
		PathwayID:  pathwayID,
		UserID:     userID,
		EnrolledAt: time.Now(),
	}
	f.enrollments[e.ID] = e
	return e, true, nil
}

func (f *fakePathways) GetEnrollment(_ context.Context, enrollmentID string) (*repository.Enrollment, error) {
	e, ok := f.enrollments[enrollmentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakePathways) CompleteStep(_ context.Context, enrollmentID, stepID, completedBy string) (*repository.StepProgress, bool, error) {
	e, ok := f.enrollments[enrollmentID]
	if !ok {
		return nil, false, repository.ErrNotFound
	}
	pw := f.pathways[e.PathwayID]
	valid := false
	for _, st := range pw.Steps {
		if st.ID == stepID {
			valid = true
		}
	}
	if !valid {
		return nil, false, repository.ErrNotFound
	}

	key := enrollmentID + "|" + stepID
	if existing, ok := f.progress[key]; ok {
		return existing, false, nil
	}
	f.seq++
	p := &repository.StepProgress{
		ID:           fmt.Sprintf("pr%d", f.seq),
		EnrollmentID: enrollmentID,
		StepID:       stepID,
		CompletedBy:  completedBy,
		CompletedAt:  time.Now(),
	}
	f.progress[key] = p

	// Último paso pendiente: cerrar la inscripción, como hace el store real.
	done := 0
	for _, st := range pw.Steps {
		if _, ok := f.progress[enrollmentID+"|"+st.ID]; ok {
			done++
		}
	}
	if done == len(pw.Steps) {
		now := time.Now()
		e.CompletedAt = &now
	}
	return p, true, nil
}

func leader() domain.Principal {
	return domain.Principal{
		UserID: "u-leader", Role: domain.RoleLeader,
		TenantID: "t1", LocalChurchID: "c1",
		AccessibleChurchIDs: []string{"c1"},
	}
}

func member() domain.Principal {
	return domain.Principal{
		UserID: "u-member", Role: domain.RoleMember,
		TenantID: "t1", LocalChurchID: "c1",
		AccessibleChurchIDs: []string{"c1"},
	}
}

func testService(t *testing.T) (Service, *fakePathways, *repository.Pathway) {
	t.Helper()
	repo := newFakePathways()
	pw, err := repo.Create(context.Background(), repository.CreatePathwayInput{
		TenantID:  "t1",
		Name:      "ROOTS",
		StepNames: []string{"One2One", "Victory Weekend"},
	})
	require.NoError(t, err)
	return New(Deps{Pathways: repo}), repo, pw
}

func TestListScopedToTenant(t *testing.T) {
	svc, repo, _ := testService(t)
	_, err := repo.Create(context.Background(), repository.CreatePathwayInput{
		TenantID: "t2", Name: "OTHER",
	})
	require.NoError(t, err)

	res, err := svc.List(context.Background(), member())
	require.NoError(t, err)
	require.Len(t, res.Pathways, 1)
	assert.Equal(t, "ROOTS", res.Pathways[0].Name)
	assert.Len(t, res.Pathways[0].Steps, 2)
}

func TestEnrollTwiceIsDuplicate(t *testing.T) {
	svc, _, pw := testService(t)
	ctx := context.Background()

	res, created, err := svc.Enroll(ctx, member(), pw.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, dto.StatusOK, res.Status)

	res2, created, err := svc.Enroll(ctx, member(), pw.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, dto.StatusDuplicate, res2.Status)
	assert.Equal(t, res.ID, res2.ID)
}

func TestEnrollUnknownPathway(t *testing.T) {
	svc, _, _ := testService(t)

	_, _, err := svc.Enroll(context.Background(), member(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteStepRequiresLeader(t *testing.T) {
	svc, _, pw := testService(t)
	ctx := context.Background()

	res, _, err := svc.Enroll(ctx, member(), pw.ID)
	require.NoError(t, err)

	_, _, err = svc.CompleteStep(ctx, member(), res.ID, pw.Steps[0].ID)
	assert.ErrorIs(t, err, ErrLeaderRequired)
}

func TestCompleteLastStepStampsCompletion(t *testing.T) {
	svc, _, pw := testService(t)
	ctx := context.Background()

	enr, _, err := svc.Enroll(ctx, member(), pw.ID)
	require.NoError(t, err)

	first, created, err := svc.CompleteStep(ctx, leader(), enr.ID, pw.Steps[0].ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Nil(t, first.CompletedAt)

	last, created, err := svc.CompleteStep(ctx, leader(), enr.ID, pw.Steps[1].ID)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, last.CompletedAt)

	// Repetir el paso: duplicate, la inscripción sigue completa.
	again, created, err := svc.CompleteStep(ctx, leader(), enr.ID, pw.Steps[1].ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, dto.StatusDuplicate, again.Status)
	assert.NotNil(t, again.CompletedAt)
}

func TestCompleteStepForeignTenantIsNotFound(t *testing.T) {
	svc, _, pw := testService(t)
	ctx := context.Background()

	enr, _, err := svc.Enroll(ctx, member(), pw.ID)
	require.NoError(t, err)

	foreign := domain.Principal{
		UserID: "u-x", Role: domain.RoleLeader,
		TenantID: "t2", LocalChurchID: "c9",
		AccessibleChurchIDs: []string{"c9"},
	}
	_, _, err = svc.CompleteStep(ctx, foreign, enr.ID, pw.Steps[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
