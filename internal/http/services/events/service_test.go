package events

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	dto "github.com/dropDatabas3/shepherd/internal/http/dto/events"
)

type fakeEvents struct {
	events map[string]repository.Event
	rsvps  map[string]repository.EventRSVP // event_id+user_id
	seq    int
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{
		events: map[string]repository.Event{},
		rsvps:  map[string]repository.EventRSVP{},
	}
}

func (f *fakeEvents) List(_ context.Context, scope authz.Scope, filter repository.EventFilter) ([]repository.Event, error) {
	var out []repository.Event
	for _, e := range f.events {
		if !scope.Matches("", e.LocalChurchID) {
			continue
		}
		if filter.UpcomingOnly && e.StartsAt.Before(time.Now()) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeEvents) Get(_ context.Context, scope authz.Scope, eventID string) (*repository.Event, error) {
	e, ok := f.events[eventID]
	if !ok || !scope.Matches("", e.LocalChurchID) {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (f *fakeEvents) Create(_ context.Context, in repository.CreateEventInput) (*repository.Event, error) {
	f.seq++
	e := repository.Event{
		ID:            fmt.Sprintf("ev%d", f.seq),
		LocalChurchID: in.LocalChurchID,
		Title:         in.Title,
		StartsAt:      in.StartsAt,
		EndsAt:        in.EndsAt,
		Capacity:      in.Capacity,
	}
	f.events[e.ID] = e
	return &e, nil
}

func (f *fakeEvents) RSVP(_ context.Context, eventID, userID string) (*repository.EventRSVP, bool, error) {
	key := eventID + "|" + userID
	if existing, ok := f.rsvps[key]; ok {
		return &existing, false, nil
	}
	f.seq++
	r := repository.EventRSVP{
		ID:        fmt.Sprintf("rsvp%d", f.seq),
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	f.rsvps[key] = r
	return &r, true, nil
}

func member() domain.Principal {
	return domain.Principal{
		UserID: "u-member", Role: domain.RoleMember,
		TenantID: "t1", LocalChurchID: "c1",
		AccessibleChurchIDs: []string{"c1"},
	}
}

func testService(t *testing.T) (Service, *fakeEvents) {
	t.Helper()
	repo := newFakeEvents()
	ctx := context.Background()

	_, err := repo.Create(ctx, repository.CreateEventInput{
		LocalChurchID: "c1", Title: "Youth Night",
		StartsAt: time.Now().Add(48 * time.Hour), EndsAt: time.Now().Add(51 * time.Hour),
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, repository.CreateEventInput{
		LocalChurchID: "c1", Title: "Last Month",
		StartsAt: time.Now().Add(-30 * 24 * time.Hour), EndsAt: time.Now().Add(-30 * 24 * time.Hour),
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, repository.CreateEventInput{
		LocalChurchID: "c9", Title: "Elsewhere",
		StartsAt: time.Now().Add(24 * time.Hour), EndsAt: time.Now().Add(26 * time.Hour),
	})
	require.NoError(t, err)

	return New(Deps{Events: repo}), repo
}

func TestListScopedAndUpcoming(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	res, err := svc.List(ctx, member(), true, 0)
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "Youth Night", res.Events[0].Title)

	// Sin upcoming entra el pasado, pero nunca otra iglesia.
	res, err = svc.List(ctx, member(), false, 0)
	require.NoError(t, err)
	assert.Len(t, res.Events, 2)
}

func TestListClampsLimit(t *testing.T) {
	svc, repo := testService(t)
	for i := 0; i < MaxListLimit+20; i++ {
		_, err := repo.Create(context.Background(), repository.CreateEventInput{
			LocalChurchID: "c1", Title: fmt.Sprintf("E%d", i),
			StartsAt: time.Now().Add(time.Duration(i+1) * time.Hour),
		})
		require.NoError(t, err)
	}

	res, err := svc.List(context.Background(), member(), true, 10_000)
	require.NoError(t, err)
	assert.Len(t, res.Events, MaxListLimit)
}

func TestRSVPDuplicate(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	first, created, err := svc.RSVP(ctx, member(), "ev1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, dto.StatusOK, first.Status)

	second, created, err := svc.RSVP(ctx, member(), "ev1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, dto.StatusDuplicate, second.Status)
	assert.Equal(t, first.ID, second.ID)
}

func TestRSVPOutOfScopeIsNotFound(t *testing.T) {
	svc, repo := testService(t)
	ctx := context.Background()

	// ev3 es de c9: para este principal no existe.
	_, _, err := svc.RSVP(ctx, member(), "ev3")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, repo.rsvps)

	_, _, err = svc.RSVP(ctx, member(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
