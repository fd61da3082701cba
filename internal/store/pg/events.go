package pg

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
)

type eventRepo struct{ pool *pgxpool.Pool }

const eventCols = `id, local_church_id, title, description, location,
	starts_at, ends_at, capacity, created_by, created_at`

func scanEvent(row interface{ Scan(...any) error }) (*repository.Event, error) {
	var e repository.Event
	err := row.Scan(
		&e.ID, &e.LocalChurchID, &e.Title, &e.Description, &e.Location,
		&e.StartsAt, &e.EndsAt, &e.Capacity, &e.CreatedBy, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepo) List(ctx context.Context, scope authz.Scope, filter repository.EventFilter) ([]repository.Event, error) {
	frag, args := scope.SQL(1)
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	where := frag
	if filter.UpcomingOnly {
		where += " AND starts_at >= now()"
	}
	q := fmt.Sprintf(`
		SELECT %s FROM events WHERE %s ORDER BY starts_at LIMIT %d`,
		eventCols, where, limit)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *eventRepo) Get(ctx context.Context, scope authz.Scope, eventID string) (*repository.Event, error) {
	frag, args := scope.SQL(2)
	q := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1 AND %s`, eventCols, frag)
	e, err := scanEvent(r.pool.QueryRow(ctx, q, append([]any{eventID}, args...)...))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return e, nil
}

func (r *eventRepo) Create(ctx context.Context, in repository.CreateEventInput) (*repository.Event, error) {
	q := `
		INSERT INTO events (id, local_church_id, title, description, location,
			starts_at, ends_at, capacity, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + eventCols
	e, err := scanEvent(r.pool.QueryRow(ctx, q,
		uuid.NewString(), in.LocalChurchID, in.Title, in.Description, in.Location,
		in.StartsAt, in.EndsAt, in.Capacity, in.CreatedBy))
	if err != nil {
		return nil, err
	}
	return e, nil
}

// RSVP se apoya en el unique (event_id, user_id): el duplicado devuelve la
// fila existente con created=false.
func (r *eventRepo) RSVP(ctx context.Context, eventID, userID string) (*repository.EventRSVP, bool, error) {
	const cols = `id, event_id, user_id, created_at`

	var rsvp repository.EventRSVP
	err := r.pool.QueryRow(ctx, `
		INSERT INTO event_rsvps (id, event_id, user_id)
		VALUES ($1, $2, $3)
		RETURNING `+cols,
		uuid.NewString(), eventID, userID).
		Scan(&rsvp.ID, &rsvp.EventID, &rsvp.UserID, &rsvp.CreatedAt)
	if err == nil {
		return &rsvp, true, nil
	}
	if !isUniqueViolation(err) {
		return nil, false, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT `+cols+` FROM event_rsvps WHERE event_id = $1 AND user_id = $2`,
		eventID, userID).
		Scan(&rsvp.ID, &rsvp.EventID, &rsvp.UserID, &rsvp.CreatedAt)
	if err != nil {
		return nil, false, mapNoRows(err)
	}
	return &rsvp, false, nil
}
