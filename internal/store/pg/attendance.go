package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
)

type attendanceRepo struct{ pool *pgxpool.Pool }

func (r *attendanceRepo) GetService(ctx context.Context, scope authz.Scope, serviceID string) (*repository.Service, error) {
	frag, args := scope.SQL(2)
	q := fmt.Sprintf(`
		SELECT id, local_church_id, name, service_date, created_at
		FROM services WHERE id = $1 AND %s`, frag)

	var s repository.Service
	err := r.pool.QueryRow(ctx, q, append([]any{serviceID}, args...)...).
		Scan(&s.ID, &s.LocalChurchID, &s.Name, &s.ServiceDate, &s.CreatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &s, nil
}

func (r *attendanceRepo) ListServices(ctx context.Context, scope authz.Scope, from time.Time, limit int) ([]repository.Service, error) {
	frag, args := scope.SQL(2)
	if limit <= 0 {
		limit = 20
	}
	q := fmt.Sprintf(`
		SELECT id, local_church_id, name, service_date, created_at
		FROM services
		WHERE service_date >= $1 AND %s
		ORDER BY service_date
		LIMIT %d`, frag, limit)

	rows, err := r.pool.Query(ctx, q, append([]any{from}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Service
	for rows.Next() {
		var s repository.Service
		if err := rows.Scan(&s.ID, &s.LocalChurchID, &s.Name, &s.ServiceDate, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *attendanceRepo) CreateService(ctx context.Context, in repository.CreateServiceInput) (*repository.Service, error) {
	var s repository.Service
	err := r.pool.QueryRow(ctx, `
		INSERT INTO services (id, local_church_id, name, service_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, local_church_id, name, service_date, created_at`,
		uuid.NewString(), in.LocalChurchID, in.Name, in.ServiceDate).
		Scan(&s.ID, &s.LocalChurchID, &s.Name, &s.ServiceDate, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateCheckin inserta la asistencia apoyándose en el unique
// (service_id, member_id): el duplicado no es error, es la respuesta
// "duplicate" del dominio.
func (r *attendanceRepo) CreateCheckin(ctx context.Context, in repository.CreateCheckinInput) (*repository.Checkin, bool, error) {
	const cols = `id, local_church_id, service_id, member_id, new_believer, created_at`

	var c repository.Checkin
	err := r.pool.QueryRow(ctx, `
		INSERT INTO checkins (id, local_church_id, service_id, member_id, new_believer)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+cols,
		uuid.NewString(), in.LocalChurchID, in.ServiceID, in.MemberID, in.NewBeliever).
		Scan(&c.ID, &c.LocalChurchID, &c.ServiceID, &c.MemberID, &c.NewBeliever, &c.CreatedAt)
	if err == nil {
		return &c, true, nil
	}
	if !isUniqueViolation(err) {
		return nil, false, err
	}

	err = r.pool.QueryRow(ctx, `
		SELECT `+cols+` FROM checkins WHERE service_id = $1 AND member_id = $2`,
		in.ServiceID, in.MemberID).
		Scan(&c.ID, &c.LocalChurchID, &c.ServiceID, &c.MemberID, &c.NewBeliever, &c.CreatedAt)
	if err != nil {
		return nil, false, mapNoRows(err)
	}
	return &c, false, nil
}

func (r *attendanceRepo) CountCheckins(ctx context.Context, scope authz.Scope, serviceID string) (int, error) {
	frag, args := scope.SQL(2)
	q := fmt.Sprintf(`
		SELECT count(*) FROM checkins WHERE service_id = $1 AND %s`, frag)

	var n int
	err := r.pool.QueryRow(ctx, q, append([]any{serviceID}, args...)...).Scan(&n)
	return n, err
}
