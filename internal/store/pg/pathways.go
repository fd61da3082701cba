package pg

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
)

type pathwayRepo struct{ pool *pgxpool.Pool }

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadSteps(ctx context.Context, q rowQuerier, pathwayID string) ([]repository.PathwayStep, error) {
	rows, err := q.Query(ctx, `
		SELECT id, pathway_id, name, position FROM pathway_steps
		WHERE pathway_id = $1 ORDER BY position`, pathwayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.PathwayStep
	for rows.Next() {
		var s repository.PathwayStep
		if err := rows.Scan(&s.ID, &s.PathwayID, &s.Name, &s.Position); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *pathwayRepo) List(ctx context.Context, scope authz.Scope) ([]repository.Pathway, error) {
	frag, args := scope.SQL(1)
	q := fmt.Sprintf(`
		SELECT id, tenant_id, name, description, created_at
		FROM pathways WHERE %s ORDER BY name`, frag)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Pathway
	for rows.Next() {
		var p repository.Pathway
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		steps, err := loadSteps(ctx, r.pool, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Steps = steps
	}
	return out, nil
}

func (r *pathwayRepo) Get(ctx context.Context, scope authz.Scope, pathwayID string) (*repository.Pathway, error) {
	frag, args := scope.SQL(2)
	q := fmt.Sprintf(`
		SELECT id, tenant_id, name, description, created_at
		FROM pathways WHERE id = $1 AND %s`, frag)

	var p repository.Pathway
	err := r.pool.QueryRow(ctx, q, append([]any{pathwayID}, args...)...).
		Scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	p.Steps, err = loadSteps(ctx, r.pool, p.ID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pathwayRepo) Create(ctx context.Context, in repository.CreatePathwayInput) (*repository.Pathway, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var p repository.Pathway
	err = tx.QueryRow(ctx, `
		INSERT INTO pathways (id, tenant_id, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, tenant_id, name, description, created_at`,
		uuid.NewString(), in.TenantID, in.Name, in.Description).
		Scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}

	for i, name := range in.StepNames {
		var s repository.PathwayStep
		err = tx.QueryRow(ctx, `
			INSERT INTO pathway_steps (id, pathway_id, name, position)
			VALUES ($1, $2, $3, $4)
			RETURNING id, pathway_id, name, position`,
			uuid.NewString(), p.ID, name, i+1).
			Scan(&s.ID, &s.PathwayID, &s.Name, &s.Position)
		if err != nil {
			return nil, err
		}
		p.Steps = append(p.Steps, s)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

const enrollCols = `id, pathway_id, user_id, enrolled_at, completed_at`

func scanEnrollment(row interface{ Scan(...any) error }) (*repository.Enrollment, error) {
	var e repository.Enrollment
	err := row.Scan(&e.ID, &e.PathwayID, &e.UserID, &e.EnrolledAt, &e.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Enroll se apoya en el unique (pathway_id, user_id): la re-inscripción
// devuelve la fila existente con created=false.
func (r *pathwayRepo) Enroll(ctx context.Context, pathwayID, userID string) (*repository.Enrollment, bool, error) {
	e, err := scanEnrollment(r.pool.QueryRow(ctx, `
		INSERT INTO enrollments (id, pathway_id, user_id)
		VALUES ($1, $2, $3)
		RETURNING `+enrollCols,
		uuid.NewString(), pathwayID, userID))
	if err == nil {
		return e, true, nil
	}
	if !isUniqueViolation(err) {
		return nil, false, err
	}

	e, err = scanEnrollment(r.pool.QueryRow(ctx, `
		SELECT `+enrollCols+` FROM enrollments
		WHERE pathway_id = $1 AND user_id = $2`,
		pathwayID, userID))
	if err != nil {
		return nil, false, mapNoRows(err)
	}
	return e, false, nil
}

func (r *pathwayRepo) GetEnrollment(ctx context.Context, enrollmentID string) (*repository.Enrollment, error) {
	e, err := scanEnrollment(r.pool.QueryRow(ctx,
		`SELECT `+enrollCols+` FROM enrollments WHERE id = $1`, enrollmentID))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return e, nil
}

const progressCols = `id, enrollment_id, step_id, completed_by, completed_at`

func scanProgress(row interface{ Scan(...any) error }) (*repository.StepProgress, error) {
	var p repository.StepProgress
	err := row.Scan(&p.ID, &p.EnrollmentID, &p.StepID, &p.CompletedBy, &p.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CompleteStep marca el paso y, si era el último pendiente del recorrido,
// estampa completed_at de la inscripción en la misma transacción. El paso
// repetido se apoya en el unique (enrollment_id, step_id) y devuelve la fila
// existente con created=false.
func (r *pathwayRepo) CompleteStep(ctx context.Context, enrollmentID, stepID, completedBy string) (*repository.StepProgress, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	p, err := scanProgress(tx.QueryRow(ctx, `
		INSERT INTO step_progress (id, enrollment_id, step_id, completed_by)
		VALUES ($1, $2, $3, $4)
		RETURNING `+progressCols,
		uuid.NewString(), enrollmentID, stepID, completedBy))
	if err != nil {
		if isUniqueViolation(err) {
			p, err = scanProgress(r.pool.QueryRow(ctx, `
				SELECT `+progressCols+` FROM step_progress
				WHERE enrollment_id = $1 AND step_id = $2`,
				enrollmentID, stepID))
			if err != nil {
				return nil, false, mapNoRows(err)
			}
			return p, false, nil
		}
		return nil, false, err
	}

	// Pendientes = pasos del pathway menos los marcados para la inscripción.
	var pending int
	err = tx.QueryRow(ctx, `
		SELECT count(*)
		FROM pathway_steps ps
		JOIN enrollments e ON e.pathway_id = ps.pathway_id
		WHERE e.id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM step_progress sp
			WHERE sp.enrollment_id = e.id AND sp.step_id = ps.id
		  )`, enrollmentID).Scan(&pending)
	if err != nil {
		return nil, false, err
	}
	if pending == 0 {
		_, err = tx.Exec(ctx, `
			UPDATE enrollments SET completed_at = now()
			WHERE id = $1 AND completed_at IS NULL`, enrollmentID)
		if err != nil {
			return nil, false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return p, true, nil
}
