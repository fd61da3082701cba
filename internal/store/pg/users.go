package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/shepherd/internal/authz"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
)

type userRepo struct{ pool *pgxpool.Pool }

const userCols = `id, tenant_id, local_church_id, email, name, phone, role,
	password_hash, profile_visibility, allow_contact, is_new_believer,
	disabled_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*repository.User, error) {
	var u repository.User
	var role, vis string
	err := row.Scan(
		&u.ID, &u.TenantID, &u.LocalChurchID, &u.Email, &u.Name, &u.Phone, &role,
		&u.PasswordHash, &vis, &u.AllowContact, &u.IsNewBeliever,
		&u.DisabledAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	u.ProfileVisibility = domain.Visibility(vis)
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	q := `SELECT ` + userCols + ` FROM users WHERE email = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, q, strings.ToLower(email)))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return u, nil
}

func (r *userRepo) GetByID(ctx context.Context, userID string) (*repository.User, error) {
	q := `SELECT ` + userCols + ` FROM users WHERE id = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, q, userID))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return u, nil
}

func (r *userRepo) GetScoped(ctx context.Context, scope authz.Scope, userID string) (*repository.User, error) {
	frag, args := scope.SQL(2)
	q := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 AND %s`, userCols, frag)
	u, err := scanUser(r.pool.QueryRow(ctx, q, append([]any{userID}, args...)...))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return u, nil
}

func (r *userRepo) Search(ctx context.Context, scope authz.Scope, filter repository.DirectoryFilter) ([]repository.User, error) {
	frag, scopeArgs := scope.SQL(2)
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	// Prefijo de nombre o email, case-insensitive. El patrón escapa los
	// comodines de LIKE para que la query del usuario sea literal.
	pattern := likePrefix(filter.Query)

	q := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE (name ILIKE $1 OR email ILIKE $1) AND %s AND disabled_at IS NULL
		ORDER BY name
		LIMIT %d`, userCols, frag, limit)

	rows, err := r.pool.Query(ctx, q, append([]any{pattern}, scopeArgs...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func likePrefix(q string) string {
	repl := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return repl.Replace(strings.TrimSpace(q)) + "%"
}

func (r *userRepo) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	vis := in.ProfileVisibility
	if vis == "" {
		vis = domain.VisibilityMembers
	}
	q := `
		INSERT INTO users (id, tenant_id, local_church_id, email, name, phone, role,
			password_hash, profile_visibility, allow_contact, is_new_believer)
		VALUES ($1, NULLIF($2,''), NULLIF($3,''), $4, $5, NULLIF($6,''), $7, $8, $9, $10, $11)
		RETURNING ` + userCols
	u, err := scanUser(r.pool.QueryRow(ctx, q,
		uuid.NewString(), in.TenantID, in.LocalChurchID,
		strings.ToLower(in.Email), in.Name, in.Phone, string(in.Role),
		in.PasswordHash, string(vis), in.AllowContact, in.IsNewBeliever,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, userID string, in repository.UpdateProfileInput) (*repository.User, error) {
	q := `
		UPDATE users SET
			name               = COALESCE($2, name),
			phone              = COALESCE($3, phone),
			profile_visibility = COALESCE($4, profile_visibility),
			allow_contact      = COALESCE($5, allow_contact),
			updated_at         = now()
		WHERE id = $1
		RETURNING ` + userCols

	var vis *string
	if in.ProfileVisibility != nil {
		s := string(*in.ProfileVisibility)
		vis = &s
	}
	u, err := scanUser(r.pool.QueryRow(ctx, q, userID, in.Name, in.Phone, vis, in.AllowContact))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return u, nil
}

func (r *userRepo) SetRole(ctx context.Context, userID string, role domain.Role) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = now() WHERE id = $1`,
		userID, string(role))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepo) HasSuperAdmin(ctx context.Context) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE role = $1 AND disabled_at IS NULL)`,
		string(domain.RoleSuperAdmin)).Scan(&exists)
	return exists, err
}

func (r *userRepo) EmailsByRole(ctx context.Context, scope authz.Scope, min domain.Role) ([]string, error) {
	frag, scopeArgs := scope.SQL(2)

	// El orden total de roles vive en domain; acá lo proyectamos a la lista
	// de roles admitidos para no duplicar el ranking en SQL.
	var allowed []string
	for _, role := range domain.Roles() {
		if role.Rank() >= min.Rank() {
			allowed = append(allowed, string(role))
		}
	}

	q := fmt.Sprintf(`
		SELECT email FROM users
		WHERE role = ANY($1) AND %s AND disabled_at IS NULL`, frag)

	rows, err := r.pool.Query(ctx, q, append([]any{allowed}, scopeArgs...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
