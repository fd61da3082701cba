package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/shepherd/internal/domain/repository"
)

type flagRepo struct{ pool *pgxpool.Pool }

const flagCols = `name, description, enabled, rollout_percentage,
	kill_switch_active, risk_level, updated_at, updated_by`

func scanFlag(row interface{ Scan(...any) error }) (*repository.FeatureFlag, error) {
	var f repository.FeatureFlag
	err := row.Scan(
		&f.Name, &f.Description, &f.Enabled, &f.RolloutPercentage,
		&f.KillSwitchActive, &f.RiskLevel, &f.UpdatedAt, &f.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *flagRepo) List(ctx context.Context) ([]repository.FeatureFlag, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+flagCols+` FROM feature_flags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.FeatureFlag
	for rows.Next() {
		f, err := scanFlag(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func (r *flagRepo) Get(ctx context.Context, name string) (*repository.FeatureFlag, error) {
	f, err := scanFlag(r.pool.QueryRow(ctx,
		`SELECT `+flagCols+` FROM feature_flags WHERE name = $1`, name))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return f, nil
}

// Upsert: los campos nil del input conservan el valor vigente; si el flag es
// nuevo toman el default de la columna via COALESCE contra EXCLUDED.
func (r *flagRepo) Upsert(ctx context.Context, in repository.UpsertFlagInput) (*repository.FeatureFlag, error) {
	q := `
		INSERT INTO feature_flags (name, description, enabled, rollout_percentage, risk_level, updated_by)
		VALUES ($1, COALESCE($2, ''), COALESCE($3, FALSE), COALESCE($4, 0), COALESCE($5, 'low'), $6)
		ON CONFLICT (name) DO UPDATE SET
			description        = COALESCE($2, feature_flags.description),
			enabled            = COALESCE($3, feature_flags.enabled),
			rollout_percentage = COALESCE($4, feature_flags.rollout_percentage),
			risk_level         = COALESCE($5, feature_flags.risk_level),
			updated_at         = now(),
			updated_by         = $6
		RETURNING ` + flagCols
	f, err := scanFlag(r.pool.QueryRow(ctx, q,
		in.Name, in.Description, in.Enabled, in.RolloutPercentage, in.RiskLevel, in.UpdatedBy))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *flagRepo) SetKillSwitch(ctx context.Context, name string, active bool, by string) (*repository.FeatureFlag, error) {
	f, err := scanFlag(r.pool.QueryRow(ctx, `
		UPDATE feature_flags
		SET kill_switch_active = $2, updated_at = now(), updated_by = $3
		WHERE name = $1
		RETURNING `+flagCols,
		name, active, by))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return f, nil
}
