package repository

import (
	"context"
	"time"
)

// Niveles de riesgo de un feature flag. El monitor del cliente usa el nivel
// para elegir umbrales de kill switch.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// FeatureFlag es la configuración server-side de un flag. La evaluación
// por usuario ocurre del lado del cliente y nunca se persiste.
type FeatureFlag struct {
	Name              string
	Description       string
	Enabled           bool
	RolloutPercentage int // 0..100
	KillSwitchActive  bool
	RiskLevel         string
	UpdatedAt         time.Time
	UpdatedBy         *string
}

type UpsertFlagInput struct {
	Name              string
	Description       *string
	Enabled           *bool
	RolloutPercentage *int
	RiskLevel         *string
	UpdatedBy         string
}

// FlagRepository define la tabla de feature flags.
type FlagRepository interface {
	// List lista todos los flags.
	List(ctx context.Context) ([]FeatureFlag, error)

	// Get busca un flag por nombre.
	Get(ctx context.Context, name string) (*FeatureFlag, error)

	// Upsert crea o actualiza un flag. Campos nil quedan como estaban
	// (o toman el default si el flag es nuevo).
	Upsert(ctx context.Context, in UpsertFlagInput) (*FeatureFlag, error)

	// SetKillSwitch activa/desactiva el kill switch remoto.
	SetKillSwitch(ctx context.Context, name string, active bool, by string) (*FeatureFlag, error)
}
