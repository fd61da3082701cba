// Package flags es el SDK cliente de feature flags: evaluación determinística
// por usuario con rollout porcentual, kill switch remoto y local, y una
// escalera de fallbacks que garantiza que IsEnabled nunca falla ni bloquea.
package flags

import "hash/fnv"

// Niveles de riesgo. Espejan los valores de la tabla server-side; el monitor
// los usa para elegir umbrales.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Flag es la configuración de un feature flag tal como la sirve GET /flags.
type Flag struct {
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	Enabled           bool   `json:"enabled"`
	RolloutPercentage int    `json:"rolloutPercentage"`
	KillSwitchActive  bool   `json:"killSwitchActive"`
	RiskLevel         string `json:"riskLevel"`
}

// Bucket asigna al par (usuario, flag) un bucket estable 0..99. FNV-1a sobre
// la concatenación: el mismo usuario cae siempre en el mismo bucket para el
// mismo flag, y en buckets independientes para flags distintos.
func Bucket(userID, flagName string) int {
	h := fnv.New32a()
	h.Write([]byte(userID))
	h.Write([]byte(flagName))
	return int(h.Sum32() % 100)
}

// Evaluate decide si el flag está activo para el usuario.
// Orden: kill switch gana siempre; luego enabled; luego rollout.
func Evaluate(f Flag, userID string) bool {
	if f.KillSwitchActive {
		return false
	}
	if !f.Enabled {
		return false
	}
	if f.RolloutPercentage >= 100 {
		return true
	}
	if f.RolloutPercentage <= 0 {
		return false
	}
	return Bucket(userID, f.Name) < f.RolloutPercentage
}
