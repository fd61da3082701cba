package flags

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults del monitor.
const (
	DefaultMonitorInterval = 30 * time.Second
	DefaultMonitorTimeout  = 10 * time.Second
	DefaultCooldown        = 5 * time.Minute
	DefaultMinRequests     = 20
)

// HealthSummary es la ventana rodante que sirve GET /health/summary.
type HealthSummary struct {
	WindowSeconds int     `json:"windowSeconds"`
	Requests      int     `json:"requests"`
	ErrorRate     float64 `json:"errorRate"`
	P95LatencyMs  float64 `json:"p95LatencyMs"`
}

// Thresholds son los umbrales de salud para un nivel de riesgo.
type Thresholds struct {
	MaxErrorRate    float64
	MaxP95LatencyMs float64
}

// DefaultThresholds por nivel de riesgo: cuanto más riesgoso el flag, menos
// degradación se tolera antes de matarlo.
var DefaultThresholds = map[string]Thresholds{
	RiskLow:    {MaxErrorRate: 0.05, MaxP95LatencyMs: 2000},
	RiskMedium: {MaxErrorRate: 0.02, MaxP95LatencyMs: 1000},
	RiskHigh:   {MaxErrorRate: 0.01, MaxP95LatencyMs: 500},
}

// MonitorOptions configura el Monitor. Solo HealthURL es obligatorio.
type MonitorOptions struct {
	// HealthURL es el endpoint de health summary (GET).
	HealthURL string

	Interval time.Duration
	Timeout  time.Duration

	// Cooldown mínimo entre dos kills del mismo flag, para no flapear.
	Cooldown time.Duration

	// MinRequests: con menos muestras que esto en la ventana no se decide.
	MinRequests int

	// Thresholds por nivel de riesgo; nil usa DefaultThresholds. Un riesgo
	// desconocido se trata como medium.
	Thresholds map[string]Thresholds

	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Monitor vigila la salud del backend y baja localmente los flags cuyo nivel
// de riesgo no tolera la degradación observada. Corre fuera del request path.
type Monitor struct {
	svc    *Service
	opts   MonitorOptions
	client *http.Client
	log    *zap.Logger

	mu       sync.Mutex
	lastKill map[string]time.Time

	stop      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewMonitor construye el monitor y arranca su loop.
func NewMonitor(svc *Service, opts MonitorOptions) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = DefaultMonitorInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultMonitorTimeout
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}
	if opts.MinRequests <= 0 {
		opts.MinRequests = DefaultMinRequests
	}
	if opts.Thresholds == nil {
		opts.Thresholds = DefaultThresholds
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	m := &Monitor{
		svc:      svc,
		opts:     opts,
		client:   opts.HTTPClient,
		log:      opts.Logger,
		lastKill: make(map[string]time.Time),
		stop:     make(chan struct{}),
	}

	if opts.HealthURL != "" {
		m.wg.Add(1)
		go m.loop()
	}
	return m
}

func (m *Monitor) loop() {
	defer m.wg.Done()

	t := time.NewTicker(m.opts.Interval)
	defer t.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-t.C:
			if err := m.Check(context.Background()); err != nil {
				m.log.Warn("flags monitor: health check failed", zap.Error(err))
			}
		}
	}
}

// Check trae el health summary y aplica los umbrales una vez. Exportado para
// tests y para forzar una evaluación desde la CLI.
func (m *Monitor) Check(ctx context.Context) error {
	summary, err := m.fetchSummary(ctx)
	if err != nil {
		// Sin datos no se mata nada: un health endpoint caído no implica que
		// los flags estén rotos.
		return err
	}
	if summary.Requests < m.opts.MinRequests {
		return nil
	}

	now := time.Now()
	for _, f := range m.svc.Known() {
		th := m.thresholdsFor(f.RiskLevel)
		if summary.ErrorRate <= th.MaxErrorRate && summary.P95LatencyMs <= th.MaxP95LatencyMs {
			continue
		}
		if m.svc.Killed(f.Name) {
			continue
		}

		m.mu.Lock()
		last, seen := m.lastKill[f.Name]
		if seen && now.Sub(last) < m.opts.Cooldown {
			m.mu.Unlock()
			continue
		}
		m.lastKill[f.Name] = now
		m.mu.Unlock()

		m.log.Warn("flags monitor: health thresholds breached, killing flag",
			zap.String("flag", f.Name),
			zap.String("risk_level", f.RiskLevel),
			zap.Float64("error_rate", summary.ErrorRate),
			zap.Float64("p95_latency_ms", summary.P95LatencyMs))
		m.svc.Kill(f.Name)
	}
	return nil
}

func (m *Monitor) thresholdsFor(risk string) Thresholds {
	if th, ok := m.opts.Thresholds[risk]; ok {
		return th
	}
	return m.opts.Thresholds[RiskMedium]
}

func (m *Monitor) fetchSummary(ctx context.Context) (*HealthSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, m.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.opts.HealthURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("flags monitor: health status %d", resp.StatusCode)
	}

	var s HealthSummary
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Close detiene el loop del monitor. Idempotente.
func (m *Monitor) Close() {
	m.closeOnce.Do(func() { close(m.stop) })
	m.wg.Wait()
}
