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
	"golang.org/x/sync/singleflight"
)

// Defaults de la configuración del servicio.
const (
	DefaultRefreshInterval = 60 * time.Second
	DefaultFetchTimeout    = 5 * time.Second
	DefaultMaxAttempts     = 3
	DefaultStaleFor        = time.Hour
)

// Options configura el Service. Solo BaseURL es obligatorio.
type Options struct {
	// BaseURL del servidor de flags; el servicio consulta {BaseURL}/flags.
	BaseURL string

	RefreshInterval time.Duration
	FetchTimeout    time.Duration
	MaxAttempts     int

	// StaleFor acota cuánto tiempo sirve el último snapshot bueno cuando los
	// fetches fallan. Pasado ese margen se cae a Defaults.
	StaleFor time.Duration

	// Defaults es el set compilado en el cliente: el último escalón del
	// fallback y la fuente mientras no hubo ningún fetch exitoso.
	Defaults []Flag

	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Service evalúa flags contra el último snapshot conocido. Todas las
// operaciones son seguras para uso concurrente; IsEnabled nunca devuelve
// error ni entra en panic: degrada a defaults.
type Service struct {
	opts   Options
	client *http.Client
	log    *zap.Logger

	mu        sync.RWMutex
	snapshot  map[string]Flag
	fetchedAt time.Time
	kills     map[string]bool // overrides locales, ganan a todo

	sf        singleflight.Group
	stop      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewService construye el servicio y arranca el loop de refresh. El primer
// fetch ocurre en background: hasta que complete se sirven los Defaults.
func NewService(opts Options) *Service {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.StaleFor <= 0 {
		opts.StaleFor = DefaultStaleFor
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Service{
		opts:   opts,
		client: opts.HTTPClient,
		log:    opts.Logger,
		kills:  make(map[string]bool),
		stop:   make(chan struct{}),
	}

	if opts.BaseURL != "" {
		s.wg.Add(1)
		go s.refreshLoop()
	}
	return s
}

func (s *Service) refreshLoop() {
	defer s.wg.Done()

	if err := s.Refresh(context.Background()); err != nil {
		s.log.Warn("flags: initial fetch failed", zap.Error(err))
	}

	t := time.NewTicker(s.opts.RefreshInterval)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			if err := s.Refresh(context.Background()); err != nil {
				s.log.Warn("flags: refresh failed", zap.Error(err))
			}
		}
	}
}

// Refresh trae la configuración remota. Refreshes concurrentes se deduplican
// via singleflight; dentro de un refresh se reintenta con backoff exponencial
// hasta MaxAttempts.
func (s *Service) Refresh(ctx context.Context) error {
	_, err, _ := s.sf.Do("refresh", func() (any, error) {
		var lastErr error
		for attempt := 0; attempt < s.opts.MaxAttempts; attempt++ {
			if attempt > 0 {
				backoff := time.Duration(1<<uint(attempt-1)) * 250 * time.Millisecond
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-s.stop:
					return nil, fmt.Errorf("flags: service closed")
				case <-time.After(backoff):
				}
			}
			fetched, err := s.fetch(ctx)
			if err != nil {
				lastErr = err
				continue
			}
			s.mu.Lock()
			s.snapshot = fetched
			s.fetchedAt = time.Now()
			s.mu.Unlock()
			return nil, nil
		}
		return nil, lastErr
	})
	return err
}

func (s *Service) fetch(ctx context.Context) (map[string]Flag, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.BaseURL+"/flags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("flags: fetch status %d", resp.StatusCode)
	}

	var payload struct {
		Flags []Flag `json:"flags"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	out := make(map[string]Flag, len(payload.Flags))
	for _, f := range payload.Flags {
		out[f.Name] = f
	}
	return out, nil
}

// IsEnabled decide si el flag está activo para el usuario. Nunca devuelve
// error: la escalera es fetch fresco → snapshot stale (≤ StaleFor) →
// Defaults compilados. Un kill local gana sobre cualquier configuración.
func (s *Service) IsEnabled(flagName, userID string) bool {
	s.mu.RLock()
	killed := s.kills[flagName]
	f, ok := s.lookupLocked(flagName)
	s.mu.RUnlock()

	if killed || !ok {
		return false
	}
	return Evaluate(f, userID)
}

// lookupLocked busca el flag aplicando la escalera de fallbacks.
// Se llama con s.mu tomado (read).
func (s *Service) lookupLocked(name string) (Flag, bool) {
	if s.snapshot != nil && time.Since(s.fetchedAt) <= s.opts.StaleFor {
		f, ok := s.snapshot[name]
		return f, ok
	}
	for _, f := range s.opts.Defaults {
		if f.Name == name {
			return f, true
		}
	}
	return Flag{}, false
}

// Known devuelve los flags del set vigente (snapshot o defaults). La usa el
// monitor para saber qué flags vigilar.
func (s *Service) Known() []Flag {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot != nil && time.Since(s.fetchedAt) <= s.opts.StaleFor {
		out := make([]Flag, 0, len(s.snapshot))
		for _, f := range s.snapshot {
			out = append(out, f)
		}
		return out
	}
	out := make([]Flag, len(s.opts.Defaults))
	copy(out, s.opts.Defaults)
	return out
}

// Kill activa el kill switch local del flag: gana sobre cualquier
// configuración fetcheada hasta Revive o el reinicio del proceso.
func (s *Service) Kill(flagName string) {
	s.mu.Lock()
	s.kills[flagName] = true
	s.mu.Unlock()
	s.log.Warn("flags: local kill switch activated", zap.String("flag", flagName))
}

// Revive apaga el kill switch local del flag.
func (s *Service) Revive(flagName string) {
	s.mu.Lock()
	delete(s.kills, flagName)
	s.mu.Unlock()
	s.log.Info("flags: local kill switch cleared", zap.String("flag", flagName))
}

// Killed reporta si el flag tiene el kill local activo.
func (s *Service) Killed(flagName string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kills[flagName]
}

// Close detiene el loop de refresh. Idempotente.
func (s *Service) Close() {
	s.closeOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
}
