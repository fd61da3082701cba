package http

import (
	"encoding/json"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	// Métricas de dominio
	loginsTotal            *prometheus.CounterVec
	tokenReuseTotal        prometheus.Counter
	idempotencyReplayTotal *prometheus.CounterVec
)

// MetricsConfig agrupa dependencias necesarias para exponer /metrics.
type MetricsConfig struct {
	Registry prometheus.Registerer
	Pool     func() *pgxpool.Pool
}

// RegisterMetrics inicializa las métricas HTTP y registra un collector para el
// pool de Postgres. Devuelve el handler para /metrics.
func RegisterMetrics(cfg MetricsConfig) (http.Handler, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método y ruta",
		}, []string{"method", "path"})

		loginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Intentos de login por resultado",
		}, []string{"result"}) // result: ok|failed

		tokenReuseTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_token_reuse_detected_total",
			Help: "Refresh tokens reusados detectados (cadenas revocadas)",
		})

		idempotencyReplayTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idempotency_replays_total",
			Help: "Respuestas servidas desde el cache de idempotencia",
		}, []string{"endpoint"})

		for _, c := range []prometheus.Collector{
			httpRequestsTotal, httpRequestDuration, httpInflight,
			loginsTotal, tokenReuseTotal, idempotencyReplayTotal,
		} {
			if err := registerCollector(registry, c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	if metricsErr != nil {
		return nil, metricsErr
	}

	if cfg.Pool != nil {
		if err := registerCollector(registry, newDBPoolCollector(cfg.Pool)); err != nil {
			return nil, err
		}
	}

	// Usamos el gatherer global por compatibilidad, ya que las métricas se registran allí.
	return promhttp.Handler(), nil
}

// WithMetrics instrumenta requests HTTP con métricas Prometheus y alimenta la
// ventana rodante de /health/summary.
func WithMetrics(next http.Handler, window *HealthWindow) http.Handler {
	if next == nil {
		return nil
	}
	if httpRequestsTotal == nil || httpRequestDuration == nil || httpInflight == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.ToUpper(r.Method)
		pathLabel := normalizePath(r.URL.Path)

		httpInflight.WithLabelValues(method, pathLabel).Inc()
		start := time.Now()

		rec := &metricsRecorder{ResponseWriter: w}
		defer func() {
			httpInflight.WithLabelValues(method, pathLabel).Dec()
			duration := time.Since(start)
			httpRequestDuration.WithLabelValues(method, pathLabel).Observe(duration.Seconds())

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			httpRequestsTotal.WithLabelValues(method, pathLabel, strconv.Itoa(status)).Inc()

			if window != nil {
				window.Observe(status, duration)
			}
		}()

		next.ServeHTTP(rec, r)
	})
}

type metricsRecorder struct {
	http.ResponseWriter
	status int
}

func (m *metricsRecorder) WriteHeader(code int) {
	if m.status == 0 {
		m.status = code
	}
	m.ResponseWriter.WriteHeader(code)
}

func (m *metricsRecorder) Write(b []byte) (int, error) {
	if m.status == 0 {
		m.status = http.StatusOK
	}
	return m.ResponseWriter.Write(b)
}

// RecordLogin registra un intento de login.
func RecordLogin(ok bool) {
	if loginsTotal == nil {
		return
	}
	result := "failed"
	if ok {
		result = "ok"
	}
	loginsTotal.WithLabelValues(result).Inc()
}

// RecordTokenReuse registra una detección de reuso de refresh token.
func RecordTokenReuse() {
	if tokenReuseTotal != nil {
		tokenReuseTotal.Inc()
	}
}

// RecordIdempotencyReplay registra un replay del cache de idempotencia.
func RecordIdempotencyReplay(endpoint string) {
	if idempotencyReplayTotal != nil {
		idempotencyReplayTotal.WithLabelValues(endpoint).Inc()
	}
}

// registerCollector registra el collector en el registry indicado, ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// dbPoolCollector expone gauges para el pool de Postgres.
type dbPoolCollector struct {
	pool func() *pgxpool.Pool

	acquiredDesc *prometheus.Desc
	idleDesc     *prometheus.Desc
	totalDesc    *prometheus.Desc
}

func newDBPoolCollector(pool func() *pgxpool.Pool) *dbPoolCollector {
	return &dbPoolCollector{
		pool:         pool,
		acquiredDesc: prometheus.NewDesc("pg_pool_acquired", "Conexiones adquiridas", nil, nil),
		idleDesc:     prometheus.NewDesc("pg_pool_idle", "Conexiones inactivas", nil, nil),
		totalDesc:    prometheus.NewDesc("pg_pool_total", "Conexiones totales", nil, nil),
	}
}

func (c *dbPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredDesc
	ch <- c.idleDesc
	ch <- c.totalDesc
}

func (c *dbPoolCollector) Collect(ch chan<- prometheus.Metric) {
	if c.pool == nil {
		return
	}
	pool := c.pool()
	if pool == nil {
		return
	}
	if stat := pool.Stat(); stat != nil {
		ch <- prometheus.MustNewConstMetric(c.acquiredDesc, prometheus.GaugeValue, float64(stat.AcquiredConns()))
		ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(stat.IdleConns()))
		ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(stat.TotalConns()))
	}
}

var (
	uuidSegmentRE  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F-]{4}-[0-9a-fA-F-]{4,}$`)
	hexSegmentRE   = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
	tokenSegmentRE = regexp.MustCompile(`^[A-Za-z0-9_-]{24,}$`)
)

// normalizePath reemplaza segmentos dinámicos (ids, tokens) por :param para
// mantener acotada la cardinalidad de los labels.
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	clean := strings.SplitN(p, "?", 2)[0]
	if clean == "" {
		return "/"
	}
	if !strings.HasPrefix(clean, "/") {
		clean = "/" + clean
	}

	segments := strings.Split(clean, "/")
	var out []string
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 {
		return true
	}
	if uuidSegmentRE.MatchString(seg) {
		return true
	}
	if hexSegmentRE.MatchString(seg) {
		return true
	}
	if tokenSegmentRE.MatchString(seg) {
		return true
	}
	if _, err := strconv.Atoi(seg); err == nil {
		return true
	}
	return false
}

// =================================================================================
// HEALTH WINDOW (alimenta GET /health/summary, lo consume el monitor del SDK)
// =================================================================================

type healthSample struct {
	at      time.Time
	status  int
	latency time.Duration
}

// HealthWindow mantiene una ventana rodante de requests para calcular tasa de
// error y p95 de latencia recientes.
type HealthWindow struct {
	mu      sync.Mutex
	span    time.Duration
	samples []healthSample
}

func NewHealthWindow(span time.Duration) *HealthWindow {
	if span <= 0 {
		span = time.Minute
	}
	return &HealthWindow{span: span}
}

// Observe agrega una muestra y descarta las vencidas.
func (h *HealthWindow) Observe(status int, latency time.Duration) {
	now := time.Now()
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples = append(h.samples, healthSample{at: now, status: status, latency: latency})
	h.trimLocked(now)
}

func (h *HealthWindow) trimLocked(now time.Time) {
	cutoff := now.Add(-h.span)
	i := 0
	for ; i < len(h.samples); i++ {
		if h.samples[i].at.After(cutoff) {
			break
		}
	}
	if i > 0 {
		h.samples = append(h.samples[:0], h.samples[i:]...)
	}
}

type healthSummaryResponse struct {
	WindowSeconds int     `json:"windowSeconds"`
	Requests      int     `json:"requests"`
	ErrorRate     float64 `json:"errorRate"`
	P95LatencyMs  float64 `json:"p95LatencyMs"`
}

// Summary calcula la foto actual de la ventana.
func (h *HealthWindow) Summary() (windowSeconds, requests int, errorRate, p95ms float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.trimLocked(time.Now())

	windowSeconds = int(h.span.Seconds())
	requests = len(h.samples)
	if requests == 0 {
		return windowSeconds, 0, 0, 0
	}

	errs := 0
	lat := make([]time.Duration, 0, requests)
	for _, s := range h.samples {
		if s.status >= 500 {
			errs++
		}
		lat = append(lat, s.latency)
	}
	sort.Slice(lat, func(i, j int) bool { return lat[i] < lat[j] })

	idx := (95*len(lat) + 99) / 100
	if idx > 0 {
		idx--
	}
	p95 := lat[idx]

	errorRate = float64(errs) / float64(requests)
	p95ms = float64(p95.Microseconds()) / 1000
	return windowSeconds, requests, errorRate, p95ms
}

// HealthSummaryHandler sirve la ventana como JSON para el monitor del SDK.
func HealthSummaryHandler(window *HealthWindow) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		windowSeconds, requests, errorRate, p95 := window.Summary()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(healthSummaryResponse{
			WindowSeconds: windowSeconds,
			Requests:      requests,
			ErrorRate:     errorRate,
			P95LatencyMs:  p95,
		})
	})
}
