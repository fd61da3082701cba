// Package config carga la configuración del servicio: YAML + overrides por
// variables de entorno + defaults sanos. Los secretos (JWT, DSN, SMTP) se
// esperan por env; el YAML queda para lo que puede vivir en el repo.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		ShutdownTimeout    string   `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int    `yaml:"max_conns"`
			MinConns        int    `yaml:"min_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		Issuer     string `yaml:"issuer"`
		Secret     string `yaml:"-"` // env-only: JWT_SECRET
		AccessTTL  string `yaml:"access_ttl"`
		RefreshTTL string `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	Rate struct {
		Enabled     bool   `yaml:"enabled"`
		Window      string `yaml:"window"`       // ventana global por IP
		MaxRequests int    `yaml:"max_requests"` // default 120/min
		Login       struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`

	Idempotency struct {
		TTL           string `yaml:"ttl"`            // default 24h
		SweepSchedule string `yaml:"sweep_schedule"` // cron, default hourly
	} `yaml:"idempotency"`

	Flags struct {
		// Intervalo con el que el SDK móvil refresca /flags; acá solo se
		// usa para el Cache-Control del endpoint.
		RefreshInterval string `yaml:"refresh_interval"`
	} `yaml:"flags"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"` // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	} `yaml:"smtp"`

	Bootstrap struct {
		AdminEmail    string `yaml:"-"` // env-only: BOOTSTRAP_ADMIN_EMAIL
		AdminPassword string `yaml:"-"` // env-only: BOOTSTRAP_ADMIN_PASSWORD
	} `yaml:"-"`
}

// MinJWTSecretLen es el largo mínimo del secreto HS256. Tokens firmados con
// un secreto corto se fuerzan bruta offline; 64 chars es el piso del contrato.
const MinJWTSecretLen = 64

func Load(path string) (*Config, error) {
	var c Config

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	c.applyDefaults()
	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "shepherd:"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "shepherd"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "15m"
	}
	if c.JWT.RefreshTTL == "" {
		c.JWT.RefreshTTL = "720h" // 30d
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 120
	}
	// Login: 3 intentos por hora por (IP, email). Contrato del API móvil.
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 3
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1h"
	}
	if c.Idempotency.TTL == "" {
		c.Idempotency.TTL = "24h"
	}
	if c.Idempotency.SweepSchedule == "" {
		c.Idempotency.SweepSchedule = "@hourly"
	}
	if c.Flags.RefreshInterval == "" {
		c.Flags.RefreshInterval = "60s"
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
}

// applyEnvOverrides pisa el YAML con variables de entorno. Los nombres siguen
// el esquema BLOQUE_CAMPO del resto del stack.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}

	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("DATABASE_URL"); ok {
		// alias estándar de plataformas de deploy
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_CONNS"); ok {
		c.Storage.Postgres.MaxConns = v
	}
	if v, ok := getEnvInt("POSTGRES_MIN_CONNS"); ok {
		c.Storage.Postgres.MinConns = v
	}
	if v, ok := getEnvStr("POSTGRES_CONN_MAX_LIFETIME"); ok {
		c.Storage.Postgres.ConnMaxLifetime = v
	}

	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}
	if v, ok := getEnvStr("CACHE_MEMORY_DEFAULT_TTL"); ok {
		c.Cache.Memory.DefaultTTL = v
	}

	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvStr("JWT_SECRET"); ok {
		c.JWT.Secret = v
	}
	if v, ok := getEnvStr("JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}
	if v, ok := getEnvStr("JWT_REFRESH_TTL"); ok {
		c.JWT.RefreshTTL = v
	}

	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}
	if v, ok := getEnvInt("RATE_LOGIN_LIMIT"); ok {
		c.Rate.Login.Limit = v
	}
	if v, ok := getEnvStr("RATE_LOGIN_WINDOW"); ok {
		c.Rate.Login.Window = v
	}

	if v, ok := getEnvStr("IDEMPOTENCY_TTL"); ok {
		c.Idempotency.TTL = v
	}
	if v, ok := getEnvStr("IDEMPOTENCY_SWEEP_SCHEDULE"); ok {
		c.Idempotency.SweepSchedule = v
	}

	if v, ok := getEnvStr("FLAGS_REFRESH_INTERVAL"); ok {
		c.Flags.RefreshInterval = v
	}

	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLS = strings.ToLower(v)
	}
	if v, ok := getEnvBool("SMTP_INSECURE_SKIP_VERIFY"); ok {
		c.SMTP.InsecureSkipVerify = v
	}

	if v, ok := getEnvStr("BOOTSTRAP_ADMIN_EMAIL"); ok {
		c.Bootstrap.AdminEmail = v
	}
	if v, ok := getEnvStr("BOOTSTRAP_ADMIN_PASSWORD"); ok {
		c.Bootstrap.AdminPassword = v
	}
}

// Validate falla rápido con configuración inservible. Se llama una sola vez
// al arrancar: un secreto corto o una duración rota no deben llegar a servir
// tráfico.
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < MinJWTSecretLen {
		return fmt.Errorf("config: JWT_SECRET must be at least %d characters (got %d)", MinJWTSecretLen, len(c.JWT.Secret))
	}
	if c.Storage.DSN == "" {
		return fmt.Errorf("config: storage.dsn (or STORAGE_DSN/DATABASE_URL) is required")
	}
	if c.Cache.Kind != "memory" && c.Cache.Kind != "redis" {
		return fmt.Errorf("config: cache.kind must be memory or redis, got %q", c.Cache.Kind)
	}
	if c.Cache.Kind == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("config: cache.redis.addr is required when cache.kind=redis")
	}

	for name, s := range map[string]string{
		"server.shutdown_timeout":  c.Server.ShutdownTimeout,
		"jwt.access_ttl":           c.JWT.AccessTTL,
		"jwt.refresh_ttl":          c.JWT.RefreshTTL,
		"rate.window":              c.Rate.Window,
		"rate.login.window":        c.Rate.Login.Window,
		"idempotency.ttl":          c.Idempotency.TTL,
		"cache.memory.default_ttl": c.Cache.Memory.DefaultTTL,
		"flags.refresh_interval":   c.Flags.RefreshInterval,
	} {
		if _, err := time.ParseDuration(s); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}
	if c.Storage.Postgres.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime); err != nil {
			return fmt.Errorf("config: storage.postgres.conn_max_lifetime: %w", err)
		}
	}
	return nil
}

// Duraciones ya validadas: los getters no devuelven error.

func (c *Config) AccessTTL() time.Duration      { return mustDur(c.JWT.AccessTTL) }
func (c *Config) RefreshTTL() time.Duration     { return mustDur(c.JWT.RefreshTTL) }
func (c *Config) RateWindow() time.Duration     { return mustDur(c.Rate.Window) }
func (c *Config) LoginWindow() time.Duration    { return mustDur(c.Rate.Login.Window) }
func (c *Config) IdempotencyTTL() time.Duration { return mustDur(c.Idempotency.TTL) }
func (c *Config) ShutdownTimeout() time.Duration {
	return mustDur(c.Server.ShutdownTimeout)
}
func (c *Config) MemoryCacheTTL() time.Duration { return mustDur(c.Cache.Memory.DefaultTTL) }
func (c *Config) FlagsRefreshInterval() time.Duration {
	return mustDur(c.Flags.RefreshInterval)
}

func (c *Config) IsProd() bool { return strings.EqualFold(c.App.Env, "prod") }

func mustDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic("config: unvalidated duration " + s)
	}
	return d
}

// ---- helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		if strings.TrimSpace(s) == "" {
			return []string{}, true
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}
