// Package app arma el contenedor del servicio: config, store, cache,
// limiters, servicios, controllers, router y el janitor de fondo. Todo el
// cableado vive acá para que main quede en dos llamadas.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"github.com/dropDatabas3/shepherd/internal/bootstrap"
	"github.com/dropDatabas3/shepherd/internal/cache"
	"github.com/dropDatabas3/shepherd/internal/config"
	"github.com/dropDatabas3/shepherd/internal/email"
	httpx "github.com/dropDatabas3/shepherd/internal/http"
	adminctl "github.com/dropDatabas3/shepherd/internal/http/controllers/admin"
	announcementsctl "github.com/dropDatabas3/shepherd/internal/http/controllers/announcements"
	attendancectl "github.com/dropDatabas3/shepherd/internal/http/controllers/attendance"
	authctl "github.com/dropDatabas3/shepherd/internal/http/controllers/auth"
	directoryctl "github.com/dropDatabas3/shepherd/internal/http/controllers/directory"
	eventsctl "github.com/dropDatabas3/shepherd/internal/http/controllers/events"
	firsttimersctl "github.com/dropDatabas3/shepherd/internal/http/controllers/firsttimers"
	flagsctl "github.com/dropDatabas3/shepherd/internal/http/controllers/flags"
	groupsctl "github.com/dropDatabas3/shepherd/internal/http/controllers/groups"
	pathwaysctl "github.com/dropDatabas3/shepherd/internal/http/controllers/pathways"
	"github.com/dropDatabas3/shepherd/internal/http/router"
	adminsvc "github.com/dropDatabas3/shepherd/internal/http/services/admin"
	announcementssvc "github.com/dropDatabas3/shepherd/internal/http/services/announcements"
	attendancesvc "github.com/dropDatabas3/shepherd/internal/http/services/attendance"
	authsvc "github.com/dropDatabas3/shepherd/internal/http/services/auth"
	directorysvc "github.com/dropDatabas3/shepherd/internal/http/services/directory"
	eventssvc "github.com/dropDatabas3/shepherd/internal/http/services/events"
	firsttimerssvc "github.com/dropDatabas3/shepherd/internal/http/services/firsttimers"
	groupssvc "github.com/dropDatabas3/shepherd/internal/http/services/groups"
	pathwayssvc "github.com/dropDatabas3/shepherd/internal/http/services/pathways"
	"github.com/dropDatabas3/shepherd/internal/idempotency"
	jwtx "github.com/dropDatabas3/shepherd/internal/jwt"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
	"github.com/dropDatabas3/shepherd/internal/rate"
	"github.com/dropDatabas3/shepherd/internal/store/pg"
)

// App es el contenedor armado y listo para servir.
type App struct {
	Cfg     *config.Config
	Store   *pg.Store
	Cache   cache.Client
	Handler http.Handler

	cron *cron.Cron
}

// New construye el contenedor completo. No arranca nada: Start dispara el
// janitor y el caller arma el server HTTP con Handler.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		ServiceName: "shepherd",
	})

	// Storage.
	pgCfg := pg.Config{
		MaxConns: cfg.Storage.Postgres.MaxConns,
		MinConns: cfg.Storage.Postgres.MinConns,
	}
	if d, err := time.ParseDuration(cfg.Storage.Postgres.ConnMaxLifetime); err == nil {
		pgCfg.ConnMaxLifetime = d
	}
	store, err := pg.New(ctx, cfg.Storage.DSN, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("app: postgres: %w", err)
	}

	// Cache: memory para una instancia, redis cuando hay varias réplicas
	// (los limiters y el fast-path de idempotencia necesitan estado
	// compartido).
	cacheClient, err := cache.New(cache.Config{
		Kind:       cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: cfg.MemoryCacheTTL(),
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("app: cache: %w", err)
	}

	// Rate limiting. Con redis los contadores son compartidos entre
	// réplicas; con memory cada instancia cuenta por su lado.
	var apiLimiter, loginLimiter rate.Limiter
	if cfg.Rate.Enabled {
		if rc := cache.Redis(cacheClient); rc != nil {
			apiLimiter = rate.NewRedisLimiter(rc, "rate:api", cfg.Rate.MaxRequests, cfg.RateWindow())
			loginLimiter = rate.NewRedisLimiter(rc, "rate:login", cfg.Rate.Login.Limit, cfg.LoginWindow())
		} else {
			apiLimiter = rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.RateWindow())
			loginLimiter = rate.NewMemoryLimiter(cfg.Rate.Login.Limit, cfg.LoginWindow())
		}
	}

	issuer := jwtx.NewIssuer(cfg.JWT.Issuer, []byte(cfg.JWT.Secret))
	issuer.AccessTTL = cfg.AccessTTL()

	idem := idempotency.New(store.Idempotency(), cacheClient, cfg.IdempotencyTTL())
	mailer := email.New(email.Config{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromEmail: cfg.SMTP.From,
		TLSMode:   cfg.SMTP.TLS,
	})

	// Servicios.
	authS := authsvc.New(authsvc.Deps{
		Users:      store.Users(),
		Tenants:    store.Tenants(),
		Tokens:     store.Tokens(),
		Issuer:     issuer,
		RefreshTTL: cfg.RefreshTTL(),
	})
	attendanceS := attendancesvc.New(attendancesvc.Deps{
		Attendance: store.Attendance(),
		Users:      store.Users(),
	})
	eventsS := eventssvc.New(eventssvc.Deps{Events: store.Events()})
	directoryS := directorysvc.New(directorysvc.Deps{Users: store.Users()})
	groupsS := groupssvc.New(groupssvc.Deps{Groups: store.Groups()})
	pathwaysS := pathwayssvc.New(pathwayssvc.Deps{Pathways: store.Pathways()})
	firstTimersS := firsttimerssvc.New(firsttimerssvc.Deps{
		FirstTimers: store.FirstTimers(),
		Users:       store.Users(),
		Mailer:      mailer,
	})
	announcementsS := announcementssvc.New(announcementssvc.Deps{
		Announcements: store.Announcements(),
		Users:         store.Users(),
		Mailer:        mailer,
	})
	adminS := adminsvc.New(adminsvc.Deps{
		Tenants: store.Tenants(),
		Flags:   store.Flags(),
		Users:   store.Users(),
		Tokens:  store.Tokens(),
	})

	// Métricas y ventana de salud para /health/summary.
	metricsHandler, err := httpx.RegisterMetrics(httpx.MetricsConfig{
		Pool: store.Pool,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("app: metrics: %w", err)
	}
	healthWindow := httpx.NewHealthWindow(time.Minute)

	handler := router.New(router.Deps{
		Controllers: router.Controllers{
			Auth:          authctl.NewControllers(authS),
			Attendance:    attendancectl.NewControllers(attendanceS, idem),
			Events:        eventsctl.NewControllers(eventsS, idem),
			Directory:     directoryctl.NewControllers(directoryS),
			Groups:        groupsctl.NewControllers(groupsS, idem),
			Pathways:      pathwaysctl.NewControllers(pathwaysS, idem),
			FirstTimers:   firsttimersctl.NewControllers(firstTimersS, idem),
			Announcements: announcementsctl.NewControllers(announcementsS),
			Admin:         adminctl.NewControllers(adminS),
			Flags:         flagsctl.NewController(store.Flags()),
		},
		Issuer:         issuer,
		APILimiter:     apiLimiter,
		LoginLimiter:   loginLimiter,
		CORSAllowed:    cfg.Server.CORSAllowedOrigins,
		MetricsHandler: metricsHandler,
		HealthWindow:   healthWindow,
		Ready:          store.Ping,
	})

	return &App{
		Cfg:     cfg,
		Store:   store,
		Cache:   cacheClient,
		Handler: handler,
		cron:    cron.New(),
	}, nil
}

// Bootstrap garantiza el primer SUPER_ADMIN antes de servir tráfico.
func (a *App) Bootstrap(ctx context.Context) error {
	return bootstrap.EnsureSuperAdmin(ctx, bootstrap.AdminConfig{
		Users:          a.Store.Users(),
		AdminEmail:     a.Cfg.Bootstrap.AdminEmail,
		AdminPassword:  a.Cfg.Bootstrap.AdminPassword,
		NonInteractive: a.Cfg.IsProd(),
	})
}

// Start dispara las tareas de fondo: el barrido de claves de idempotencia
// vencidas y la purga de refresh tokens viejos.
func (a *App) Start() error {
	_, err := a.cron.AddFunc(a.Cfg.Idempotency.SweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		n, err := a.Store.Idempotency().DeleteExpired(ctx)
		if err != nil {
			logger.L().Error("idempotency sweep failed", logger.Err(err))
			return
		}
		if n > 0 {
			logger.L().Info("idempotency sweep", logger.Count(n))
		}

		// Tokens vencidos hace más de 30 días: ya no sirven ni para
		// detectar reuse, solo ocupan espacio.
		purged, err := a.Store.Tokens().PurgeExpired(ctx, 30*24*time.Hour)
		if err != nil {
			logger.L().Error("token purge failed", logger.Err(err))
			return
		}
		if purged > 0 {
			logger.L().Info("refresh token purge", logger.Count(purged))
		}
	})
	if err != nil {
		return fmt.Errorf("app: janitor schedule %q: %w", a.Cfg.Idempotency.SweepSchedule, err)
	}
	a.cron.Start()
	return nil
}

// Close libera todo en orden inverso al armado.
func (a *App) Close() {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	if a.Store != nil {
		a.Store.Close()
	}
}

// Pool expone el pool de Postgres (health checks, tooling).
func (a *App) Pool() *pgxpool.Pool { return a.Store.Pool() }
