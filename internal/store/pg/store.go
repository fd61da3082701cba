// Package pg implementa los repositorios de domain/repository sobre un
// Postgres compartido con tenancy por fila. Todas las lecturas con scope
// componen el predicado del authz.Scope via AND; el store nunca decide
// alcance por su cuenta.
package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

type Store struct{ pool *pgxpool.Pool }

// Config tunea el pool. Cero = default de pgxpool.
type Config struct {
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
}

func New(ctx context.Context, dsn string, cfg Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	// Arranque no bloqueante: si la DB está caída igual levantamos y /readyz
	// reporta el estado real.
	if err := pool.Ping(ctx); err != nil {
		logger.L().Warn("pg pool startup ping failed", logger.Err(err))
	} else {
		logger.L().Info("pg pool ready", logger.Int("max_conns", int(pcfg.MaxConns)))
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Pool expone el pool interno (metrics, migraciones, seed).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

// PoolStats devuelve un snapshot del estado del pool.
func (s *Store) PoolStats() *pgxpool.Stat {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Stat()
}

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Accessors de repositorios. Todos comparten el pool.

func (s *Store) Users() repository.UserRepository               { return &userRepo{pool: s.pool} }
func (s *Store) Tenants() repository.TenantRepository           { return &tenantRepo{pool: s.pool} }
func (s *Store) Tokens() repository.TokenRepository             { return &tokenRepo{pool: s.pool} }
func (s *Store) Idempotency() repository.IdempotencyRepository  { return &idempotencyRepo{pool: s.pool} }
func (s *Store) Attendance() repository.AttendanceRepository    { return &attendanceRepo{pool: s.pool} }
func (s *Store) Events() repository.EventRepository             { return &eventRepo{pool: s.pool} }
func (s *Store) Groups() repository.GroupRepository             { return &groupRepo{pool: s.pool} }
func (s *Store) Pathways() repository.PathwayRepository         { return &pathwayRepo{pool: s.pool} }
func (s *Store) FirstTimers() repository.FirstTimerRepository   { return &firstTimerRepo{pool: s.pool} }
func (s *Store) Announcements() repository.AnnouncementRepository {
	return &announcementRepo{pool: s.pool}
}
func (s *Store) Flags() repository.FlagRepository { return &flagRepo{pool: s.pool} }

// ---- helpers compartidos ----

// isUniqueViolation reporta si el error es un unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// mapNoRows traduce pgx.ErrNoRows a repository.ErrNotFound.
func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}
