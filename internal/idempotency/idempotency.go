// Package idempotency implementa el motor de requests idempotentes: reserva
// atómica por clave, ejecución única del handler y replay de la respuesta
// persistida dentro del TTL.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dropDatabas3/shepherd/internal/cache"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	httperrors "github.com/dropDatabas3/shepherd/internal/http/errors"
	"github.com/dropDatabas3/shepherd/internal/observability/logger"
)

// DefaultTTL es la ventana dentro de la cual un clientRequestId repetido
// devuelve la respuesta guardada en lugar de re-ejecutar.
const DefaultTTL = 24 * time.Hour

// Handler es la operación a proteger. Devuelve el status HTTP y el body ya
// serializado; err se reserva para fallas de infraestructura (las respuestas
// 4xx de dominio van en status/body y también se persisten).
type Handler func(ctx context.Context) (status int, body []byte, err error)

// Result es la salida de Do. Replayed=true cuando la respuesta salió del
// cache de idempotencia sin ejecutar el handler.
type Result struct {
	Status   int
	Body     []byte
	Replayed bool
}

// Engine coordina la reserva en Postgres (autoritativa) con un fast-path
// opcional en el cache client.
type Engine struct {
	Repo  repository.IdempotencyRepository
	Cache cache.Client // nil = sin fast-path
	TTL   time.Duration
}

func New(repo repository.IdempotencyRepository, c cache.Client, ttl time.Duration) *Engine {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Engine{Repo: repo, Cache: c, TTL: ttl}
}

// Key deriva la clave de idempotencia. Incluye principal y endpoint para que
// el mismo clientRequestId de dos usuarios o dos endpoints nunca colisione.
func Key(principalID, endpoint, clientRequestID string) string {
	h := sha256.New()
	h.Write([]byte(principalID))
	h.Write([]byte{0})
	h.Write([]byte(endpoint))
	h.Write([]byte{0})
	h.Write([]byte(clientRequestID))
	return hex.EncodeToString(h.Sum(nil))
}

// cachedResponse viaja por el cache client como JSON; el body va en base64
// (encoding default de []byte) para tolerar bodies vacíos o no-JSON.
type cachedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// Do ejecuta el handler a lo sumo una vez por clave dentro del TTL.
//
// Primer request: reserva, ejecuta, persiste status+body (también los 4xx de
// dominio) y responde en vivo. Repetido dentro del TTL: replay del resultado
// guardado, sin tocar el handler. Duplicado concurrente mientras el primero
// sigue en vuelo: ErrDuplicateRequest (409). Una falla de infraestructura del
// handler libera la reserva para que el retry ejecute de nuevo.
func (e *Engine) Do(ctx context.Context, p domain.Principal, endpoint, clientRequestID string, h Handler) (Result, error) {
	key := Key(p.UserID, endpoint, clientRequestID)

	if res, ok := e.cacheGet(ctx, key); ok {
		return res, nil
	}

	rec, reserved, err := e.Repo.Reserve(ctx, key, p.UserID, endpoint, e.TTL)
	if err != nil {
		return Result{}, err
	}
	if !reserved {
		if !rec.Completed() {
			// El primer request sigue en vuelo; el handler no se ejecuta dos
			// veces bajo ningún escenario.
			return Result{}, httperrors.ErrDuplicateRequest
		}
		res := Result{Status: rec.StatusCode, Body: rec.ResponseBody, Replayed: true}
		e.cacheSet(ctx, key, res, rec.ExpiresAt)
		return res, nil
	}

	status, body, err := e.run(ctx, h)
	if err != nil {
		// Infra: liberar para que el retry pueda ejecutar fresco.
		if relErr := e.Repo.Release(ctx, key); relErr != nil {
			logger.From(ctx).Warn("idempotency release failed",
				logger.Key(key), logger.Err(relErr))
		}
		return Result{}, err
	}

	if err := e.Repo.Complete(ctx, key, status, body); err != nil {
		// La respuesta en vivo sigue siendo válida; el replay de un retry
		// posterior verá la reserva incompleta y recibirá 409 hasta el sweep.
		logger.From(ctx).Warn("idempotency complete failed",
			logger.Key(key), logger.Err(err))
	}

	res := Result{Status: status, Body: body}
	e.cacheSet(ctx, key, res, rec.ExpiresAt)
	return res, nil
}

// run aísla el pánico del handler: se trata como falla de infraestructura.
func (e *Engine) run(ctx context.Context, h Handler) (status int, body []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("idempotency: handler panic: %v", r)
		}
	}()
	return h(ctx)
}

func (e *Engine) cacheGet(ctx context.Context, key string) (Result, bool) {
	if e.Cache == nil {
		return Result{}, false
	}
	raw, err := e.Cache.Get(ctx, "idem:"+key)
	if err != nil {
		if !cache.IsNotFound(err) {
			logger.From(ctx).Warn("idempotency cache get failed", logger.Err(err))
		}
		return Result{}, false
	}
	var c cachedResponse
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Result{}, false
	}
	return Result{Status: c.Status, Body: c.Body, Replayed: true}, true
}

// cacheSet guarda el fast-path acotado al expires_at de la fila de Postgres:
// la entrada del cache nunca sobrevive a la reserva autoritativa.
func (e *Engine) cacheSet(ctx context.Context, key string, res Result, expiresAt time.Time) {
	if e.Cache == nil {
		return
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	raw, err := json.Marshal(cachedResponse{Status: res.Status, Body: res.Body})
	if err != nil {
		return
	}
	if err := e.Cache.Set(ctx, "idem:"+key, string(raw), ttl); err != nil {
		logger.From(ctx).Warn("idempotency cache set failed", logger.Err(err))
	}
}
