// Package cache implementa el catálogo de productos con caché read-through en Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/lot-ledger/internal/domain"
	"github.com/jhoicas/lot-ledger/internal/domain/entity"
	"github.com/jhoicas/lot-ledger/internal/domain/repository"
	"github.com/jhoicas/lot-ledger/pkg/config"
	"github.com/jhoicas/lot-ledger/pkg/logger"
)

const productKeyPrefix = "lot-ledger:product:"

// DefaultTTL vigencia de una entrada cuando la configuración no define una.
const DefaultTTL = 5 * time.Minute

// NewRedisClient construye el cliente Redis desde la configuración.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// ProductCatalog implementa ledger.ProductCatalog sobre el repositorio de productos.
// Con rdb nil funciona sin caché. Si Redis falla se lee directo del repositorio.
type ProductCatalog struct {
	repo repository.ProductRepository
	rdb  *redis.Client
	ttl  time.Duration
	log  *logger.Logger
}

// NewProductCatalog construye el catálogo.
func NewProductCatalog(repo repository.ProductRepository, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *ProductCatalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ProductCatalog{repo: repo, rdb: rdb, ttl: ttl, log: log.Named("product_cache")}
}

func productKey(id string) string { return productKeyPrefix + id }

// GetProduct devuelve el producto o domain.ErrProductNotFound.
// Los errores del repositorio se reportan como domain.ErrUpstreamUnavailable.
func (c *ProductCatalog) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	if c.rdb != nil {
		val, err := c.rdb.Get(ctx, productKey(id)).Bytes()
		switch {
		case err == nil:
			var p entity.Product
			if jerr := json.Unmarshal(val, &p); jerr == nil {
				return &p, nil
			}
			c.log.Warn().Str("product_id", id).Msg("entrada de caché corrupta, se descarta")
		case !errors.Is(err, redis.Nil):
			c.log.Warn().Err(err).Str("product_id", id).Msg("redis no disponible, lectura directa")
		}
	}

	p, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("catálogo: %v: %w", err, domain.ErrUpstreamUnavailable)
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}

	if c.rdb != nil {
		if data, jerr := json.Marshal(p); jerr == nil {
			if serr := c.rdb.Set(ctx, productKey(id), data, c.ttl).Err(); serr != nil {
				c.log.Debug().Err(serr).Str("product_id", id).Msg("no se pudo poblar la caché")
			}
		}
	}
	return p, nil
}

// Invalidate elimina la entrada del producto tras una actualización.
func (c *ProductCatalog) Invalidate(ctx context.Context, id string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, productKey(id)).Err(); err != nil {
		c.log.Warn().Err(err).Str("product_id", id).Msg("no se pudo invalidar la caché del producto")
	}
}
