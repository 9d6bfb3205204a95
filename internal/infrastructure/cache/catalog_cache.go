package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/domain/repository"
	"github.com/ricazo/pos-engine/pkg/config"
	"github.com/ricazo/pos-engine/pkg/logger"
)

const keyPrefix = "pos:catalog:product:"

// productKey una entrada por producto y unidad: el precio puede variar por unidad.
func productKey(unitID, id string) string {
	return keyPrefix + id + ":" + unitID
}

var _ repository.CatalogSnapshot = (*CatalogCache)(nil)

// CatalogCache decorador read-through de CatalogSnapshot sobre Redis.
// Un fallo de Redis nunca bloquea una venta: se registra y se lee del origen.
type CatalogCache struct {
	client *redis.Client
	next   repository.CatalogSnapshot
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisClient crea el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a Redis: %w", err)
	}
	return client, nil
}

// NewCatalogCache envuelve next. El llamador conserva la propiedad del cliente.
func NewCatalogCache(client *redis.Client, next repository.CatalogSnapshot, ttl time.Duration, log *logger.Logger) *CatalogCache {
	return &CatalogCache{client: client, next: next, ttl: ttl, log: log.Component("catalog_cache")}
}

func (c *CatalogCache) GetProduct(ctx context.Context, unitID, id string) (entity.Product, error) {
	key := productKey(unitID, id)
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		p, decErr := decodeProduct(data)
		if decErr == nil {
			return p, nil
		}
		c.log.Warn().Err(decErr).Str("product_id", id).Str("unit_id", unitID).Msg("entrada de caché corrupta")
		_ = c.client.Del(ctx, key).Err()
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("product_id", id).Msg("caché de catálogo no disponible")
	}

	p, err := c.next.GetProduct(ctx, unitID, id)
	if err != nil {
		return nil, err
	}
	payload, err := encodeProduct(p)
	if err != nil {
		return p, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("product_id", id).Msg("no se pudo guardar en caché")
	}
	return p, nil
}

// Invalidate descarta las entradas de los productos en todas las unidades
// (cambio de precio o de composición del combo).
func (c *CatalogCache) Invalidate(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		iter := c.client.Scan(ctx, 0, keyPrefix+id+":*", 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("invalidar producto %s: %w", id, err)
		}
		if len(keys) == 0 {
			continue
		}
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("invalidar producto %s: %w", id, err)
		}
	}
	return nil
}

type cachedComponent struct {
	ProductID       string          `json:"product_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

type cachedProduct struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	PricingMode string            `json:"pricing_mode"`
	UnitPrice   decimal.Decimal   `json:"unit_price"`
	Combo       bool              `json:"combo"`
	Components  []cachedComponent `json:"components,omitempty"`
}

func encodeProduct(p entity.Product) ([]byte, error) {
	cp := cachedProduct{ID: p.ProductID(), Name: p.DisplayName(), PricingMode: p.Pricing(), UnitPrice: p.Price()}
	if combo, ok := p.(*entity.ComboProduct); ok {
		cp.Combo = true
		for _, comp := range combo.Components {
			cp.Components = append(cp.Components, cachedComponent{ProductID: comp.ProductID, QuantityPerUnit: comp.QuantityPerUnit})
		}
	}
	return json.Marshal(cp)
}

func decodeProduct(data []byte) (entity.Product, error) {
	var cp cachedProduct
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, err
	}
	if cp.ID == "" {
		return nil, errors.New("producto sin id")
	}
	if !cp.Combo {
		return &entity.SimpleProduct{ID: cp.ID, Name: cp.Name, PricingMode: cp.PricingMode, UnitPrice: cp.UnitPrice}, nil
	}
	combo := &entity.ComboProduct{ID: cp.ID, Name: cp.Name, UnitPrice: cp.UnitPrice}
	for _, comp := range cp.Components {
		combo.Components = append(combo.Components, entity.ComboComponent{ProductID: comp.ProductID, QuantityPerUnit: comp.QuantityPerUnit})
	}
	return combo, nil
}
