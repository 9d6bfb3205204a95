package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/internal/domain/entity"
	"github.com/ricazo/pos-engine/internal/infrastructure/cache"
	"github.com/ricazo/pos-engine/pkg/config"
	"github.com/ricazo/pos-engine/pkg/logger"
)

type countingCatalog struct {
	mu       sync.Mutex
	products map[string]entity.Product
	prices   map[string]decimal.Decimal // unidad/producto -> precio propio
	calls    int
}

func (c *countingCatalog) GetProduct(_ context.Context, unitID, id string) (entity.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	p, ok := c.products[id]
	if !ok {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	if price, ok := c.prices[unitID+"/"+id]; ok {
		return entity.WithUnitPrice(p, price), nil
	}
	return p, nil
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("integración con Redis omitida en modo -short")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	addr, err := container.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)
	client, err := cache.NewRedisClient(ctx, config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCatalogCache_ReadThrough(t *testing.T) {
	client := newRedis(t)
	ctx := context.Background()
	src := &countingCatalog{products: map[string]entity.Product{
		"kit": &entity.ComboProduct{ID: "kit", Name: "Kit Manhã", UnitPrice: decimal.RequireFromString("15.00"), Components: []entity.ComboComponent{
			{ProductID: "coffee", QuantityPerUnit: decimal.NewFromInt(1)},
			{ProductID: "croissant", QuantityPerUnit: decimal.NewFromInt(2)},
		}},
		"queijo": &entity.SimpleProduct{ID: "queijo", Name: "Queijo Minas", PricingMode: entity.PricingModeWeight, UnitPrice: decimal.RequireFromString("59.90")},
	}}
	c := cache.NewCatalogCache(client, src, time.Minute, logger.Nop())

	for i := 0; i < 3; i++ {
		p, err := c.GetProduct(ctx, "u1", "kit")
		require.NoError(t, err)
		combo, ok := p.(*entity.ComboProduct)
		require.True(t, ok, "se esperaba un combo, llegó %T", p)
		require.Len(t, combo.Components, 2)
		assert.True(t, decimal.NewFromInt(2).Equal(combo.Components[1].QuantityPerUnit))
	}
	assert.Equal(t, 1, src.calls)

	p, err := c.GetProduct(ctx, "u1", "queijo")
	require.NoError(t, err)
	assert.Equal(t, entity.PricingModeWeight, p.Pricing())
	assert.True(t, decimal.RequireFromString("59.90").Equal(p.Price()))

	require.NoError(t, c.Invalidate(ctx, "kit"))
	_, err = c.GetProduct(ctx, "u1", "kit")
	require.NoError(t, err)
	assert.Equal(t, 3, src.calls)

	_, err = c.GetProduct(ctx, "u1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogCache_RedisDownFallsBack(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	src := &countingCatalog{products: map[string]entity.Product{
		"pao": &entity.SimpleProduct{ID: "pao", Name: "Pão Francês", PricingMode: entity.PricingModeWeight, UnitPrice: decimal.RequireFromString("16.90")},
	}}
	c := cache.NewCatalogCache(client, src, time.Minute, logger.Nop())

	p, err := c.GetProduct(context.Background(), "u1", "pao")
	require.NoError(t, err)
	assert.Equal(t, "Pão Francês", p.DisplayName())
}

func TestCatalogCache_PricePerUnit(t *testing.T) {
	client := newRedis(t)
	ctx := context.Background()
	src := &countingCatalog{
		products: map[string]entity.Product{
			"pao": &entity.SimpleProduct{ID: "pao", Name: "Pão Francês", PricingMode: entity.PricingModeWeight, UnitPrice: decimal.RequireFromString("16.90")},
		},
		prices: map[string]decimal.Decimal{"praia/pao": decimal.RequireFromString("19.90")},
	}
	c := cache.NewCatalogCache(client, src, time.Minute, logger.Nop())

	for i := 0; i < 2; i++ {
		centro, err := c.GetProduct(ctx, "centro", "pao")
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("16.90").Equal(centro.Price()))
		praia, err := c.GetProduct(ctx, "praia", "pao")
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("19.90").Equal(praia.Price()))
	}
	assert.Equal(t, 2, src.calls)

	require.NoError(t, c.Invalidate(ctx, "pao"))
	_, err := c.GetProduct(ctx, "centro", "pao")
	require.NoError(t, err)
	_, err = c.GetProduct(ctx, "praia", "pao")
	require.NoError(t, err)
	assert.Equal(t, 4, src.calls, "invalidar descarta el producto en todas las unidades")
}
