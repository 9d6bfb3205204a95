package main

import (
	"context"
	"fmt"

	"github.com/ricazo/pos-engine/internal/infrastructure/cache"
	"github.com/ricazo/pos-engine/internal/infrastructure/postgres"
	"github.com/ricazo/pos-engine/pkg/config"
	"github.com/ricazo/pos-engine/pkg/logger"
)

// apply ejecuta el script en la base configurada y, con Redis habilitado, descarta del caché
// de catálogo los productos cargados para que la próxima venta lea el precio nuevo.
func apply(ctx context.Context, cfg *config.Config, log *logger.Logger, script string, ids []string) error {
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name+"-seed")
	if err != nil {
		return err
	}
	defer pool.Close()

	// sin argumentos pgx usa el protocolo simple: el script entero va en una sola llamada
	if _, err := pool.Exec(ctx, script); err != nil {
		return fmt.Errorf("ejecutar script: %w", err)
	}
	log.Info().Int("products", len(ids)).Msg("catálogo aplicado")

	if !cfg.Redis.Enabled() {
		return nil
	}
	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer client.Close()
	c := cache.NewCatalogCache(client, postgres.NewCatalogRepository(pool), cfg.Redis.CatalogCacheTTL, log)
	if err := c.Invalidate(ctx, ids...); err != nil {
		return err
	}
	log.Info().Int("products", len(ids)).Msg("caché de catálogo invalidado")
	return nil
}
