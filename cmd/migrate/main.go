// migrate aplica o revierte las migraciones embebidas del esquema del motor.
//
// Uso: go run ./cmd/migrate [up|down|version]
// La conexión se toma de DATABASE_URL o DB_HOST/DB_PORT/... igual que la API.
package main

import (
	"fmt"
	"os"

	"github.com/ricazo/pos-engine/internal/infrastructure/postgres"
	"github.com/ricazo/pos-engine/pkg/config"
	"github.com/ricazo/pos-engine/pkg/logger"
)

func main() {
	action := postgres.MigrateUp
	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: cfg.App.Name}).Component("migrate")
	dsn := cfg.DB.ConnectionString()

	switch action {
	case postgres.MigrateUp, postgres.MigrateDown:
		v, err := postgres.Migrate(dsn, action)
		if err != nil {
			log.Fatal().Err(err).Str("action", action).Msg("migración fallida")
		}
		log.Info().Str("action", action).Uint("version", v).Msg("migración completada")
	case "version":
		v, dirty, err := postgres.MigrationVersion(dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("leer versión")
		}
		log.Info().Uint("version", v).Bool("dirty", dirty).Msg("versión del esquema")
	default:
		fmt.Fprintf(os.Stderr, "acción desconocida %q (up, down, version)\n", action)
		os.Exit(2)
	}
}
