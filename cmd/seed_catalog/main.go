// seed_catalog genera un script SQL con el catálogo de productos a partir de la planilla
// exportada por el PDV anterior (CSV separado por ';').
//
// Uso: go run ./cmd/seed_catalog -in catalogo.csv -encoding windows-1252 -out catalog_seed.sql
// Después: psql "$DATABASE_URL" -f catalog_seed.sql
//
// Con -apply el script se ejecuta directamente en la base de la configuración (DB_*) y se
// invalidan en Redis (REDIS_ADDR) los productos cargados.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ricazo/pos-engine/pkg/config"
	"github.com/ricazo/pos-engine/pkg/logger"
)

func main() {
	in := flag.String("in", "catalogo.csv", "planilla de productos")
	encoding := flag.String("encoding", "utf-8", "codificación de la planilla (utf-8, windows-1252, iso-8859-1)")
	outPath := flag.String("out", "catalog_seed.sql", "script SQL de salida")
	applyNow := flag.Bool("apply", false, "ejecutar el script en la base configurada e invalidar el caché")
	flag.Parse()

	f, err := os.Open(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir planilla: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	r, err := decoderFor(*encoding, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	rows, err := parseCatalog(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Planilla inválida: %v\n", err)
		os.Exit(1)
	}

	var script bytes.Buffer
	if err := writeSQL(&script, rows, *in); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, script.Bytes(), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}

	combos := 0
	for _, p := range rows {
		if p.isCombo() {
			combos++
		}
	}
	fmt.Printf("Generado %s: %d productos (%d combos)\n", *outPath, len(rows), combos)

	if !*applyNow {
		return
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: cfg.App.Name})
	if err := apply(context.Background(), cfg, log, script.String(), productIDs(rows)); err != nil {
		log.Fatal().Err(err).Msg("aplicar catálogo")
	}
}
