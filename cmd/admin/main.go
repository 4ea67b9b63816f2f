package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/distribucion-api/internal/app"
	"github.com/jhoicas/distribucion-api/pkg/config"
	"github.com/jhoicas/distribucion-api/pkg/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "Tareas de administración de distribucion-api",
	Long:          "Migraciones, catálogo de roles y permisos, alta de administradores e importación de productos.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Base de datos
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)

	// Datos
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(importProductsCmd)
}

// boot carga la configuración y arma el contenedor sobre PostgreSQL.
// Las tareas de esta CLI no tienen sentido contra el store en memoria.
func boot(ctx context.Context) (*app.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.App.Storage != config.StoragePostgres {
		return nil, errors.New("la CLI de administración requiere APP_STORAGE=postgres")
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	return app.New(ctx, cfg, log)
}
