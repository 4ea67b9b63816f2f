package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/distribucion-api/internal/application/bootstrap"
	"github.com/jhoicas/distribucion-api/internal/infrastructure/postgres"
)

// admin migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplica las migraciones pendientes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := boot(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		applied, err := postgres.Migrate(ctx, c.Pool, c.Log)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Println("Sin migraciones pendientes")
			return nil
		}
		for _, name := range applied {
			fmt.Println("aplicada:", name)
		}
		return nil
	},
}

// admin seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Crea los roles y permisos base que falten",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := boot(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		report, err := bootstrap.Seed(ctx, c.Repos.Tx)
		if err != nil {
			return err
		}
		fmt.Printf("roles creados: %d, permisos creados: %d, asignaciones: %d\n",
			report.RolesCreated, report.PermissionsCreated, report.Assignments)
		return nil
	},
}
