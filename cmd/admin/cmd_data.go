package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/distribucion-api/internal/application/bootstrap"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

var (
	adminEmail    string
	adminUsername string
	adminPassword string
	adminRole     string

	importFile     string
	importEncoding string
)

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "email del usuario")
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "nombre de usuario")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "contraseña (o ADMIN_PASSWORD)")
	createAdminCmd.Flags().StringVar(&adminRole, "role", entity.RoleAdministrador, "rol a asignar")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("username")

	importProductsCmd.Flags().StringVar(&importFile, "file", "", "ruta del CSV (sku,nombre,descripcion,precio,stock)")
	importProductsCmd.Flags().StringVar(&importEncoding, "encoding", bootstrap.EncodingUTF8, "codificación del archivo: utf8, latin1 o cp1252")
	_ = importProductsCmd.MarkFlagRequired("file")
}

// admin create-admin --email a@b.co --username admin --password ...
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Crea un usuario activo con el rol indicado",
	RunE: func(cmd *cobra.Command, args []string) error {
		pass := adminPassword
		if pass == "" {
			pass = os.Getenv("ADMIN_PASSWORD")
		}
		ctx := cmd.Context()
		c, err := boot(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		u, err := bootstrap.CreateAdmin(ctx, c.Repos.Users, c.Repos.Roles, c.Policy, bootstrap.AdminInput{
			Username: adminUsername,
			Email:    adminEmail,
			Password: pass,
			Role:     adminRole,
		})
		if err != nil {
			return err
		}
		fmt.Printf("usuario %s creado (id %s, rol %s)\n", u.Email, u.ID, adminRole)
		return nil
	},
}

// admin import-products --file productos.csv --encoding latin1
var importProductsCmd = &cobra.Command{
	Use:   "import-products",
	Short: "Importa productos desde un CSV; los SKU existentes se omiten",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(importFile)
		if err != nil {
			return err
		}
		defer f.Close()

		items, err := bootstrap.ParseProductsCSV(f, importEncoding)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		c, err := boot(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		report, err := bootstrap.ImportProducts(ctx, c.ProductUC, items)
		if report != nil {
			fmt.Printf("creados: %d, omitidos: %d\n", report.Created, len(report.Skipped))
			for _, sku := range report.Skipped {
				fmt.Println("  ya existía:", sku)
			}
		}
		return err
	},
}
