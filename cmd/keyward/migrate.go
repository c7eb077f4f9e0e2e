package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/keyward/internal/app"
)

func newMigrateCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones del store configurado",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(gf)
			if err != nil {
				return err
			}
			migrate := true
			cfg.Storage.AutoMigrate = &migrate

			conn, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer conn.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", conn.Name())
			return nil
		},
	}
}
