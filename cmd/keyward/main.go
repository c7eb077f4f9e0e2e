// keyward: servicio de claves de firma y registro de clientes.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/keyward/internal/config"
	"github.com/dropDatabas3/keyward/internal/observability/logger"

	// Registra todos los adapters de store via init()
	_ "github.com/dropDatabas3/keyward/internal/store/adapters/dal"
)

// version se setea con -ldflags "-X main.version=..."
var version = "dev"

type globalFlags struct {
	configPath string
	envFile    string
}

func main() {
	var gf globalFlags

	root := &cobra.Command{
		Use:           "keyward",
		Short:         "Servicio de claves de firma RSA y registro de clientes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if gf.envFile != "" {
				_ = godotenv.Load(gf.envFile)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), gf)
		},
	}
	root.PersistentFlags().StringVar(&gf.configPath, "config", envOr("KEYWARD_CONFIG", "configs/config.yaml"), "ruta a config.yaml (si no existe se usa solo env)")
	root.PersistentFlags().StringVar(&gf.envFile, "env-file", ".env", "ruta a .env (opcional)")

	root.AddCommand(
		newServeCmd(&gf),
		newMigrateCmd(&gf),
		newKeysCmd(&gf),
		&cobra.Command{
			Use:   "version",
			Short: "Imprime la versión",
			Run:   func(cmd *cobra.Command, args []string) { fmt.Fprintln(cmd.OutOrStdout(), version) },
		},
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig carga la config e inicializa el logger global.
func loadConfig(gf *globalFlags) (*config.Config, error) {
	cfg, err := config.LoadOptional(gf.configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{
		Env:          cfg.Log.Env,
		Level:        cfg.Log.Level,
		ServiceName:  "keyward",
		Version:      version,
		File:         cfg.Log.File,
		RotationTime: cfg.Log.RotationTime,
		MaxAge:       cfg.Log.MaxAge,
		MaxSizeMB:    cfg.Log.MaxSizeMB,
	})
	return cfg, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
