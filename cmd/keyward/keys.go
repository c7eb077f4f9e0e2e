package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/keyward/internal/app"
	jwtx "github.com/dropDatabas3/keyward/internal/jwt"
	"github.com/dropDatabas3/keyward/internal/store"
)

// newKeysCmd opera sobre el store directamente, sin pasar por la API.
func newKeysCmd(gf *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Gestión de claves de firma contra el store",
	}

	var keySize int
	rotate := &cobra.Command{
		Use:   "rotate",
		Short: "Genera una clave nueva y la deja como única activa",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeyManager(cmd, gf, func(km *jwtx.KeyManager) error {
				size := keySize
				if !cmd.Flags().Changed("key-size") {
					size = km.DefaultKeySize()
				}
				rec, err := km.GenerateAndActivate(cmd.Context(), size)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rotated kid=%s alg=%s size=%d\n", rec.KID, rec.Algorithm, rec.KeySize)
				return nil
			})
		},
	}
	rotate.Flags().IntVar(&keySize, "key-size", 0, "bits de la clave (default: oauth.default_key_size)")

	list := &cobra.Command{
		Use:   "list",
		Short: "Lista las claves (sin material privado)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeyManager(cmd, gf, func(km *jwtx.KeyManager) error {
				keys, err := km.ListKeys(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "KID\tALG\tSIZE\tACTIVE\tCREATED_AT")
				for _, k := range keys {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%s\n", k.KID, k.Algorithm, k.KeySize, k.Active, k.CreatedAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}

	active := &cobra.Command{
		Use:   "active",
		Short: "Muestra la clave activa",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeyManager(cmd, gf, func(km *jwtx.KeyManager) error {
				ak, err := km.GetActive(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "kid=%s alg=%s size=%d created_at=%s\n",
					ak.KID, ak.Algorithm, ak.KeySize, ak.CreatedAt.Format(time.RFC3339))
				return nil
			})
		},
	}

	cmd.AddCommand(rotate, list, active)
	return cmd
}

func withKeyManager(cmd *cobra.Command, gf *globalFlags, fn func(km *jwtx.KeyManager) error) error {
	cfg, err := loadConfig(gf)
	if err != nil {
		return err
	}
	conn, err := app.OpenStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func(c store.AdapterConnection) { _ = c.Close() }(conn)
	return fn(app.NewKeyManager(cfg, conn))
}
