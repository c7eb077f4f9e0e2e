// keywardctl: CLI admin para la API de keyward.
package main

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	_ = godotenv.Load()

	cl := &client{
		BaseURL:   envOr("KEYWARD_URL", "http://localhost:8080"),
		APIKey:    envOr("KEYWARD_ADMIN_KEY", ""),
		Header:    envOr("KEYWARD_ADMIN_HEADER", "X-API-KEY"),
		OutFormat: envOr("KEYWARD_OUT", "text"),
		HTTP:      &http.Client{Timeout: 30 * time.Second},
		Out:       os.Stdout,
	}

	root := &cobra.Command{
		Use:           "keywardctl",
		Short:         "CLI admin para keyward",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cl.OutFormat != "json" && cl.OutFormat != "text" {
				return fmt.Errorf("--out debe ser json|text")
			}
			cl.Out = cmd.OutOrStdout()
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cl.BaseURL, "url", cl.BaseURL, "URL base de la API (env KEYWARD_URL)")
	root.PersistentFlags().StringVar(&cl.APIKey, "admin-api-key", cl.APIKey, "API key admin (env KEYWARD_ADMIN_KEY)")
	root.PersistentFlags().StringVar(&cl.Header, "admin-header", cl.Header, "header de la API key admin")
	root.PersistentFlags().StringVar(&cl.OutFormat, "out", cl.OutFormat, "formato de salida: json|text")

	root.AddCommand(newKeysCmd(cl), newClientsCmd(cl))
	return root
}

// ─── keys ───

func newKeysCmd(cl *client) *cobra.Command {
	cmd := &cobra.Command{Use: "keys", Short: "Claves de firma (/api/keys)"}

	var keySize int
	rotate := &cobra.Command{
		Use:   "rotate",
		Short: "Rota la clave activa (requiere API key)",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/keys/rotate"
			if keySize > 0 {
				path += "?keySize=" + strconv.Itoa(keySize)
			}
			b, err := cl.call(cmd.Context(), http.MethodPost, path, nil)
			if err != nil {
				return err
			}
			cl.print(b, func(v any) string {
				m, _ := v.(map[string]any)
				return fmt.Sprintf("rotated kid=%v alg=%v size=%v\n", m["kid"], m["algorithm"], m["keySize"])
			})
			return nil
		},
	}
	rotate.Flags().IntVar(&keySize, "key-size", 0, "bits de la clave (1024-4096)")

	list := &cobra.Command{
		Use:   "list",
		Short: "Lista las claves (requiere API key)",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := cl.call(cmd.Context(), http.MethodGet, "/api/keys", nil)
			if err != nil {
				return err
			}
			cl.print(b, func(v any) string {
				items, _ := v.([]any)
				var sb strings.Builder
				for _, it := range items {
					m, _ := it.(map[string]any)
					mark := " "
					if m["isActive"] == true {
						mark = "*"
					}
					fmt.Fprintf(&sb, "%s %v\t%v\t%v\n", mark, m["kid"], m["algorithm"], m["createdAt"])
				}
				return sb.String()
			})
			return nil
		},
	}

	active := &cobra.Command{
		Use:   "active",
		Short: "Muestra la clave activa",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := cl.call(cmd.Context(), http.MethodGet, "/api/keys/active", nil)
			if err != nil {
				return err
			}
			cl.print(b, func(v any) string {
				m, _ := v.(map[string]any)
				return fmt.Sprintf("kid=%v alg=%v created_at=%v\n", m["kid"], m["algorithm"], m["createdAt"])
			})
			return nil
		},
	}

	cmd.AddCommand(rotate, list, active)
	return cmd
}

// ─── clients ───

func newClientsCmd(cl *client) *cobra.Command {
	cmd := &cobra.Command{Use: "clients", Short: "Clientes OAuth (/api/clients)"}

	var (
		clientID, secret, name string
		scopes                 []string
		ttl                    int64
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Registra un cliente",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"clientName": name}
			if clientID != "" {
				body["clientId"] = clientID
			}
			if secret != "" {
				body["clientSecret"] = secret
			}
			if len(scopes) > 0 {
				body["scopes"] = scopes
			}
			if ttl > 0 {
				body["accessTokenTimeToLiveSeconds"] = ttl
			}
			b, err := cl.call(cmd.Context(), http.MethodPost, "/api/clients", body)
			if err != nil {
				return err
			}
			cl.print(b, renderClient)
			return nil
		},
	}
	create.Flags().StringVar(&clientID, "client-id", "", "client_id (default: UUID generado)")
	create.Flags().StringVar(&secret, "secret", "", "secreto (default: generado)")
	create.Flags().StringVar(&name, "name", "", "nombre del cliente")
	create.Flags().StringSliceVar(&scopes, "scope", nil, "scope (repetible o separado por comas)")
	create.Flags().Int64Var(&ttl, "ttl", 0, "TTL de access token en segundos")
	_ = create.MarkFlagRequired("name")

	get := &cobra.Command{
		Use:   "get <client-id>",
		Short: "Muestra un cliente",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := cl.call(cmd.Context(), http.MethodGet, "/api/clients/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return err
			}
			cl.print(b, renderClient)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <client-id>",
		Short: "Elimina un cliente (requiere API key)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := cl.call(cmd.Context(), http.MethodDelete, "/api/clients/"+url.PathEscape(args[0])+"/admin", nil)
			if err != nil {
				return err
			}
			cl.print(b, nil)
			return nil
		},
	}

	cmd.AddCommand(create, get, del)
	return cmd
}

func renderClient(v any) string {
	m, _ := v.(map[string]any)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s: %v\n", k, m[k])
	}
	return sb.String()
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
