// shepherdctl es el CLI de operación contra el API admin de shepherd.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	Token     string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func (c *client) expect2xx(op string, status int, body []byte) error {
	if status/100 != 2 {
		return fmt.Errorf("%s fallo: status=%d body=%s", op, status, string(body))
	}
	return nil
}

func main() {
	var (
		baseURL = envOr("SHEPHERD_URL", "http://localhost:8080")
		token   = envOr("SHEPHERD_TOKEN", "")
		out     = envOr("SHEPHERD_OUT", "text")
		timeout = 30 * time.Second
	)

	root := &cobra.Command{
		Use:   "shepherdctl",
		Short: "CLI de operación para shepherd (flags, tenants, sesiones)",
	}

	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del API (env SHEPHERD_URL)")
	root.PersistentFlags().StringVar(&token, "token", token, "Access token de un admin (env SHEPHERD_TOKEN)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	httpClient := &http.Client{Timeout: timeout}
	cl := &client{HTTP: httpClient}
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cl.BaseURL = baseURL
		cl.Token = token
		cl.OutFormat = out
	}

	// ping: /healthz no pide token.
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Verifica que el API responda",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/healthz", nil)
			if err != nil {
				return err
			}
			if err := cl.expect2xx("ping", status, body); err != nil {
				return err
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, body)
			return nil
		},
	}

	// flags
	flagsCmd := &cobra.Command{Use: "flags", Short: "Administración de feature flags"}

	flagsListCmd := &cobra.Command{
		Use:   "list",
		Short: "Lista todos los flags con su configuración",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/admin/flags", nil)
			if err != nil {
				return err
			}
			if err := cl.expect2xx("flags list", status, body); err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}

	var setEnabled, setDescription, setRisk string
	var setRollout int
	flagsSetCmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Crea o modifica un flag (campos ausentes no cambian)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{}
			if setEnabled != "" {
				payload["enabled"] = strings.EqualFold(setEnabled, "true")
			}
			if setRollout >= 0 {
				payload["rolloutPercentage"] = setRollout
			}
			if setDescription != "" {
				payload["description"] = setDescription
			}
			if setRisk != "" {
				payload["riskLevel"] = setRisk
			}
			if len(payload) == 0 {
				return fmt.Errorf("nada que cambiar: pasá al menos un flag (--enabled, --rollout, --description, --risk)")
			}
			b, _ := json.Marshal(payload)
			status, body, err := cl.do("PATCH", "/admin/flags/"+args[0], b)
			if err != nil {
				return err
			}
			if err := cl.expect2xx("flags set", status, body); err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	flagsSetCmd.Flags().StringVar(&setEnabled, "enabled", "", "true|false")
	flagsSetCmd.Flags().IntVar(&setRollout, "rollout", -1, "Porcentaje de rollout 0..100")
	flagsSetCmd.Flags().StringVar(&setDescription, "description", "", "Descripción del flag")
	flagsSetCmd.Flags().StringVar(&setRisk, "risk", "", "Nivel de riesgo: low|medium|high")

	flagsKillCmd := &cobra.Command{
		Use:   "kill <name>",
		Short: "Activa el kill switch remoto del flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("POST", "/admin/flags/"+args[0]+"/kill", nil)
			if err != nil {
				return err
			}
			if err := cl.expect2xx("flags kill", status, body); err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}

	flagsReviveCmd := &cobra.Command{
		Use:   "revive <name>",
		Short: "Desactiva el kill switch remoto del flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("POST", "/admin/flags/"+args[0]+"/revive", nil)
			if err != nil {
				return err
			}
			if err := cl.expect2xx("flags revive", status, body); err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}

	flagsCmd.AddCommand(flagsListCmd, flagsSetCmd, flagsKillCmd, flagsReviveCmd)

	// tenants
	tenantsCmd := &cobra.Command{Use: "tenants", Short: "Operaciones sobre tenants"}
	tenantsListCmd := &cobra.Command{
		Use:   "list",
		Short: "Lista todos los tenants con sus iglesias locales",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/admin/tenants", nil)
			if err != nil {
				return err
			}
			if err := cl.expect2xx("tenants list", status, body); err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	tenantsCmd.AddCommand(tenantsListCmd)

	// sessions
	sessionsCmd := &cobra.Command{Use: "sessions", Short: "Sesiones de refresh de un usuario"}

	var sessUserID string
	sessionsListCmd := &cobra.Command{
		Use:   "list",
		Short: "Lista las cadenas de refresh de un usuario",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessUserID == "" {
				return fmt.Errorf("--user es requerido")
			}
			status, body, err := cl.do("GET", "/admin/sessions?userId="+sessUserID, nil)
			if err != nil {
				return err
			}
			if err := cl.expect2xx("sessions list", status, body); err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	sessionsListCmd.Flags().StringVar(&sessUserID, "user", "", "ID del usuario")

	var revokeUserID string
	sessionsRevokeCmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoca todas las sesiones de un usuario",
		RunE: func(cmd *cobra.Command, args []string) error {
			if revokeUserID == "" {
				return fmt.Errorf("--user es requerido")
			}
			b, _ := json.Marshal(map[string]string{"userId": revokeUserID})
			status, body, err := cl.do("POST", "/admin/sessions/revoke", b)
			if err != nil {
				return err
			}
			if err := cl.expect2xx("sessions revoke", status, body); err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	sessionsRevokeCmd.Flags().StringVar(&revokeUserID, "user", "", "ID del usuario")

	sessionsCmd.AddCommand(sessionsListCmd, sessionsRevokeCmd)

	root.AddCommand(pingCmd, flagsCmd, tenantsCmd, sessionsCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
