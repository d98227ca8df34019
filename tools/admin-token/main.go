package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mike7019/Masajes-sub000/libs/auth"
	"github.com/mike7019/Masajes-sub000/libs/config"
	"github.com/spf13/cobra"
)

type tokenFlags struct {
	subject string
	role    string
	ttl     time.Duration
	secret  string
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fatal(err.Error())
	}
	if err := newRootCommand().Execute(); err != nil {
		fatal(err.Error())
	}
}

func newRootCommand() *cobra.Command {
	var f tokenFlags
	root := &cobra.Command{
		Use:          "admin-token",
		Short:        "Mint HS256 admin tokens for the Masajes gateway.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.subject, "subject", config.String("ADMIN_SUBJECT", "owner"), "token subject (admin user id)")
	pf.StringVar(&f.role, "role", auth.RoleAdmin, "role claim")
	pf.DurationVar(&f.ttl, "ttl", 12*time.Hour, "token lifetime")
	pf.StringVar(&f.secret, "secret", config.String("JWT_SECRET", ""), "HS256 signing secret")

	root.AddCommand(newMintCommand(&f), newCallCommand(&f))
	return root
}

func newMintCommand(f *tokenFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mint",
		Short: "Print a signed token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := f.sign(time.Now().UTC())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
}

func newCallCommand(f *tokenFlags) *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:     "call PATH",
		Short:   "GET an admin route through the gateway with a fresh token",
		Example: "admin-token call /api/v1/admin/reservations?status=PENDING",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := f.sign(time.Now().UTC())
			if err != nil {
				return err
			}
			target := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(args[0], "/")
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, target, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", "Bearer "+token)

			client := &http.Client{Timeout: 10 * time.Second}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			fmt.Fprintf(cmd.OutOrStdout(), "status=%d\n%s\n", resp.StatusCode, strings.TrimSpace(string(body)))
			if resp.StatusCode >= 300 {
				return fmt.Errorf("gateway returned %d", resp.StatusCode)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", config.String("BASE_URL", "http://localhost:8080"), "gateway base url")
	return cmd
}

func (f *tokenFlags) sign(now time.Time) (string, error) {
	if strings.TrimSpace(f.secret) == "" {
		return "", fmt.Errorf("JWT_SECRET is required")
	}
	if strings.TrimSpace(f.subject) == "" {
		return "", fmt.Errorf("subject is required")
	}
	return auth.SignHS256(auth.NewClaims(f.subject, f.role, f.ttl, now), f.secret)
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}
