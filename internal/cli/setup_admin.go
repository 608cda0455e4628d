package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"portfolio-chat/internal/repositories"
	"portfolio-chat/internal/service"
)

func newSetupAdminCmd() *cobra.Command {
	var (
		username string
		password string
		email    string
	)

	cmd := &cobra.Command{
		Use:   "setup-admin",
		Short: "Create the first admin account",
		Example: `  portfolio-chat setup-admin --username root --email root@example.com
  portfolio-chat setup-admin --username root --password secret`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				pw, err := promptPassword(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				password = pw
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			database, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			auth, err := service.NewAuthService(repositories.NewAdminRepo(database), service.AuthConfig{
				Secret: cfg.Auth.JWTSecret,
				TTL:    cfg.Auth.TokenTTL,
				Issuer: cfg.Auth.Issuer,
			})
			if err != nil {
				return err
			}

			admin, err := auth.Setup(cmd.Context(), username, password, email)
			if err != nil {
				return fmt.Errorf("setup admin: %s", service.Message(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (%s)\n", admin.Username, admin.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "admin username (required)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (prompted if omitted)")
	cmd.Flags().StringVar(&email, "email", "", "admin email (default <username>@admin.local)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func promptPassword(out io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--password is required when stdin is not a terminal")
	}

	fmt.Fprint(out, "Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(out, "Confirm password: ")
	confirm, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read confirmation: %w", err)
	}
	if string(pw) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(pw), nil
}
