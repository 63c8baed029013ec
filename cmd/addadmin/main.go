// Command addadmin registers a staff member in the admin directory. It is
// the only way accounts are created; there is no self-serve signup.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"nyumba/internal/platform/database"
)

const insertAdminSQL = `
INSERT INTO admin_users (id, email, full_name, role, password_hash, is_active, first_login)
VALUES ($1, $2, $3, $4, $5, TRUE, TRUE)`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		databaseURL string
		email       string
		fullName    string
		role        string
		password    string
	)

	cmd := &cobra.Command{
		Use:   "addadmin",
		Short: "Create an admin account for the moderation dashboard",
		Example: `  addadmin --email jane@example.com --name "Jane Admin"
  addadmin --email jane@example.com --name "Jane Admin" --role super_admin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				databaseURL = os.Getenv("NYUMBA_DATABASE_URL")
			}
			return runAddAdmin(cmd.Context(), databaseURL, email, fullName, role, password)
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres connection string (defaults to NYUMBA_DATABASE_URL)")
	cmd.Flags().StringVar(&email, "email", "", "Admin email address (required)")
	cmd.Flags().StringVar(&fullName, "name", "", "Admin display name (required)")
	cmd.Flags().StringVar(&role, "role", "admin", "Role: admin or super_admin")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if omitted)")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("name")

	return cmd
}

func runAddAdmin(ctx context.Context, databaseURL, email, fullName, role, password string) error {
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address: %q", email)
	}
	if role != "admin" && role != "super_admin" {
		return fmt.Errorf("invalid role %q: must be admin or super_admin", role)
	}
	if databaseURL == "" {
		return fmt.Errorf("database url is required")
	}

	if password == "" {
		var err error
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	cfg := database.DefaultConfig()
	cfg.URL = databaseURL
	pool, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	id := uuid.New()
	if _, err := pool.DB().ExecContext(ctx, insertAdminSQL,
		id, strings.ToLower(email), fullName, role, string(hash)); err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}

	fmt.Printf("Created %s %s (%s)\n", role, email, id)
	fmt.Println("The admin will be asked to create a PIN on first login.")
	return nil
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Println()

	fmt.Print("Confirm password: ")
	confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("read confirmation: %w", err)
	}
	fmt.Println()

	if string(pwBytes) != string(confirmBytes) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(pwBytes), nil
}
