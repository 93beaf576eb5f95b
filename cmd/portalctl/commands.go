package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"campusintern/internal/app"
	"campusintern/internal/common"
	"campusintern/internal/database"
	"campusintern/internal/security"
)

func newMigrateCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()
			if b.db == nil {
				return errNoDatabase
			}
			if err := database.Migrate(cmd.Context(), b.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

// newCreateAdminCmd bootstraps an admin without an existing admin token.
func newCreateAdminCmd(open openFunc) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()
			// Tokens are never issued here, so the signing secret is irrelevant.
			auth := app.NewAuthService(b.principals, security.NewBcryptHasher(bcrypt.DefaultCost), security.NewJWTProvider("portalctl", 0), b.logger)
			created, err := auth.CreateAdmin(cmd.Context(), app.RegisterInput{
				Name:     name,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created with id %s\n", created.Email, created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Login email")
	cmd.Flags().StringVar(&password, "password", "", "Initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newNormalizeStatusesCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize-statuses",
		Short: "Rewrite legacy Applied applications as Pending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()
			n, err := b.applications.NormalizeLegacyStatuses(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "normalized %d applications\n", n)
			return nil
		},
	}
}

// describe flattens validation field errors into the message so they reach
// the terminal.
func describe(err error) error {
	fields := common.FieldsOf(err)
	if len(fields) == 0 {
		return err
	}
	parts := make([]string, 0, len(fields))
	for field, msg := range fields {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return fmt.Errorf("%w (%s)", err, strings.Join(parts, "; "))
}
