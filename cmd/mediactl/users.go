package main

import (
	"errors"
	"os"
	"time"

	"github.com/brueckenwerk/cms/internal/access"
	"github.com/brueckenwerk/cms/internal/models"
	"github.com/spf13/cobra"
)

func newUsersCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage dashboard accounts",
	}

	var email, name, role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a dashboard account",
		Long:  `Create a dashboard account. The password is read from MEDIACTL_PASSWORD.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password := os.Getenv("MEDIACTL_PASSWORD")
			if password == "" {
				return errors.New("MEDIACTL_PASSWORD is required")
			}
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			user, err := access.NewUser(email, name, role, password)
			if err != nil {
				return err
			}
			user.Touch(time.Now().UTC())
			if err := a.Content.Users.Insert(cmd.Context(), user); err != nil {
				return err
			}
			c.printf("created %s user %s (%s)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "Login email")
	create.Flags().StringVar(&name, "name", "", "Display name")
	create.Flags().StringVar(&role, "role", access.RoleEditor, "Role (admin or editor)")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("name")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List dashboard accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			users, err := a.Content.Users.List(cmd.Context())
			if err != nil {
				return err
			}
			out := make([]models.PublicUser, 0, len(users))
			for _, u := range users {
				out = append(out, u.Public())
			}
			if c.jsonOut {
				return c.printJSON(out)
			}
			for _, u := range out {
				c.printf("%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Role, u.Name)
			}
			return nil
		},
	})
	return cmd
}
