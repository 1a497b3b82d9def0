package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yatube/yatube/internal/services"
)

var signupForm services.SignupForm

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := services.NewAccountService(be.store.Users).Register(cmd.Context(), signupForm)
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}

		if flagJSON {
			return writeJSON(cmd.OutOrStdout(), user)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created user: %s (id: %s)\n", user.Username, user.ID)
		return nil
	},
}

func init() {
	flags := usersCreateCmd.Flags()
	flags.StringVar(&signupForm.Username, "username", "", "Username (required)")
	flags.StringVar(&signupForm.Password, "password", "", "Password, at least 8 characters (required)")
	flags.StringVar(&signupForm.Email, "email", "", "Email address")
	flags.StringVar(&signupForm.FirstName, "first-name", "", "First name")
	flags.StringVar(&signupForm.LastName, "last-name", "", "Last name")
	_ = usersCreateCmd.MarkFlagRequired("username")
	_ = usersCreateCmd.MarkFlagRequired("password")

	usersCmd.AddCommand(usersCreateCmd)
	rootCmd.AddCommand(usersCmd)
}
