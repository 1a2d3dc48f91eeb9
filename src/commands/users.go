package commands

import (
	"github.com/pranubaita/photoshare/src/auth"
	"github.com/pranubaita/photoshare/src/directors"
	"github.com/pranubaita/photoshare/src/engine"
	"github.com/spf13/cobra"
)

func (cl *Commandline) addUserCmd() *cobra.Command {
	var user auth.NewUser

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Register a user with a hashed password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cl.withStore(func(db *engine.Database) error {
				services := directors.NewServiceManager(db, nil, cl.logger)
				created, err := services.UserService.AddUser(user)
				if err != nil {
					return err
				}

				return printUser(cmd, created)
			})
		},
	}

	cmd.Flags().StringVar(&user.Username, "username", "", "username, stored lowercased")
	cmd.Flags().StringVar(&user.Email, "email", "", "email address, stored lowercased")
	cmd.Flags().StringVar(&user.Password, "password", "", "password of at least 8 characters")
	cmd.Flags().StringVar(&user.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&user.LastName, "last-name", "", "last name")
	for _, name := range []string{"username", "email", "password", "first-name", "last-name"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func (cl *Commandline) resetPasswordCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Replace the password of the user registered with an email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cl.withStore(func(db *engine.Database) error {
				services := directors.NewServiceManager(db, nil, cl.logger)
				user, err := services.UserService.ResetPassword(email, password)
				if err != nil {
					return err
				}
				return printUser(cmd, user)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address of the user")
	cmd.Flags().StringVar(&password, "password", "", "new password of at least 8 characters")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// printUser prints the stored record of user without its password hash.
func printUser(cmd *cobra.Command, user *auth.User) error {
	record := user.Record()
	delete(record, "password_hash")
	return printJSON(cmd.OutOrStdout(), record)
}
