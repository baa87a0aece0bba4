package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"blog_admin/internal/service"
)

var (
	loginEmail    string
	loginPassword string

	registerInput service.RegisterInput
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and its member profile",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.auth.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := current.auth.Current()
		if err != nil {
			return err
		}
		role := s.Role
		if current.auth.IsAdmin() {
			role = "admin"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> id=%s role=%s\n", s.Name, s.Email, s.UserID, role)
		return nil
	},
}

func runLogin(cmd *cobra.Command, args []string) error {
	s, err := current.auth.Login(cmd.Context(), loginEmail, loginPassword)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", s.Email)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	u, err := current.auth.Register(cmd.Context(), registerInput)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s). You can now log in.\n", u.FullName, u.Email)
	return nil
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password")

	registerCmd.Flags().StringVar(&registerInput.FirstName, "first-name", "", "First name")
	registerCmd.Flags().StringVar(&registerInput.LastName, "last-name", "", "Last name")
	registerCmd.Flags().StringVarP(&registerInput.Email, "email", "e", "", "Email")
	registerCmd.Flags().StringVarP(&registerInput.Password, "password", "p", "", "Password")
	registerCmd.Flags().StringVar(&registerInput.Confirm, "confirm", "", "Repeat the password")
}
