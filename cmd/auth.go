package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/daylog/internal/identity"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with the identity provider (device code flow)",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the signed-in user and its tokens",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiRefresh bool

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	whoamiCmd.Flags().BoolVar(&whoamiRefresh, "refresh", false, "Re-read the profile from the provider")
}

func runLogin(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	u, err := e.auth.SignIn(cmd.Context())
	if err != nil {
		failStorage(fmt.Errorf("sign-in failed: %w", err))
	}
	fmt.Printf("Signed in as %s\n", u.DisplayName())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	if err := e.auth.SignOut(); err != nil {
		failStorage(err)
	}
	fmt.Println("Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	if !whoamiRefresh {
		u := e.user()
		printUser(u.DisplayName(), u.Email, u.ID)
		return nil
	}
	u, err := e.auth.Refresh(cmd.Context())
	if errors.Is(err, identity.ErrSignedOut) {
		fail(err)
	}
	if err != nil {
		failStorage(err)
	}
	printUser(u.DisplayName(), u.Email, u.ID)
	return nil
}

func printUser(name, email, id string) {
	fmt.Printf("Name:  %s\n", name)
	if email != "" {
		fmt.Printf("Email: %s\n", email)
	}
	fmt.Printf("ID:    %s\n", id)
}
