package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, ok := a.session.Current(); !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "  Not logged in.")
		return nil
	}
	if err := a.ledger.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("removing session: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "  Logged out.")
	return nil
}
