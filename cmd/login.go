package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/theirongolddev/budgie/internal/api"
	"github.com/theirongolddev/budgie/internal/auth"
	"github.com/theirongolddev/budgie/internal/model"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagUsername      string
	flagPasswordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and remember the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runAuth(cmd, model.ModeLogin)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and remember the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runAuth(cmd, model.ModeRegister)
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVarP(&flagUsername, "username", "u", "", "Username")
		c.Flags().BoolVar(&flagPasswordStdin, "password-stdin", false, "Read the password from stdin")
		rootCmd.AddCommand(c)
	}
}

func runAuth(cmd *cobra.Command, mode model.Mode) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	au := a.auth
	au.Mode = mode
	au.Username = strings.TrimSpace(flagUsername)

	if flagPasswordStdin {
		pw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		au.Password = strings.TrimRight(string(pw), "\r\n")
	}

	if au.Username == "" || au.Password == "" {
		if err := promptCredentials(au); err != nil {
			return err
		}
	}

	res, err := au.Submit(cmd.Context())
	if err != nil {
		switch {
		case api.Message(err) != "":
			return fmt.Errorf("%s %s", auth.FailureNotice, api.Message(err))
		case errors.Is(err, auth.ErrNoUserID) && res.Message != "":
			return errors.New(res.Message)
		default:
			return errors.New(auth.FailureNotice)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", res.Message)
	fmt.Fprintf(cmd.OutOrStdout(), "  Signed in as %s.\n", au.Username)
	return nil
}

// promptCredentials asks for whatever is still missing.
func promptCredentials(au *auth.Authenticator) error {
	var fields []huh.Field
	if au.Username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(&au.Username))
	}
	if au.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&au.Password))
	}

	form := huh.NewForm(huh.NewGroup(fields...).Title(au.Mode.String()))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New("aborted")
		}
		return fmt.Errorf("prompt: %w", err)
	}
	au.Username = strings.TrimSpace(au.Username)
	return nil
}
