package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/upb/quiz-client/app"
	"github.com/upb/quiz-client/models"
	"github.com/upb/quiz-client/router"
)

var errPasswordRequired = errors.New("password is required")

func newLoginCmd(o *rootOptions) *cobra.Command {
	var creds models.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long: `Sign in with a username or email. The password is read from standard
input when --password is not given.`,
		Example: `  quiz-client login -u admin -p 'Thisisadmin@123'
  echo 'Student@123' | quiz-client login -u student@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if creds.Password == "" {
				pw, err := readSecret(cmd.InOrStdin())
				if err != nil {
					return err
				}
				creds.Password = pw
			}

			return o.withClient(cmd, func(ctx context.Context, deps *app.Dependencies) error {
				// the login screen is guest only; a restored session is sent on
				if err := deps.Router.Push(ctx, "/login"); err != nil {
					return err
				}
				if deps.Session.IsAuthenticated() {
					o.printer.Warning("already signed in as %s, run logout first", deps.Session.Username())
					return nil
				}

				identity, err := deps.Session.Login(ctx, creds)
				if err != nil {
					return fmt.Errorf("login failed: %w", err)
				}

				o.printer.Success("signed in as %s", o.printer.Bold(identity.Username))
				o.printer.Field("roles", strings.Join(identity.Roles.Strings(), ", "))
				o.printer.Field("screen", describe(deps.Router.Current()))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "username or email")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newLogoutCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withClient(cmd, func(ctx context.Context, deps *app.Dependencies) error {
				deps.Session.Rehydrate(ctx)
				username := deps.Session.Username()

				deps.Session.Logout(ctx)

				if username == "" {
					o.printer.Info("no active session")
					return nil
				}
				o.printer.Success("signed out %s", username)
				return nil
			})
		},
	}
}

type whoamiOutput struct {
	Authenticated bool     `json:"authenticated"`
	Username      string   `json:"username,omitempty"`
	Roles         []string `json:"roles,omitempty"`
	Admin         bool     `json:"admin"`
}

func newWhoamiCmd(o *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withClient(cmd, func(ctx context.Context, deps *app.Dependencies) error {
				deps.Session.Rehydrate(ctx)
				identity := deps.Session.Identity()

				if jsonOutput {
					enc := json.NewEncoder(o.printer.Out())
					enc.SetIndent("", "  ")
					return enc.Encode(whoamiOutput{
						Authenticated: deps.Session.IsAuthenticated(),
						Username:      identity.Username,
						Roles:         identity.Roles.Strings(),
						Admin:         deps.Session.IsAdmin(),
					})
				}

				if !deps.Session.IsAuthenticated() {
					o.printer.Info("not signed in")
					return nil
				}
				o.printer.Print("%s", o.printer.Bold(identity.Username))
				o.printer.Field("roles", strings.Join(identity.Roles.Strings(), ", "))
				o.printer.Field("admin", deps.Session.IsAdmin())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func newRegisterCmd(o *rootOptions) *cobra.Command {
	var req models.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account. Registering does not sign in; keep the printed
secret key, it is required to reset the password.`,
		Example: `  quiz-client register -u frank -e frank@example.com -p 'Frank!2024' --question 1 --answer Rex`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withClient(cmd, func(ctx context.Context, deps *app.Dependencies) error {
				resp, err := deps.Session.Register(ctx, req)
				if err != nil {
					return fmt.Errorf("registration failed: %w", err)
				}

				o.printer.Success("%s", resp.Message)
				if resp.SecretKey != "" {
					o.printer.Field("secret key", resp.SecretKey)
					o.printer.Warning("store the secret key safely, it is shown only once")
				}
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&req.Username, "username", "u", "", "username")
	flags.StringVarP(&req.Email, "email", "e", "", "email")
	flags.StringVarP(&req.Password, "password", "p", "", "password")
	flags.IntVar(&req.SecretQuestionID, "question", 0, "secret question id (see secret-questions)")
	flags.StringVar(&req.SecretAnswer, "answer", "", "answer to the secret question")
	for _, name := range []string{"username", "email", "password", "question", "answer"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

// describe renders a location for humans
func describe(loc router.Location) string {
	if loc.Name == "" {
		return loc.FullPath()
	}
	return fmt.Sprintf("%s (%s)", loc.Name, loc.FullPath())
}

func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errPasswordRequired
	}
	return line, nil
}
