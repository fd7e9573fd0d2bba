package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/upb/quiz-client/app"
	"github.com/upb/quiz-client/internal/output"
	"github.com/upb/quiz-client/models"
)

func newSecretQuestionsCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "secret-questions",
		Short: "List the secret questions offered at registration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withClient(cmd, func(ctx context.Context, deps *app.Dependencies) error {
				questions, err := deps.Session.SecretQuestions(ctx)
				if err != nil {
					return fmt.Errorf("fetching secret questions: %w", err)
				}

				table := output.NewTable(o.printer.Out(), "ID", "QUESTION")
				for _, q := range questions {
					table.AddRow(strconv.Itoa(q.ID), q.Text)
				}
				return table.Render()
			})
		},
	}
}

func newForgotPasswordCmd(o *rootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Show the secret question bound to an email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withClient(cmd, func(ctx context.Context, deps *app.Dependencies) error {
				prompt, err := deps.Session.GetSecretQuestion(ctx, email)
				if err != nil {
					return fmt.Errorf("password recovery failed: %w", err)
				}

				if !prompt.Found() {
					o.printer.Info("%s", prompt.Message)
					return nil
				}
				o.printer.Field("username", prompt.Username)
				o.printer.Field("question", prompt.SecretQuestion)
				o.printer.Info("answer it with reset-password --email %s", email)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newResetPasswordCmd(o *rootOptions) *cobra.Command {
	var req models.ResetPasswordRequest

	cmd := &cobra.Command{
		Use:     "reset-password",
		Short:   "Set a new password with the secret answer and key",
		Example: `  quiz-client reset-password -e frank@example.com --answer rex --key 1a2b-3c4d-5e6f --new-password 'Renewed#99'`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withClient(cmd, func(ctx context.Context, deps *app.Dependencies) error {
				resp, err := deps.Session.ResetPassword(ctx, req)
				if err != nil {
					return fmt.Errorf("password reset failed: %w", err)
				}
				o.printer.Success("%s", resp.Message)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&req.Email, "email", "e", "", "account email")
	flags.StringVar(&req.SecretAnswer, "answer", "", "answer to the secret question")
	flags.StringVar(&req.SecretKey, "key", "", "secret key printed at registration")
	flags.StringVar(&req.NewPassword, "new-password", "", "new password")
	for _, name := range []string{"email", "answer", "key", "new-password"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
