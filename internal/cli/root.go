// Package cli contains the quiz-client commands
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/upb/quiz-client/app"
	"github.com/upb/quiz-client/config"
	"github.com/upb/quiz-client/internal/observability"
	"github.com/upb/quiz-client/internal/output"
	"go.uber.org/zap"
)

// BuildInfo is stamped at build time via ldflags
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// rootOptions is shared by every command of one tree
type rootOptions struct {
	build BuildInfo

	apiURL      string
	storage     string
	storageFile string
	verbose     bool
	noColor     bool

	cfg     *config.Config
	logger  *zap.Logger
	printer *output.Printer
}

// NewRootCmd builds the command tree. A fresh tree per invocation keeps
// flag values from leaking between runs in tests.
func NewRootCmd(build BuildInfo) *cobra.Command {
	o := &rootOptions{build: build}

	cmd := &cobra.Command{
		Use:   "quiz-client",
		Short: "Quiz platform client",
		Long: `quiz-client signs in to the quiz platform API and walks its screens
through the same access rules as the web client.

The session is kept in durable storage between runs, so a login in one
invocation is restored by the next.

Example usage:
  quiz-client mock-api &                         # local development API
  quiz-client login -u student -p 'Student@123'  # sign in
  quiz-client visit /                            # follow the home redirect
  quiz-client visit /admin/summary               # guarded screen
  quiz-client logout`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&o.apiURL, "api-url", "", "quiz API base URL (overrides QUIZ_API_BASE_URL)")
	flags.StringVar(&o.storage, "storage", "", "credential storage backend: memory, file, redis or postgres")
	flags.StringVar(&o.storageFile, "storage-file", "", "session file for the file backend")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")
	flags.BoolVar(&o.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newLoginCmd(o),
		newLogoutCmd(o),
		newWhoamiCmd(o),
		newRegisterCmd(o),
		newSecretQuestionsCmd(o),
		newForgotPasswordCmd(o),
		newResetPasswordCmd(o),
		newVisitCmd(o),
		newRoutesCmd(o),
		newMockAPICmd(o),
		newVersionCmd(o),
	)

	return cmd
}

// Execute runs the command tree
func Execute(ctx context.Context, build BuildInfo) error {
	return NewRootCmd(build).ExecuteContext(ctx)
}

// load loads configuration, applies flag overrides and builds the logger
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.New(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if o.apiURL != "" {
		cfg.API.BaseURL = o.apiURL
	}
	if o.storage != "" {
		cfg.Storage.Backend = o.storage
	}
	if o.storageFile != "" {
		cfg.Storage.FilePath = o.storageFile
	}
	if o.verbose {
		cfg.Observability.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = logger
	o.printer = output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ColorsEnabled(o.noColor))

	logger.Debug("configuration loaded",
		zap.String("environment", cfg.Environment),
		zap.String("api", cfg.API.BaseURL),
		zap.String("storage", cfg.Storage.Backend))
	return nil
}

// withClient wires the client for one command and releases it afterwards
func (o *rootOptions) withClient(cmd *cobra.Command, fn func(ctx context.Context, deps *app.Dependencies) error) error {
	ctx := cmd.Context()

	deps, err := app.NewDependencies(ctx, o.cfg, o.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(context.WithoutCancel(ctx)); err != nil {
			o.logger.Warn("failed to release client", zap.Error(err))
		}
	}()

	return fn(ctx, deps)
}
