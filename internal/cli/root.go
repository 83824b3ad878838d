// Package cli implements the cipapi command line tool
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cipapi-client/internal/config"
	"github.com/cipapi-client/internal/domain"
	"github.com/cipapi-client/internal/logging"
	"github.com/cipapi-client/pkg/cipapi"
)

// Version of the command line tool, set at build time
var Version = "dev"

// RootOptions holds the global flags
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
}

// CLIContext is what every subcommand runs with
type CLIContext struct {
	Config       *domain.Config
	Logger       *logrus.Logger
	Client       *cipapi.Client
	OutputFormat string
	closer       io.Closer
}

type cliContextKey struct{}

// NewRootCommand creates the cipapi command and its subcommands
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	rootCmd := &cobra.Command{
		Use:     "cipapi",
		Short:   "Query the clinical genomics case service",
		Long:    `Lists and fetches cases from the CIPAPI, migrates their reports to the current models and builds CVA inject records.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if cliCtx, err := GetCLIContext(cmd); err == nil && cliCtx.closer != nil {
				return cliCtx.closer.Close()
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to the configuration file (default searches cipapi.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "Log level: trace|debug|info|warn|error")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "", "Output format: json|yaml")

	rootCmd.AddCommand(
		newCasesCmd(),
		newCaseCmd(),
		newExportCmd(),
	)

	return rootCmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	manager, err := config.NewManager(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.LogLevel != "" {
		if err := manager.Set("logging.level", opts.LogLevel); err != nil {
			return err
		}
	}
	if opts.OutputFormat != "" {
		if err := manager.Set("output.format", opts.OutputFormat); err != nil {
			return err
		}
	}
	if err := manager.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg := manager.GetConfig()

	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}

	client, err := cipapi.NewClient(manager.GetClientConfig(), logger)
	if err != nil {
		closer.Close()
		return fmt.Errorf("failed to create client: %w", err)
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		Client:       client,
		OutputFormat: cfg.Output.Format,
		closer:       closer,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// GetCLIContext returns the context set up by the root command
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, fmt.Errorf("command has no context")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, fmt.Errorf("cli context not initialised")
	}
	return cliCtx, nil
}

// Execute runs the root command with ctx
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// PrintError writes err to the command's error stream
func PrintError(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err)
}
