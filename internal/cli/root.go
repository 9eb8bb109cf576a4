// Package cli is the pic command tree. Every command that talks to the server
// builds the application runtime, connects once, runs and closes it again.
package cli

import (
	"context"
	"fmt"

	"github.com/pulp-tools/pic/internal/app"
	"github.com/pulp-tools/pic/internal/config"
	"github.com/pulp-tools/pic/internal/logger"
	"github.com/pulp-tools/pic/pkg/pulp"
	"github.com/spf13/cobra"
)

type runtime struct {
	cfg      config.Config
	log      logger.Logger
	sessOpts []pulp.Option
}

// NewRootCommand builds the pic command tree. Flags override the loaded
// config; extra session options are passed to every session the tree opens.
func NewRootCommand(cfg *config.Config, log logger.Logger, opts ...pulp.Option) *cobra.Command {
	if log == nil {
		log = logger.NopLogger{}
	}
	rt := &runtime{cfg: *cfg, log: log, sessOpts: opts}

	rootCmd := &cobra.Command{
		Use:   "pic",
		Short: "pic - a thin client for the Pulp REST API",
		Long: `pic sends authenticated JSON requests to a Pulp server and prints the
decoded response.

Examples:
  # List repositories
  pic repos list

  # Create a repository with extra fields
  pic repos create zoo --name "Zoo" --field feed=https://example.com/zoo/

  # Issue a raw request
  pic get /repositories/ --param details=true`,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageErrorf("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.cfg.Finalize(); err != nil {
				return &UsageError{Msg: err.Error()}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return usageErrorf("pic needs a subcommand")
		},
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Msg: err.Error()}
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rt.cfg.Host, "host", rt.cfg.Host, "Pulp server host")
	flags.IntVar(&rt.cfg.Port, "port", rt.cfg.Port, "Pulp server port")
	flags.StringVar(&rt.cfg.User, "user", rt.cfg.User, "user name for basic auth")
	flags.StringVar(&rt.cfg.Password, "password", rt.cfg.Password, "password for basic auth")
	flags.StringVar(&rt.cfg.PathPrefix, "prefix", rt.cfg.PathPrefix, "API path prefix")
	flags.Int64Var(&rt.cfg.TimeoutSeconds, "timeout", rt.cfg.TimeoutSeconds, "request timeout in seconds")
	flags.StringVarP(&rt.cfg.Output, "output", "o", rt.cfg.Output, "output format: json, yaml or raw")
	flags.BoolVar(&rt.cfg.InsecureSkipVerify, "insecure", rt.cfg.InsecureSkipVerify, "skip TLS certificate verification")

	rootCmd.AddCommand(newReposCommand(rt))
	rootCmd.AddCommand(newVerbCommands(rt)...)
	rootCmd.AddCommand(newJournalCommand(rt))

	return rootCmd
}

// withApp builds the runtime for one command and closes it afterwards.
func (rt *runtime) withApp(ctx context.Context, fn func(a *app.App) error) error {
	a, err := app.New(ctx, &rt.cfg, rt.log, rt.sessOpts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			rt.log.ErrorObj("runtime close failed", "error", cerr)
		}
	}()
	return fn(a)
}

// withSession is withApp plus a connected session.
func (rt *runtime) withSession(ctx context.Context, fn func(s *pulp.Session) error) error {
	return rt.withApp(ctx, func(a *app.App) error {
		if err := a.Connect(); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		return fn(a.Session())
	})
}

// call runs one request and prints its result.
func (rt *runtime) call(cmd *cobra.Command, do func(ctx context.Context, s *pulp.Session) (pulp.Result, error)) error {
	ctx := cmd.Context()
	return rt.withSession(ctx, func(s *pulp.Session) error {
		res, err := do(ctx, s)
		if err != nil {
			return err
		}
		return renderResult(cmd.OutOrStdout(), res, rt.cfg.Output)
	})
}
