package cli

import (
	"context"
	"fmt"

	"github.com/pulp-tools/pic/pkg/pulp"
	"github.com/spf13/cobra"
)

func newReposCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repos",
		Short: "Manage repositories",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageErrorf("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return usageErrorf("%s needs a subcommand", cmd.CommandPath())
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all repositories",
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, _ []string) error {
				return rt.call(cmd, func(ctx context.Context, s *pulp.Session) (pulp.Result, error) {
					return s.ListRepos(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "get ID",
			Short: "Show one repository",
			Args:  exactArgs(1, "ID"),
			RunE: func(cmd *cobra.Command, args []string) error {
				return rt.call(cmd, func(ctx context.Context, s *pulp.Session) (pulp.Result, error) {
					return s.GetRepo(ctx, args[0])
				})
			},
		},
		newRepoCreateCommand(rt),
		newRepoUpdateCommand(rt),
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a repository",
			Args:  exactArgs(1, "ID"),
			RunE: func(cmd *cobra.Command, args []string) error {
				return rt.call(cmd, func(ctx context.Context, s *pulp.Session) (pulp.Result, error) {
					return s.DeleteRepo(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "schedules",
			Short: "List repository sync schedules",
			Args:  exactArgs(0),
			RunE: func(cmd *cobra.Command, _ []string) error {
				return rt.call(cmd, func(ctx context.Context, s *pulp.Session) (pulp.Result, error) {
					return s.Schedules(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "history ID",
			Short: "Show the sync history of a repository",
			Args:  exactArgs(1, "ID"),
			RunE: func(cmd *cobra.Command, args []string) error {
				return rt.call(cmd, func(ctx context.Context, s *pulp.Session) (pulp.Result, error) {
					return s.SyncHistory(ctx, args[0])
				})
			},
		},
	)
	return cmd
}

func newRepoCreateCommand(rt *runtime) *cobra.Command {
	var (
		name   string
		arch   string
		fields []string
	)
	cmd := &cobra.Command{
		Use:   "create ID",
		Short: "Create a repository",
		Long: `Create a repository. The name defaults to the id and the arch to noarch.
Extra fields are sent as given. --field name=... and --field arch=... work
like --name and --arch.

Examples:
  pic repos create zoo
  pic repos create zoo --name "Zoo" --arch x86_64 --field notes='{"team":"infra"}'`,
		Args: exactArgs(1, "ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := parseFields(fields)
			if err != nil {
				return err
			}
			repoName, repoArch := name, arch
			if err := liftField(extra, "name", &repoName); err != nil {
				return err
			}
			if err := liftField(extra, "arch", &repoArch); err != nil {
				return err
			}
			if _, ok := extra["id"]; ok {
				return usageErrorf("--field id is not allowed, the id is the ID argument")
			}
			opts := []pulp.RepoOption{pulp.WithFields(extra)}
			if repoName != "" {
				opts = append(opts, pulp.WithName(repoName))
			}
			if repoArch != "" {
				opts = append(opts, pulp.WithArch(repoArch))
			}
			return rt.call(cmd, func(ctx context.Context, s *pulp.Session) (pulp.Result, error) {
				return s.CreateRepo(ctx, args[0], opts...)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the id)")
	cmd.Flags().StringVar(&arch, "arch", "", "architecture (defaults to "+pulp.DefaultArch+")")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "extra field as key=value; JSON values are decoded")
	return cmd
}

// liftField moves a --field that names a create parameter onto that
// parameter. Giving both the flag and the field is a usage error.
func liftField(extra map[string]any, key string, dst *string) error {
	v, ok := extra[key]
	if !ok {
		return nil
	}
	delete(extra, key)
	if *dst != "" {
		return usageErrorf("--%s and --field %s=... are both set", key, key)
	}
	*dst = fmt.Sprint(v)
	return nil
}

func newRepoUpdateCommand(rt *runtime) *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   "update ID --field key=value...",
		Short: "Update fields of a repository",
		Args:  exactArgs(1, "ID"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(fields) == 0 {
				return usageErrorf("%s needs at least one --field", cmd.CommandPath())
			}
			delta, err := parseFields(fields)
			if err != nil {
				return err
			}
			return rt.call(cmd, func(ctx context.Context, s *pulp.Session) (pulp.Result, error) {
				return s.UpdateRepo(ctx, args[0], delta)
			})
		},
	}
	cmd.Flags().StringArrayVar(&fields, "field", nil, "field to change as key=value; JSON values are decoded")
	return cmd
}
