package cli

import (
	"context"

	"github.com/pulp-tools/pic/pkg/pulp"
	"github.com/spf13/cobra"
)

// newVerbCommands returns the raw get/post/put/delete commands. PATH is
// relative to the API prefix.
func newVerbCommands(rt *runtime) []*cobra.Command {
	var params []string
	getCmd := &cobra.Command{
		Use:   "get PATH",
		Short: "Send a GET request",
		Args:  exactArgs(1, "PATH"),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseParams(params)
			if err != nil {
				return err
			}
			return rt.call(cmd, func(ctx context.Context, s *pulp.Session) (pulp.Result, error) {
				return s.Get(ctx, args[0], query)
			})
		},
	}
	getCmd.Flags().StringArrayVar(&params, "param", nil, "query parameter as key=value, repeatable")

	var postData string
	postCmd := &cobra.Command{
		Use:   "post PATH",
		Short: "Send a POST request",
		Args:  exactArgs(1, "PATH"),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := parseBody(postData)
			if err != nil {
				return err
			}
			return rt.call(cmd, func(ctx context.Context, s *pulp.Session) (pulp.Result, error) {
				return s.Post(ctx, args[0], body)
			})
		},
	}
	postCmd.Flags().StringVar(&postData, "data", "", "JSON object or array to send")

	var putData string
	putCmd := &cobra.Command{
		Use:   "put PATH --data JSON",
		Short: "Send a PUT request",
		Args:  exactArgs(1, "PATH"),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := parseBody(putData)
			if err != nil {
				return err
			}
			if !body.Present() {
				return usageErrorf("%s needs --data", cmd.CommandPath())
			}
			return rt.call(cmd, func(ctx context.Context, s *pulp.Session) (pulp.Result, error) {
				return s.Put(ctx, args[0], body)
			})
		},
	}
	putCmd.Flags().StringVar(&putData, "data", "", "JSON object or array to send")

	deleteCmd := &cobra.Command{
		Use:   "delete PATH",
		Short: "Send a DELETE request",
		Args:  exactArgs(1, "PATH"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.call(cmd, func(ctx context.Context, s *pulp.Session) (pulp.Result, error) {
				return s.Delete(ctx, args[0])
			})
		},
	}

	return []*cobra.Command{getCmd, postCmd, putCmd, deleteCmd}
}
