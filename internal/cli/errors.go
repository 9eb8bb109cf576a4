package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/pulp-tools/pic/pkg/pulp"
	"github.com/spf13/cobra"
)

// Exit statuses returned by the pic binary.
const (
	ExitOK      = 0
	ExitFailure = 1
	// ExitUsage matches EX_USAGE from sysexits.h.
	ExitUsage = 64
)

// UsageError reports a command line the CLI cannot act on.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

func usageErrorf(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// ExitCode maps an error returned by the command tree to a process status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ue *UsageError
	if errors.As(err, &ue) {
		return ExitUsage
	}
	return ExitFailure
}

// Report writes a human readable description of err to w.
func Report(w io.Writer, err error) {
	if err == nil {
		return
	}
	var reqErr *pulp.RequestError
	var ue *UsageError
	switch {
	case errors.As(err, &reqErr):
		fmt.Fprintf(w, "server response: %d\n", reqErr.Status)
		if reason := reqErr.Reason(); reason != "" {
			fmt.Fprintln(w, reason)
		}
	case errors.As(err, &ue):
		fmt.Fprintln(w, ue.Msg)
		fmt.Fprintln(w, "Run 'pic --help' for usage.")
	default:
		fmt.Fprintf(w, "error: %v\n", err)
	}
}

func exactArgs(n int, names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == n {
			return nil
		}
		if len(names) > 0 {
			return usageErrorf("%s expects %v, got %d argument(s)", cmd.CommandPath(), names, len(args))
		}
		return usageErrorf("%s expects %d argument(s), got %d", cmd.CommandPath(), n, len(args))
	}
}
