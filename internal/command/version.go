package command

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build information, set with -ldflags "-X zephyr-upload/internal/command.Version=...".
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of zephyr-upload",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "zephyr-upload version %s %s/%s\n", Version, runtime.GOOS, runtime.GOARCH)
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Build Time: %s\n", BuildTime)
			fmt.Fprintf(out, "Build Commit: %s\n", Commit)
			fmt.Fprintf(out, "Build Go Version: %s\n", runtime.Version())
		},
	}
}
