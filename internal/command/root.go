package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const longDescription = `zephyr-upload uploads test cases and test execution results to Zephyr Scale.
Both Zephyr Scale Cloud and Server/Data Center are supported.

Examples:
  # Upload JUnit XML results (pytest --junitxml, surefire, go-junit-report, ...)
  zephyr-upload --junit results.xml

  # Upload custom JSON or YAML results
  zephyr-upload --json results.json
  zephyr-upload --yaml results.yaml

  # Create a single test case
  zephyr-upload --create-test "My Test" --objective "Test description"

Environment Variables:
  ZEPHYR_BASE_URL     - Jira base URL
  ZEPHYR_API_TOKEN    - Zephyr Scale API token
  ZEPHYR_PROJECT_KEY  - Jira project key
  ZEPHYR_IS_CLOUD     - Set to 'true' for Cloud, 'false' for Server/DC`

// NewRootCommand builds the command tree. Progress and summaries go to
// stdout, logs and errors to stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &uploadFlags{}

	rootCmd := &cobra.Command{
		Use:           "zephyr-upload",
		Short:         "Upload test cases and results to Zephyr Scale",
		Long:          longDescription,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, opts)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &ExitError{Code: ExitConfiguration, Err: err}
	})

	addConfigFlags(rootCmd)
	opts.register(rootCmd)

	rootCmd.AddCommand(newFoldersCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the command line and returns the process exit code.
// SIGINT and SIGTERM cancel the in-flight request; records already created
// remotely are left in place.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand(os.Stdout, os.Stderr)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Error: %v\n", err)
	}
	return ExitCode(err)
}
