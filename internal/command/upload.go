package command

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"zephyr-upload/internal/application"
	"zephyr-upload/internal/domain"
	"zephyr-upload/internal/report"
)

// uploadFlags are the flags of the root (upload) command.
type uploadFlags struct {
	junit      string
	json       string
	yaml       string
	createTest string

	objective string
	priority  string
	folder    string
	labels    []string

	cycleName        string
	cycleKey         string
	cycleDescription string
	cycleFolder      string
	jiraVersion      string
	environment      string
	errorStatus      string
}

func (f *uploadFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVar(&f.junit, "junit", "", "path to a JUnit XML results file")
	flags.StringVar(&f.json, "json", "", "path to a JSON results file")
	flags.StringVar(&f.yaml, "yaml", "", "path to a YAML results file")
	flags.StringVar(&f.createTest, "create-test", "", "create a single test case with this name")

	flags.StringVar(&f.objective, "objective", "", "test case objective (used with --create-test)")
	flags.StringVar(&f.priority, "priority", "", "test case priority: Critical, High, Normal or Low (used with --create-test)")
	flags.StringVar(&f.folder, "folder", "", "test case folder path or id (used with --create-test)")
	flags.StringSliceVar(&f.labels, "labels", nil, "comma-separated test case labels (used with --create-test)")

	flags.StringVar(&f.cycleName, "cycle-name", "", "test cycle name (defaults to the file's cycle_name or a timestamped name)")
	flags.StringVar(&f.cycleKey, "cycle-key", "", "existing test cycle key; no cycle is created")
	flags.StringVar(&f.cycleDescription, "cycle-description", "", "test cycle description")
	flags.StringVar(&f.cycleFolder, "cycle-folder", "", "test cycle folder path or id")
	flags.StringVar(&f.jiraVersion, "jira-version", "", "Jira release version linked to the test cycle (name or id)")
	flags.StringVar(&f.environment, "environment", "", "environment for executions that do not name one")
	flags.StringVar(&f.errorStatus, "error-status", string(domain.StatusBlocked), "execution status for JUnit test cases with an <error> element")
}

// inputMode returns the flag naming the single selected input mode.
func (f *uploadFlags) inputMode() (string, error) {
	var modes []string
	if f.junit != "" {
		modes = append(modes, "--junit")
	}
	if f.json != "" {
		modes = append(modes, "--json")
	}
	if f.yaml != "" {
		modes = append(modes, "--yaml")
	}
	if f.createTest != "" {
		modes = append(modes, "--create-test")
	}

	switch len(modes) {
	case 0:
		return "", usageError("no input given: use one of --junit, --json, --yaml or --create-test")
	case 1:
		return modes[0], nil
	default:
		return "", usageError("only one input mode may be given, got %s", strings.Join(modes, ", "))
	}
}

// bundle reads the selected input into a result bundle and the matching upload options.
func (f *uploadFlags) bundle(mode string) (*domain.ResultBundle, application.UploadOptions, error) {
	opts := application.UploadOptions{
		CycleKey:         f.cycleKey,
		CycleName:        f.cycleName,
		CyclePrefix:      application.BundleCyclePrefix,
		CycleDescription: f.cycleDescription,
		CycleFolder:      f.cycleFolder,
		JiraVersion:      f.jiraVersion,
		Environment:      f.environment,
	}

	var bundle *domain.ResultBundle
	var err error
	switch mode {
	case "--junit":
		errorStatus, perr := domain.ParseStatus(f.errorStatus)
		if perr != nil {
			return nil, opts, &ExitError{Code: ExitConfiguration, Err: errors.Wrap(perr, "--error-status")}
		}
		opts.CyclePrefix = application.JUnitCyclePrefix
		bundle, err = report.ParseJUnitFile(f.junit, report.JUnitOptions{ErrorStatus: errorStatus})
	case "--json":
		bundle, err = report.ParseBundleFile(f.json, report.FormatJSON)
	case "--yaml":
		bundle, err = report.ParseBundleFile(f.yaml, report.FormatYAML)
	case "--create-test":
		opts.CreateOnly = true
		bundle = &domain.ResultBundle{Records: []domain.ResultRecord{{
			Name:      f.createTest,
			Objective: f.objective,
			Priority:  f.priority,
			Labels:    f.labels,
			Folder:    f.folder,
		}}}
	default:
		err = fmt.Errorf("unknown input mode %s", mode)
	}
	return bundle, opts, err
}

func runUpload(cmd *cobra.Command, f *uploadFlags) error {
	mode, err := f.inputMode()
	if err != nil {
		_ = cmd.Help()
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	bundle, opts, err := f.bundle(mode)
	if err != nil {
		return err
	}
	log.Infof("Uploading %d record(s) from %s to project %s (%s)", len(bundle.Records), mode, cfg.ProjectKey, cfg.Flavor())

	client, err := newZephyrClient(cfg, log)
	if err != nil {
		return err
	}

	uploader := application.NewUploader(client, cmd.OutOrStdout(), log)
	summary := uploader.Upload(cmd.Context(), bundle, opts)
	if !summary.OK() {
		return &ExitError{
			Code: ExitRecordFailures,
			Err:  fmt.Errorf("%d of %d record(s) failed to upload", summary.Failed(), summary.Total),
		}
	}
	return nil
}
