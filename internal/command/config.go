package command

import (
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"zephyr-upload/internal/domain"
	"zephyr-upload/internal/infrastructure"
	"zephyr-upload/internal/logging"
)

const defaultEnvFile = ".env"

// Configuration keys and the environment variables they are read from.
var envBindings = map[string]string{
	"base_url":       "ZEPHYR_BASE_URL",
	"api_token":      "ZEPHYR_API_TOKEN",
	"project_key":    "ZEPHYR_PROJECT_KEY",
	"cloud":          "ZEPHYR_IS_CLOUD",
	"api_url":        "ZEPHYR_API_URL",
	"timeout":        "ZEPHYR_TIMEOUT",
	"jira_url":       "JIRA_URL",
	"jira_username":  "JIRA_USERNAME",
	"jira_api_token": "JIRA_API_TOKEN",
	"log_level":      "ZEPHYR_LOG_LEVEL",
	"log_file":       "ZEPHYR_LOG_FILE",
}

// Configuration keys and the persistent flags that override them.
var flagBindings = map[string]string{
	"base_url":       "base-url",
	"api_token":      "api-token",
	"project_key":    "project-key",
	"cloud":          "cloud",
	"api_url":        "api-url",
	"timeout":        "timeout",
	"jira_url":       "jira-url",
	"jira_username":  "jira-username",
	"jira_api_token": "jira-api-token",
	"log_level":      "log-level",
	"log_file":       "log-file",
}

// addConfigFlags registers the connection flags shared by every subcommand.
func addConfigFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "YAML configuration file")
	flags.String("env-file", defaultEnvFile, "dotenv file loaded into the environment before reading it")

	flags.String("base-url", "", "Jira base URL (or set ZEPHYR_BASE_URL env var)")
	flags.String("api-token", "", "Zephyr Scale API token (or set ZEPHYR_API_TOKEN env var)")
	flags.String("project-key", "", "Jira project key (or set ZEPHYR_PROJECT_KEY env var)")
	flags.Bool("cloud", true, "use the Zephyr Scale Cloud API; --cloud=false for Server/Data Center (or set ZEPHYR_IS_CLOUD)")
	flags.String("api-url", "", "Zephyr Scale Cloud API URL override (or set ZEPHYR_API_URL env var)")
	flags.Duration("timeout", domain.DefaultTimeout, "per-request timeout (or set ZEPHYR_TIMEOUT env var)")

	flags.String("jira-url", "", "Jira URL used to resolve version names (or set JIRA_URL env var)")
	flags.String("jira-username", "", "Jira username (or set JIRA_USERNAME env var)")
	flags.String("jira-api-token", "", "Jira API token (or set JIRA_API_TOKEN env var)")

	flags.String("log-level", "info", "log level: debug, info, warn or error (or set ZEPHYR_LOG_LEVEL)")
	flags.String("log-file", "", "also write JSON logs to this file (or set ZEPHYR_LOG_FILE)")
}

// loadConfig resolves the configuration with precedence flags > environment >
// config file > defaults, and validates it.
func loadConfig(cmd *cobra.Command) (*domain.Config, error) {
	flags := cmd.Flags()

	envFile, _ := flags.GetString("env-file")
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			// the default file is optional
			if !(os.IsNotExist(err) && !flags.Changed("env-file")) {
				return nil, &domain.ConfigurationError{Err: errors.Wrapf(err, "failed to load env file %s", envFile)}
			}
		}
	}

	v := viper.New()
	v.SetDefault("cloud", true)
	v.SetDefault("timeout", domain.DefaultTimeout)
	v.SetDefault("log_level", "info")

	if path, _ := flags.GetString("config"); path != "" {
		fileCfg, err := domain.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		applyFileDefaults(v, fileCfg)
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, &domain.ConfigurationError{Err: err}
		}
	}
	for key, name := range flagBindings {
		if flag := flags.Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, &domain.ConfigurationError{Err: err}
			}
		}
	}

	timeout, err := timeoutValue(v)
	if err != nil {
		return nil, err
	}

	cloud := v.GetBool("cloud")
	cfg := &domain.Config{
		BaseURL:    v.GetString("base_url"),
		APIToken:   v.GetString("api_token"),
		ProjectKey: v.GetString("project_key"),
		Cloud:      &cloud,
		APIURL:     v.GetString("api_url"),
		Timeout:    timeout,
		Jira: domain.JiraConfig{
			URL:      v.GetString("jira_url"),
			Username: v.GetString("jira_username"),
			APIToken: v.GetString("jira_api_token"),
		},
		Log: domain.LogConfig{
			Level: v.GetString("log_level"),
			File:  v.GetString("log_file"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// timeoutValue reads the timeout key. A bare number such as ZEPHYR_TIMEOUT=30
// means seconds; anything else must be a Go duration like "45s" or "2m".
func timeoutValue(v *viper.Viper) (time.Duration, error) {
	raw, ok := v.Get("timeout").(string)
	if !ok {
		return v.GetDuration("timeout"), nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) || secs > math.MaxInt64/float64(time.Second) {
			return 0, &domain.ConfigurationError{Err: errors.Errorf("invalid timeout %q", raw)}
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, &domain.ConfigurationError{Err: errors.Errorf("invalid timeout %q: use seconds or a duration such as 45s", raw)}
	}
	return d, nil
}

func applyFileDefaults(v *viper.Viper, cfg *domain.Config) {
	setIfNotEmpty := func(key, value string) {
		if value != "" {
			v.SetDefault(key, value)
		}
	}

	setIfNotEmpty("base_url", cfg.BaseURL)
	setIfNotEmpty("api_token", cfg.APIToken)
	setIfNotEmpty("project_key", cfg.ProjectKey)
	setIfNotEmpty("api_url", cfg.APIURL)
	setIfNotEmpty("jira_url", cfg.Jira.URL)
	setIfNotEmpty("jira_username", cfg.Jira.Username)
	setIfNotEmpty("jira_api_token", cfg.Jira.APIToken)
	setIfNotEmpty("log_level", cfg.Log.Level)
	setIfNotEmpty("log_file", cfg.Log.File)
	if cfg.Cloud != nil {
		v.SetDefault("cloud", *cfg.Cloud)
	}
	if cfg.Timeout > 0 {
		v.SetDefault("timeout", cfg.Timeout)
	}
}

func newLogger(cmd *cobra.Command, cfg *domain.Config) (*zap.SugaredLogger, error) {
	log, err := logging.New(&logging.Config{
		Level:    cfg.Log.Level,
		Filename: cfg.Log.File,
		NoCaller: true,
		Console:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, &domain.ConfigurationError{Err: errors.Wrapf(err, "invalid log level %q", cfg.Log.Level)}
	}
	return log, nil
}

// newZephyrClient wires the authenticated HTTP client, the optional Jira
// version resolver and the Zephyr Scale client for cfg.
func newZephyrClient(cfg *domain.Config, log *zap.SugaredLogger) (*infrastructure.ZephyrClient, error) {
	httpClient, err := domain.NewAuthenticatedClient(cfg.Credentials(), cfg.RequestTimeout())
	if err != nil {
		return nil, &domain.ConfigurationError{Err: err}
	}

	opts := []infrastructure.Option{infrastructure.WithLogger(log)}
	if creds := cfg.JiraCredentials(); creds != nil {
		jiraHTTP, err := domain.NewAuthenticatedClient(creds, cfg.RequestTimeout())
		if err != nil {
			return nil, &domain.ConfigurationError{Err: err}
		}
		resolver, err := infrastructure.NewJiraVersionResolver(cfg.Jira.URL, jiraHTTP)
		if err != nil {
			return nil, &domain.ConfigurationError{Err: err}
		}
		opts = append(opts, infrastructure.WithVersionResolver(resolver))
	}

	log.Debugf("Using Zephyr Scale %s API at %s for project %s", cfg.Flavor(), cfg.APIBase(), cfg.ProjectKey)
	return infrastructure.NewZephyrClient(cfg.APIBase(), cfg.ProjectKey, cfg.Flavor(), httpClient, opts...), nil
}
