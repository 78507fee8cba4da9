package domain

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultCloudAPIURL is the Zephyr Scale Cloud REST API root.
	DefaultCloudAPIURL = "https://api.zephyrscale.smartbear.com/v2"

	// ServerAPIPath is appended to the Jira base URL for Server/Data Center instances.
	ServerAPIPath = "/rest/atm/1.0"

	// DefaultTimeout bounds every single HTTP request.
	DefaultTimeout = 30 * time.Second
)

// Flavor selects the Zephyr Scale deployment the uploader talks to.
type Flavor int

const (
	// Cloud is Zephyr Scale Cloud (api.zephyrscale.smartbear.com, API v2).
	Cloud Flavor = iota
	// Server is Zephyr Scale Server/Data Center (Jira-hosted, API 1.0).
	Server
)

// String returns the string representation of Flavor.
func (f Flavor) String() string {
	switch f {
	case Cloud:
		return "cloud"
	case Server:
		return "server"
	default:
		return "unknown"
	}
}

// Config represents the uploader configuration.
// It can be loaded from a YAML file and is then layered with environment
// variables and command-line flags by the command package.
type Config struct {
	BaseURL    string        `yaml:"base_url"`
	APIToken   string        `yaml:"api_token"`
	ProjectKey string        `yaml:"project_key"`
	Cloud      *bool         `yaml:"cloud,omitempty"` // nil means cloud
	APIURL     string        `yaml:"api_url,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	Jira       JiraConfig    `yaml:"jira,omitempty"`
	Log        LogConfig     `yaml:"log,omitempty"`
}

// JiraConfig holds optional Jira credentials.
// They are only needed to resolve Jira release version names into ids.
type JiraConfig struct {
	URL      string `yaml:"url,omitempty"`
	Username string `yaml:"username,omitempty"`
	APIToken string `yaml:"api_token,omitempty"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

// Configured reports whether any Jira credential field was provided.
func (j JiraConfig) Configured() bool {
	return j.URL != "" || j.Username != "" || j.APIToken != ""
}

// LoadConfig reads configuration from a YAML file.
// The result is not validated: values may still be completed from the
// environment or flags before Validate is called.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigurationError{Err: fmt.Errorf("configuration file not found: %s", path)}
		}
		return nil, &ConfigurationError{Err: fmt.Errorf("failed to read configuration file: %w", err)}
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, &ConfigurationError{Err: fmt.Errorf("invalid YAML syntax in configuration file: %w", err)}
	}

	return &config, nil
}

// Flavor returns the deployment flavor selected by the configuration.
func (c *Config) Flavor() Flavor {
	if c.Cloud == nil || *c.Cloud {
		return Cloud
	}
	return Server
}

// APIBase returns the root URL every Zephyr Scale endpoint path is appended to.
func (c *Config) APIBase() string {
	if c.Flavor() == Cloud {
		if c.APIURL != "" {
			return strings.TrimRight(c.APIURL, "/")
		}
		return DefaultCloudAPIURL
	}
	return strings.TrimRight(c.BaseURL, "/") + ServerAPIPath
}

// RequestTimeout returns the per-request timeout, falling back to DefaultTimeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// Credentials returns the bearer credentials used for Zephyr Scale requests.
func (c *Config) Credentials() *Credentials {
	return &Credentials{Type: TokenAuth, Token: c.APIToken}
}

// JiraCredentials returns basic credentials for the Jira REST API,
// or nil when no Jira credentials are configured.
func (c *Config) JiraCredentials() *Credentials {
	if !c.Jira.Configured() {
		return nil
	}
	return &Credentials{Type: BasicAuth, Username: c.Jira.Username, Password: c.Jira.APIToken}
}

// Validate checks the configuration for completeness and correctness.
// Every problem is reported, wrapped in a ConfigurationError.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.BaseURL == "" {
		result = multierror.Append(result, fmt.Errorf("base URL is required (use --base-url or ZEPHYR_BASE_URL)"))
	} else if err := validateURL("base URL", c.BaseURL); err != nil {
		result = multierror.Append(result, err)
	}

	if c.APIToken == "" {
		result = multierror.Append(result, fmt.Errorf("API token is required (use --api-token or ZEPHYR_API_TOKEN)"))
	}

	if c.ProjectKey == "" {
		result = multierror.Append(result, fmt.Errorf("project key is required (use --project-key or ZEPHYR_PROJECT_KEY)"))
	}

	if c.APIURL != "" {
		if err := validateURL("API URL", c.APIURL); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if c.Timeout < 0 {
		result = multierror.Append(result, fmt.Errorf("invalid timeout %s: must not be negative", c.Timeout))
	}

	if err := c.Jira.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		return &ConfigurationError{Err: err}
	}
	return nil
}

// Validate validates the Jira credentials. All or none of the fields must be set.
func (j JiraConfig) Validate() error {
	if !j.Configured() {
		return nil
	}

	var errors []string
	if j.URL == "" {
		errors = append(errors, "Jira URL is required when Jira credentials are given")
	} else if err := validateURL("Jira URL", j.URL); err != nil {
		errors = append(errors, err.Error())
	}
	if j.Username == "" {
		errors = append(errors, "Jira username is required when Jira credentials are given")
	}
	if j.APIToken == "" {
		errors = append(errors, "Jira API token is required when Jira credentials are given")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}
	return nil
}

func validateURL(name, raw string) error {
	parsedURL, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is invalid: %v", name, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s must use http or https scheme", name)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}
