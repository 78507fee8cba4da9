package domain

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func boolPtr(b bool) *bool { return &b }

// TestLoadConfig_ValidYAML tests loading a valid YAML configuration file.
func TestLoadConfig_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "zephyr.yaml")

	validConfig := `
base_url: https://jira.example.com
api_token: secret
project_key: PROJ
cloud: false
timeout: 45s
jira:
  url: https://jira.example.com
  username: bot@example.com
  api_token: jira-secret
log:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(validConfig), 0644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}

	if config.BaseURL != "https://jira.example.com" {
		t.Errorf("BaseURL = %s, want https://jira.example.com", config.BaseURL)
	}
	if config.ProjectKey != "PROJ" {
		t.Errorf("ProjectKey = %s, want PROJ", config.ProjectKey)
	}
	if config.Cloud == nil || *config.Cloud {
		t.Errorf("Cloud = %v, want false", config.Cloud)
	}
	if config.Timeout != 45*time.Second {
		t.Errorf("Timeout = %s, want 45s", config.Timeout)
	}
	if config.Jira.Username != "bot@example.com" {
		t.Errorf("Jira.Username = %s, want bot@example.com", config.Jira.Username)
	}
	if config.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, want debug", config.Log.Level)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

// TestLoadConfig_MissingFile tests error handling when configuration file is missing.
func TestLoadConfig_MissingFile(t *testing.T) {
	config, err := LoadConfig("/nonexistent/path/zephyr.yaml")
	if err == nil {
		t.Fatal("LoadConfig() error = nil, want error for missing file")
	}
	if config != nil {
		t.Errorf("LoadConfig() config = %v, want nil", config)
	}

	var configErr *ConfigurationError
	if !errors.As(err, &configErr) {
		t.Errorf("error should be a ConfigurationError, got %T", err)
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Error message should mention 'not found', got: %s", err.Error())
	}
}

// TestLoadConfig_InvalidYAMLSyntax tests error handling for invalid YAML syntax.
func TestLoadConfig_InvalidYAMLSyntax(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "zephyr.yaml")

	invalidYAML := `
base_url: https://jira.example.com
  invalid yaml syntax here: [unclosed bracket
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	config, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("LoadConfig() error = nil, want error for invalid YAML")
	}
	if config != nil {
		t.Errorf("LoadConfig() config = %v, want nil", config)
	}
	if !strings.Contains(err.Error(), "invalid YAML") {
		t.Errorf("Error message should mention 'invalid YAML', got: %s", err.Error())
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			BaseURL:    "https://jira.example.com",
			APIToken:   "token",
			ProjectKey: "PROJ",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr []string
	}{
		{
			name:   "valid minimal config",
			mutate: func(c *Config) {},
		},
		{
			name: "everything missing",
			mutate: func(c *Config) {
				c.BaseURL, c.APIToken, c.ProjectKey = "", "", ""
			},
			wantErr: []string{"base URL is required", "API token is required", "project key is required"},
		},
		{
			name:    "base URL without scheme",
			mutate:  func(c *Config) { c.BaseURL = "jira.example.com" },
			wantErr: []string{"base URL must use http or https scheme"},
		},
		{
			name:    "base URL without host",
			mutate:  func(c *Config) { c.BaseURL = "https://" },
			wantErr: []string{"base URL must include a host"},
		},
		{
			name:    "invalid API URL",
			mutate:  func(c *Config) { c.APIURL = "ftp://api.example.com" },
			wantErr: []string{"API URL must use http or https scheme"},
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Timeout = -time.Second },
			wantErr: []string{"invalid timeout"},
		},
		{
			name:    "partial Jira credentials",
			mutate:  func(c *Config) { c.Jira.Username = "bot" },
			wantErr: []string{"Jira URL is required", "Jira API token is required"},
		},
		{
			name: "complete Jira credentials",
			mutate: func(c *Config) {
				c.Jira = JiraConfig{URL: "https://jira.example.com", Username: "bot", APIToken: "t"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()

			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			var configErr *ConfigurationError
			if !errors.As(err, &configErr) {
				t.Errorf("error should be a ConfigurationError, got %T", err)
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q should contain %q", err.Error(), want)
				}
			}
		})
	}
}

func TestConfig_FlavorAndAPIBase(t *testing.T) {
	tests := []struct {
		name       string
		config     Config
		wantFlavor Flavor
		wantBase   string
	}{
		{
			name:       "cloud by default",
			config:     Config{BaseURL: "https://example.atlassian.net"},
			wantFlavor: Cloud,
			wantBase:   DefaultCloudAPIURL,
		},
		{
			name:       "cloud with API URL override",
			config:     Config{Cloud: boolPtr(true), APIURL: "https://eu.api.zephyrscale.smartbear.com/v2/"},
			wantFlavor: Cloud,
			wantBase:   "https://eu.api.zephyrscale.smartbear.com/v2",
		},
		{
			name:       "server",
			config:     Config{Cloud: boolPtr(false), BaseURL: "https://jira.example.com/"},
			wantFlavor: Server,
			wantBase:   "https://jira.example.com/rest/atm/1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.Flavor(); got != tt.wantFlavor {
				t.Errorf("Flavor() = %s, want %s", got, tt.wantFlavor)
			}
			if got := tt.config.APIBase(); got != tt.wantBase {
				t.Errorf("APIBase() = %s, want %s", got, tt.wantBase)
			}
		})
	}
}

func TestConfig_RequestTimeout(t *testing.T) {
	c := &Config{}
	if got := c.RequestTimeout(); got != DefaultTimeout {
		t.Errorf("RequestTimeout() = %s, want %s", got, DefaultTimeout)
	}
	c.Timeout = 5 * time.Second
	if got := c.RequestTimeout(); got != 5*time.Second {
		t.Errorf("RequestTimeout() = %s, want 5s", got)
	}
}

func TestConfig_JiraCredentials(t *testing.T) {
	c := &Config{}
	if creds := c.JiraCredentials(); creds != nil {
		t.Errorf("JiraCredentials() = %+v, want nil without Jira config", creds)
	}

	c.Jira = JiraConfig{URL: "https://jira.example.com", Username: "bot", APIToken: "t"}
	creds := c.JiraCredentials()
	if creds == nil {
		t.Fatal("JiraCredentials() = nil, want credentials")
	}
	if creds.Type != BasicAuth || creds.Username != "bot" || creds.Password != "t" {
		t.Errorf("JiraCredentials() = %+v, want basic bot/t", creds)
	}
}
