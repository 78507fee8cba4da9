package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	jira "github.com/andygrunwald/go-jira"
	"github.com/pkg/errors"

	"zephyr-upload/internal/domain"
)

// JiraVersionResolver looks up Jira release versions by name.
// Zephyr Scale Cloud links test cycles to a version by its numeric id while
// users know versions by name ("2.4.0"), so names are resolved through the
// Jira REST API of the project.
type JiraVersionResolver struct {
	baseURL string
	client  *jira.Client
}

// NewJiraVersionResolver creates a resolver for the Jira instance at baseURL.
// The httpClient should be an authenticated client (basic auth with the Jira
// username and API token).
func NewJiraVersionResolver(baseURL string, httpClient *http.Client) (*JiraVersionResolver, error) {
	client, err := jira.NewClient(httpClient, baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create Jira client for %s", baseURL)
	}
	return &JiraVersionResolver{baseURL: baseURL, client: client}, nil
}

// BaseURL returns the configured Jira base URL.
func (r *JiraVersionResolver) BaseURL() string {
	return r.baseURL
}

// ResolveVersionID returns the id of the version named version in the project.
// Numeric input is returned as is without a request.
func (r *JiraVersionResolver) ResolveVersionID(ctx context.Context, projectKey, version string) (string, error) {
	version = strings.TrimSpace(version)
	if _, err := strconv.ParseInt(version, 10, 64); err == nil {
		return version, nil
	}

	project, resp, err := r.client.Project.GetWithContext(ctx, projectKey)
	if err != nil {
		apiErr := &domain.APIError{Operation: "get Jira project " + projectKey, Err: err}
		if resp != nil {
			apiErr.StatusCode = resp.StatusCode
		}
		return "", apiErr
	}

	for _, v := range project.Versions {
		if v.Name == version {
			return v.ID, nil
		}
	}

	return "", &domain.ValidationError{
		Field:   "jira version",
		Value:   version,
		Message: fmt.Sprintf("no such version in Jira project %s", projectKey),
	}
}
