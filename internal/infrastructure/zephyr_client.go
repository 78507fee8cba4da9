package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"zephyr-upload/internal/domain"
)

// UserAgent is sent with every Zephyr Scale request.
const UserAgent = "zephyr-upload"

// folderPageSize is the page size used when listing cloud folders.
const folderPageSize = 1000

// ErrUnsupported is returned for operations the configured flavor has no endpoint for.
var ErrUnsupported = errors.New("operation not supported by this Zephyr Scale flavor")

// ZephyrClient handles Zephyr Scale REST API interactions for both the Cloud
// (API v2) and the Server/Data Center (API 1.0) flavors.
// It implements domain.ZephyrClient.
type ZephyrClient struct {
	client     *resty.Client
	baseURL    string
	projectKey string
	flavor     domain.Flavor
	versions   domain.VersionResolver
	log        *zap.SugaredLogger

	// resolved folder ids by type and name, cloud only
	folderIDs map[domain.FolderType]map[string]int64
}

// Option customizes a ZephyrClient.
type Option func(*ZephyrClient)

// WithVersionResolver sets the resolver used to turn Jira version names into ids.
func WithVersionResolver(r domain.VersionResolver) Option {
	return func(c *ZephyrClient) {
		c.versions = r
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *ZephyrClient) {
		c.log = log
	}
}

// NewZephyrClient creates a new Zephyr Scale API client.
// The baseURL is the API root (see domain.Config.APIBase) and httpClient
// should already carry authentication and timeout.
func NewZephyrClient(baseURL, projectKey string, flavor domain.Flavor, httpClient *http.Client, opts ...Option) *ZephyrClient {
	r := resty.NewWithClient(httpClient)
	r.SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", UserAgent)

	c := &ZephyrClient{
		client:     r,
		baseURL:    strings.TrimRight(baseURL, "/"),
		projectKey: projectKey,
		flavor:     flavor,
		log:        zap.NewNop().Sugar(),
		folderIDs:  map[domain.FolderType]map[string]int64{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API root.
func (c *ZephyrClient) BaseURL() string {
	return c.baseURL
}

// Flavor returns the deployment flavor the client talks to.
func (c *ZephyrClient) Flavor() domain.Flavor {
	return c.flavor
}

// CreateTestCase creates a test case and returns its key.
func (c *ZephyrClient) CreateTestCase(ctx context.Context, tc *domain.TestCase) (*domain.CreatedTestCase, error) {
	priority, err := domain.ParsePriority(string(tc.Priority))
	if err != nil {
		return nil, err
	}
	status := tc.Status
	if status == "" {
		status = domain.TestCaseDraft
	}
	labels := lo.Uniq(tc.Labels)

	var endpoint string
	var payload interface{}
	switch c.flavor {
	case domain.Cloud:
		folderID, err := c.folderID(ctx, domain.FolderTestCase, tc.Folder)
		if err != nil {
			return nil, err
		}
		endpoint = c.baseURL + "/testcases"
		payload = &cloudTestCasePayload{
			ProjectKey:   c.projectKey,
			Name:         tc.Name,
			Objective:    tc.Objective,
			Precondition: tc.Precondition,
			PriorityName: string(priority),
			StatusName:   string(status),
			Labels:       labels,
			FolderID:     folderID,
			TestScript:   newTestScript(tc.Steps),
			CustomFields: tc.CustomFields,
		}
	default:
		endpoint = c.baseURL + "/testcase"
		payload = &serverTestCasePayload{
			ProjectKey:   c.projectKey,
			Name:         tc.Name,
			Objective:    tc.Objective,
			Precondition: tc.Precondition,
			Priority:     string(priority),
			Status:       string(status),
			Labels:       labels,
			Folder:       tc.Folder,
			TestScript:   newTestScript(tc.Steps),
			CustomFields: tc.CustomFields,
		}
	}

	var created domain.CreatedTestCase
	body, err := c.post(ctx, "create test case", endpoint, payload)
	if err != nil {
		return nil, err
	}
	if err := decode(body, &created); err != nil {
		return nil, errors.Wrap(err, "create test case")
	}
	if created.Key == "" {
		return nil, &domain.APIError{Operation: "create test case", StatusCode: http.StatusOK, Body: string(body), Err: errors.New("response has no key")}
	}
	return &created, nil
}

// CreateTestCycle creates a test cycle (a test run on Server) and returns its key.
func (c *ZephyrClient) CreateTestCycle(ctx context.Context, cycle *domain.TestCycle) (*domain.CreatedTestCycle, error) {
	if strings.TrimSpace(cycle.Name) == "" {
		return nil, &domain.ValidationError{Field: "cycle name", Message: "test cycle name must not be empty"}
	}

	var endpoint string
	var payload interface{}
	switch c.flavor {
	case domain.Cloud:
		folderID, err := c.folderID(ctx, domain.FolderTestCycle, cycle.Folder)
		if err != nil {
			return nil, err
		}
		version, err := c.jiraVersionID(ctx, cycle.JiraVersion)
		if err != nil {
			return nil, err
		}
		endpoint = c.baseURL + "/testcycles"
		payload = &cloudTestCyclePayload{
			ProjectKey:         c.projectKey,
			Name:               cycle.Name,
			Description:        cycle.Description,
			JiraProjectVersion: version,
			FolderID:           folderID,
		}
	default:
		endpoint = c.baseURL + "/testrun"
		payload = &serverTestRunPayload{
			ProjectKey:  c.projectKey,
			Name:        cycle.Name,
			Description: cycle.Description,
			Version:     cycle.JiraVersion,
			Folder:      cycle.Folder,
		}
	}

	var created domain.CreatedTestCycle
	body, err := c.post(ctx, "create test cycle", endpoint, payload)
	if err != nil {
		return nil, err
	}
	if err := decode(body, &created); err != nil {
		return nil, errors.Wrap(err, "create test cycle")
	}
	if created.Key == "" {
		return nil, &domain.APIError{Operation: "create test cycle", StatusCode: http.StatusOK, Body: string(body), Err: errors.New("response has no key")}
	}
	return &created, nil
}

// CreateTestExecution records one execution result.
// The status is validated before anything is sent.
func (c *ZephyrClient) CreateTestExecution(ctx context.Context, exec *domain.TestExecution) (*domain.ExecutionRecord, error) {
	status, err := domain.ParseStatus(string(exec.Status))
	if err != nil {
		return nil, err
	}
	if exec.TestCaseKey == "" {
		return nil, &domain.ValidationError{Field: "test case key", Message: "an execution must reference a test case"}
	}

	var endpoint string
	var payload interface{}
	switch c.flavor {
	case domain.Cloud:
		if exec.TestCycleKey == "" {
			return nil, &domain.ValidationError{Field: "test cycle key", Message: "Zephyr Scale Cloud executions must reference a test cycle"}
		}
		endpoint = c.baseURL + "/testexecutions"
		payload = &cloudTestExecutionPayload{
			ProjectKey:      c.projectKey,
			TestCaseKey:     exec.TestCaseKey,
			TestCycleKey:    exec.TestCycleKey,
			StatusName:      string(status),
			Comment:         exec.Comment,
			ExecutionTime:   exec.ExecutionTime,
			EnvironmentName: exec.Environment,
			ExecutedByID:    exec.ExecutedBy,
			ActualResult:    exec.ActualResult,
		}
	default:
		result := &serverTestResultPayload{
			Status:        string(status),
			Comment:       exec.Comment,
			ExecutionTime: exec.ExecutionTime,
			Environment:   exec.Environment,
			ExecutedBy:    exec.ExecutedBy,
			ActualResult:  exec.ActualResult,
		}
		if exec.TestCycleKey != "" {
			endpoint = fmt.Sprintf("%s/testrun/%s/testcase/%s/testresult",
				c.baseURL, url.PathEscape(exec.TestCycleKey), url.PathEscape(exec.TestCaseKey))
		} else {
			endpoint = c.baseURL + "/testresult"
			result.ProjectKey = c.projectKey
			result.TestCaseKey = exec.TestCaseKey
		}
		payload = result
	}

	var record domain.ExecutionRecord
	body, err := c.post(ctx, "create test execution", endpoint, payload)
	if err != nil {
		return nil, err
	}
	if len(body) > 0 {
		if err := decode(body, &record); err != nil {
			return nil, errors.Wrap(err, "create test execution")
		}
	}
	return &record, nil
}

// ListFolders lists all folders of the given type in the project.
// Only Zephyr Scale Cloud exposes a folder listing.
func (c *ZephyrClient) ListFolders(ctx context.Context, folderType domain.FolderType) ([]domain.Folder, error) {
	if c.flavor != domain.Cloud {
		return nil, errors.Wrap(ErrUnsupported, "list folders")
	}

	var folders []domain.Folder
	for startAt := 0; ; {
		resp, err := c.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"projectKey": c.projectKey,
				"folderType": string(folderType),
				"maxResults": strconv.Itoa(folderPageSize),
				"startAt":    strconv.Itoa(startAt),
			}).
			Get(c.baseURL + "/folders")
		body, err := checkResponse("list folders", resp, err)
		if err != nil {
			return nil, err
		}

		var page cloudFolderPage
		if err := decode(body, &page); err != nil {
			return nil, errors.Wrap(err, "list folders")
		}
		folders = append(folders, page.Values...)
		if page.IsLast || len(page.Values) == 0 {
			break
		}
		startAt += len(page.Values)
	}
	return folders, nil
}

// CreateFolder creates a folder. On Server the folder name is the full path
// (e.g. "/Regression/API"); on Cloud it is a single name under ParentID.
func (c *ZephyrClient) CreateFolder(ctx context.Context, folder *domain.Folder) (*domain.Folder, error) {
	if strings.TrimSpace(folder.Name) == "" {
		return nil, &domain.ValidationError{Field: "folder name", Message: "folder name must not be empty"}
	}
	folderType := folder.FolderType
	if folderType == "" {
		folderType = domain.FolderTestCase
	}

	var endpoint string
	var payload interface{}
	switch c.flavor {
	case domain.Cloud:
		var parentID *int64
		if folder.ParentID != "" {
			id, err := strconv.ParseInt(folder.ParentID.String(), 10, 64)
			if err != nil {
				return nil, &domain.ValidationError{Field: "parent folder id", Value: folder.ParentID.String(), Message: "must be numeric"}
			}
			parentID = &id
		}
		endpoint = c.baseURL + "/folders"
		payload = &cloudFolderPayload{
			ParentID:   parentID,
			Name:       folder.Name,
			ProjectKey: c.projectKey,
			FolderType: string(folderType),
		}
	default:
		endpoint = c.baseURL + "/folder"
		payload = &serverFolderPayload{
			ProjectKey: c.projectKey,
			Name:       folder.Name,
			Type:       string(folderType),
		}
	}

	body, err := c.post(ctx, "create folder", endpoint, payload)
	if err != nil {
		return nil, err
	}

	created := &domain.Folder{
		ID:         domain.FlexibleID(gjson.GetBytes(body, "id").String()),
		ParentID:   folder.ParentID,
		Name:       folder.Name,
		FolderType: folderType,
	}
	return created, nil
}

// post sends one JSON POST request and returns the body of a 2xx response.
func (c *ZephyrClient) post(ctx context.Context, operation, endpoint string, payload interface{}) ([]byte, error) {
	c.log.Debugf("POST %s (%s)", endpoint, operation)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(endpoint)
	return checkResponse(operation, resp, err)
}

// checkResponse turns transport failures and non-2xx answers into *domain.APIError.
func checkResponse(operation string, resp *resty.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, &domain.APIError{Operation: operation, Err: err}
	}
	if !resp.IsSuccess() {
		return nil, &domain.APIError{
			Operation:  operation,
			StatusCode: resp.StatusCode(),
			Body:       string(resp.Body()),
			Err:        errors.New(resp.Status()),
		}
	}
	return resp.Body(), nil
}

func decode(body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}

// folderID returns the cloud folder id for a folder given either as a numeric
// id or as a path whose last segment names the folder. Empty means no folder.
func (c *ZephyrClient) folderID(ctx context.Context, folderType domain.FolderType, folder string) (*int64, error) {
	folder = strings.TrimSpace(folder)
	if folder == "" {
		return nil, nil
	}
	if id, err := strconv.ParseInt(folder, 10, 64); err == nil {
		return &id, nil
	}

	name := path.Base("/" + strings.Trim(folder, "/"))
	if ids, ok := c.folderIDs[folderType]; ok {
		if id, ok := ids[name]; ok {
			return &id, nil
		}
	}

	folders, err := c.ListFolders(ctx, folderType)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int64, len(folders))
	for _, f := range folders {
		if id, err := strconv.ParseInt(f.ID.String(), 10, 64); err == nil {
			if _, dup := ids[f.Name]; !dup {
				ids[f.Name] = id
			}
		}
	}
	c.folderIDs[folderType] = ids

	id, ok := ids[name]
	if !ok {
		return nil, &domain.ValidationError{Field: "folder", Value: folder, Message: fmt.Sprintf("no %s folder named %q in project %s", folderType, name, c.projectKey)}
	}
	return &id, nil
}

// jiraVersionID returns the numeric Jira version id for the cloud payload.
// Names are resolved through the version resolver; without one they are dropped.
func (c *ZephyrClient) jiraVersionID(ctx context.Context, version string) (*int64, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		return nil, nil
	}
	if id, err := strconv.ParseInt(version, 10, 64); err == nil {
		return &id, nil
	}
	if c.versions == nil {
		c.log.Warnf("Jira version %q ignored: Zephyr Scale Cloud needs a numeric id and no Jira credentials are configured", version)
		return nil, nil
	}

	resolved, err := c.versions.ResolveVersionID(ctx, c.projectKey, version)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(resolved, 10, 64)
	if err != nil {
		return nil, &domain.ValidationError{Field: "jira version", Value: version, Message: fmt.Sprintf("resolved to non-numeric id %q", resolved)}
	}
	return &id, nil
}
