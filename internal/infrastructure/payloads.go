package infrastructure

import (
	"zephyr-upload/internal/domain"
)

// testScript is the inline step-by-step script accepted by both flavors.
type testScript struct {
	Type  string        `json:"type"`
	Steps []domain.Step `json:"steps"`
}

func newTestScript(steps []domain.Step) *testScript {
	if len(steps) == 0 {
		return nil
	}
	return &testScript{Type: "STEP_BY_STEP", Steps: steps}
}

// Zephyr Scale Cloud (API v2) request bodies.

type cloudTestCasePayload struct {
	ProjectKey   string                 `json:"projectKey"`
	Name         string                 `json:"name"`
	Objective    string                 `json:"objective,omitempty"`
	Precondition string                 `json:"precondition,omitempty"`
	PriorityName string                 `json:"priorityName"`
	StatusName   string                 `json:"statusName"`
	Labels       []string               `json:"labels,omitempty"`
	FolderID     *int64                 `json:"folderId,omitempty"`
	TestScript   *testScript            `json:"testScript,omitempty"`
	CustomFields map[string]interface{} `json:"customFields,omitempty"`
}

type cloudTestCyclePayload struct {
	ProjectKey         string `json:"projectKey"`
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	JiraProjectVersion *int64 `json:"jiraProjectVersion,omitempty"`
	FolderID           *int64 `json:"folderId,omitempty"`
}

type cloudTestExecutionPayload struct {
	ProjectKey      string `json:"projectKey"`
	TestCaseKey     string `json:"testCaseKey"`
	TestCycleKey    string `json:"testCycleKey"`
	StatusName      string `json:"statusName"`
	Comment         string `json:"comment,omitempty"`
	ExecutionTime   int64  `json:"executionTime,omitempty"`
	EnvironmentName string `json:"environmentName,omitempty"`
	ExecutedByID    string `json:"executedById,omitempty"`
	ActualResult    string `json:"actualResult,omitempty"`
}

type cloudFolderPayload struct {
	ParentID   *int64 `json:"parentId,omitempty"`
	Name       string `json:"name"`
	ProjectKey string `json:"projectKey"`
	FolderType string `json:"folderType"`
}

type cloudFolderPage struct {
	StartAt    int             `json:"startAt"`
	MaxResults int             `json:"maxResults"`
	Total      int             `json:"total"`
	IsLast     bool            `json:"isLast"`
	Values     []domain.Folder `json:"values"`
}

// Zephyr Scale Server/Data Center (API 1.0) request bodies.

type serverTestCasePayload struct {
	ProjectKey   string                 `json:"projectKey"`
	Name         string                 `json:"name"`
	Objective    string                 `json:"objective,omitempty"`
	Precondition string                 `json:"precondition,omitempty"`
	Priority     string                 `json:"priority"`
	Status       string                 `json:"status"`
	Labels       []string               `json:"labels,omitempty"`
	Folder       string                 `json:"folder,omitempty"`
	TestScript   *testScript            `json:"testScript,omitempty"`
	CustomFields map[string]interface{} `json:"customFields,omitempty"`
}

type serverTestRunPayload struct {
	ProjectKey  string `json:"projectKey"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
	Folder      string `json:"folder,omitempty"`
}

type serverTestResultPayload struct {
	ProjectKey    string `json:"projectKey,omitempty"`
	TestCaseKey   string `json:"testCaseKey,omitempty"`
	Status        string `json:"status"`
	Comment       string `json:"comment,omitempty"`
	ExecutionTime int64  `json:"executionTime,omitempty"`
	Environment   string `json:"environment,omitempty"`
	ExecutedBy    string `json:"executedBy,omitempty"`
	ActualResult  string `json:"actualResult,omitempty"`
}

type serverFolderPayload struct {
	ProjectKey string `json:"projectKey"`
	Name       string `json:"name"`
	Type       string `json:"type"`
}
