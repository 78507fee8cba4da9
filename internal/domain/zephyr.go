package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlexibleID is a type that can unmarshal both string and numeric IDs from JSON.
// Zephyr Scale Cloud returns numeric ids, Server returns strings in some places.
type FlexibleID string

// UnmarshalJSON implements custom unmarshaling to handle both string and numeric IDs.
func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleID(n.String())
		return nil
	}

	return fmt.Errorf("id must be a string or number")
}

// String returns the string representation of the ID.
func (f FlexibleID) String() string {
	return string(f)
}

// Priority of a test case.
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityNormal   Priority = "Normal"
	PriorityLow      Priority = "Low"
)

// Priorities lists every accepted priority.
var Priorities = []Priority{PriorityCritical, PriorityHigh, PriorityNormal, PriorityLow}

// ParsePriority validates p. An empty value yields PriorityNormal.
func ParsePriority(p string) (Priority, error) {
	if p == "" {
		return PriorityNormal, nil
	}
	for _, known := range Priorities {
		if string(known) == p {
			return known, nil
		}
	}
	return "", &ValidationError{Field: "priority", Value: p, Message: "must be one of " + joinValues(Priorities)}
}

// Status of a test execution. Values are matched case-sensitively by Zephyr Scale.
type Status string

const (
	StatusPass        Status = "Pass"
	StatusFail        Status = "Fail"
	StatusBlocked     Status = "Blocked"
	StatusNotExecuted Status = "Not Executed"
)

// Statuses lists every accepted execution status.
var Statuses = []Status{StatusPass, StatusFail, StatusBlocked, StatusNotExecuted}

// ParseStatus validates s against the known execution statuses.
func ParseStatus(s string) (Status, error) {
	for _, known := range Statuses {
		if string(known) == s {
			return known, nil
		}
	}
	return "", &ValidationError{Field: "status", Value: s, Message: "must be one of " + joinValues(Statuses)}
}

// TestCaseStatus is the workflow state of a test case definition.
type TestCaseStatus string

const (
	TestCaseDraft      TestCaseStatus = "Draft"
	TestCaseApproved   TestCaseStatus = "Approved"
	TestCaseDeprecated TestCaseStatus = "Deprecated"
)

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// Step is one step of a step-by-step test script.
type Step struct {
	Description    string `json:"description" yaml:"description"`
	TestData       string `json:"testData,omitempty" yaml:"testData,omitempty"`
	ExpectedResult string `json:"expectedResult" yaml:"expectedResult"`
}

// TestCase is a test case definition to create.
type TestCase struct {
	Name         string
	Objective    string
	Precondition string
	Steps        []Step
	Priority     Priority
	Status       TestCaseStatus
	Labels       []string
	Folder       string
	CustomFields map[string]interface{}
}

// Validate checks the fields Zephyr Scale would otherwise reject.
func (tc *TestCase) Validate() error {
	if strings.TrimSpace(tc.Name) == "" {
		return &ValidationError{Field: "name", Message: "test case name must not be empty"}
	}
	if _, err := ParsePriority(string(tc.Priority)); err != nil {
		return err
	}
	return nil
}

// TestCycle is a test cycle (a "test run" on Server) to create.
type TestCycle struct {
	Name        string
	Description string
	JiraVersion string
	Folder      string
}

// TestExecution is one execution result to record.
type TestExecution struct {
	TestCaseKey   string
	TestCycleKey  string
	Status        Status
	Comment       string
	ExecutionTime int64 // milliseconds, omitted when zero
	Environment   string
	ExecutedBy    string
	ActualResult  string
}

// CreatedTestCase is the server answer to a test case creation.
type CreatedTestCase struct {
	ID   FlexibleID `json:"id"`
	Key  string     `json:"key"`
	Self string     `json:"self,omitempty"`
}

// CreatedTestCycle is the server answer to a test cycle creation.
type CreatedTestCycle struct {
	ID   FlexibleID `json:"id"`
	Key  string     `json:"key"`
	Self string     `json:"self,omitempty"`
}

// ExecutionRecord is the server answer to an execution creation.
type ExecutionRecord struct {
	ID   FlexibleID `json:"id"`
	Key  string     `json:"key,omitempty"`
	Self string     `json:"self,omitempty"`
}

// FolderType is the kind of entity a folder holds.
type FolderType string

const (
	FolderTestCase  FolderType = "TEST_CASE"
	FolderTestCycle FolderType = "TEST_CYCLE"
	FolderTestPlan  FolderType = "TEST_PLAN"
)

// Folder is a Zephyr Scale folder.
type Folder struct {
	ID         FlexibleID `json:"id,omitempty"`
	ParentID   FlexibleID `json:"parentId,omitempty"`
	Name       string     `json:"name"`
	FolderType FolderType `json:"folderType,omitempty"`
}
