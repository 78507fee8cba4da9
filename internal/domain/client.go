package domain

import (
	"context"
)

// ZephyrClient defines the Zephyr Scale operations the uploader needs.
// Implementations hide the endpoint paths and payload shapes of the
// configured flavor; every method sends at most one request per call
// except folder resolution, which may list folders first.
type ZephyrClient interface {
	// Flavor returns the deployment flavor the client talks to.
	Flavor() Flavor

	// CreateTestCase creates a test case definition.
	CreateTestCase(ctx context.Context, tc *TestCase) (*CreatedTestCase, error)

	// CreateTestCycle creates a test cycle (a test run on Server).
	CreateTestCycle(ctx context.Context, cycle *TestCycle) (*CreatedTestCycle, error)

	// CreateTestExecution records one execution result.
	CreateTestExecution(ctx context.Context, exec *TestExecution) (*ExecutionRecord, error)

	// ListFolders lists the project folders of the given type.
	ListFolders(ctx context.Context, folderType FolderType) ([]Folder, error)

	// CreateFolder creates a folder.
	CreateFolder(ctx context.Context, folder *Folder) (*Folder, error)
}

// VersionResolver turns a Jira release version name into its numeric id.
type VersionResolver interface {
	ResolveVersionID(ctx context.Context, projectKey, version string) (string, error)
}
