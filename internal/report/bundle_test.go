package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zephyr-upload/internal/domain"
)

const sampleJSONBundle = `{
  "cycle_name": "Sprint 23",
  "test_cases": [
    {
      "name": "Login works",
      "objective": "Users can log in",
      "priority": "High",
      "status": "Pass",
      "comment": "all good",
      "execution_time": 1200,
      "environment": "staging",
      "labels": ["smoke", "auth"],
      "folder": "/Auth",
      "custom_fields": {"Component": "auth", "Story points": 3},
      "steps": [
        {"description": "Open login page", "expectedResult": "Form shown"},
        {"description": "Submit", "testData": "user=a", "expectedResult": "Dashboard shown"}
      ]
    },
    {
      "name": "Logout works"
    },
    {
      "name": "Profile loads",
      "status": "Fail",
      "labels": []
    }
  ]
}`

const sampleYAMLBundle = `
cycle_name: Regression
test_cases:
  - name: Search returns results
    status: Blocked
    precondition: Index is built
    executed_by: 5b10ac8d82e05b22cc7d4ef5
    actual_result: timeout
    custom_fields:
      Component: search
      Browsers: [chrome, firefox]
  - name: Search handles empty query
    labels: []
`

func TestParseBundle_JSON(t *testing.T) {
	bundle, err := ParseBundle([]byte(sampleJSONBundle), FormatJSON)
	require.NoError(t, err)

	want := &domain.ResultBundle{
		CycleName: "Sprint 23",
		Records: []domain.ResultRecord{
			{
				Name:          "Login works",
				Objective:     "Users can log in",
				Priority:      "High",
				Status:        "Pass",
				Comment:       "all good",
				ExecutionTime: 1200,
				Environment:   "staging",
				Labels:        []string{"smoke", "auth"},
				Folder:        "/Auth",
				CustomFields:  map[string]interface{}{"Component": "auth", "Story points": float64(3)},
				Steps: []domain.Step{
					{Description: "Open login page", ExpectedResult: "Form shown"},
					{Description: "Submit", TestData: "user=a", ExpectedResult: "Dashboard shown"},
				},
			},
			{
				Name:   "Logout works",
				Status: "Not Executed",
				Labels: []string{"manual"},
			},
			{
				Name:   "Profile loads",
				Status: "Fail",
				Labels: []string{},
			},
		},
	}
	assert.Empty(t, cmp.Diff(want, bundle), "ParseBundle() mismatch (-want +got)")
}

func TestParseBundle_YAML(t *testing.T) {
	bundle, err := ParseBundle([]byte(sampleYAMLBundle), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "Regression", bundle.CycleName)
	require.Len(t, bundle.Records, 2)

	first := bundle.Records[0]
	assert.Equal(t, "Blocked", first.Status)
	assert.Equal(t, "Index is built", first.Precondition)
	assert.Equal(t, "5b10ac8d82e05b22cc7d4ef5", first.ExecutedBy)
	assert.Equal(t, "timeout", first.ActualResult)
	assert.Equal(t, []string{"manual"}, first.Labels)
	assert.Equal(t, map[string]interface{}{
		"Component": "search",
		"Browsers":  []interface{}{"chrome", "firefox"},
	}, first.CustomFields)

	second := bundle.Records[1]
	assert.Equal(t, "Not Executed", second.Status)
	assert.NotNil(t, second.Labels)
	assert.Empty(t, second.Labels)
	assert.Nil(t, second.CustomFields)
}

func TestParseBundle_DefaultLabelsAreNotShared(t *testing.T) {
	bundle, err := ParseBundle([]byte(`{"test_cases":[{"name":"a"},{"name":"b"}]}`), FormatJSON)
	require.NoError(t, err)

	bundle.Records[0].Labels[0] = "changed"
	assert.Equal(t, "manual", bundle.Records[1].Labels[0])
	assert.Equal(t, []string{"manual"}, DefaultBundleLabels)
}

func TestParseBundle_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		format  Format
		wantErr string
	}{
		{name: "invalid JSON", data: `{"test_cases": [`, format: FormatJSON, wantErr: "invalid JSON"},
		{name: "invalid YAML", data: "test_cases: [unclosed", format: FormatYAML, wantErr: "invalid YAML"},
		{name: "missing test_cases", data: `{"cycle_name": "x"}`, format: FormatJSON, wantErr: "no test cases found"},
		{name: "empty test_cases", data: "test_cases: []", format: FormatYAML, wantErr: "no test cases found"},
		{name: "unknown format", data: `{}`, format: Format("toml"), wantErr: "unknown bundle format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle, err := ParseBundle([]byte(tt.data), tt.format)
			require.Error(t, err)
			assert.Nil(t, bundle)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseBundleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAMLBundle), 0644))

	bundle, err := ParseBundleFile(path, FormatFromPath(path))
	require.NoError(t, err)
	assert.Len(t, bundle.Records, 2)

	_, err = ParseBundleFile(filepath.Join(dir, "nope.json"), FormatJSON)
	var parseErr *domain.InputParseError
	assert.True(t, errors.As(err, &parseErr), "want InputParseError, got %v", err)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("a/b.yaml"))
	assert.Equal(t, FormatYAML, FormatFromPath("B.YML"))
	assert.Equal(t, FormatJSON, FormatFromPath("results.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("results"))
}
