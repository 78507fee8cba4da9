package domain

// ResultBundle is a parsed result source: an optional cycle name and the
// per-test records in input order.
type ResultBundle struct {
	CycleName string         `json:"cycle_name,omitempty" yaml:"cycle_name,omitempty"`
	Records   []ResultRecord `json:"test_cases" yaml:"test_cases"`
}

// ResultRecord is one test with its outcome.
type ResultRecord struct {
	Name          string   `json:"name" yaml:"name"`
	Objective     string   `json:"objective,omitempty" yaml:"objective,omitempty"`
	Precondition  string   `json:"precondition,omitempty" yaml:"precondition,omitempty"`
	Priority      string   `json:"priority,omitempty" yaml:"priority,omitempty"`
	Status        string   `json:"status,omitempty" yaml:"status,omitempty"`
	Comment       string   `json:"comment,omitempty" yaml:"comment,omitempty"`
	ExecutionTime int64    `json:"execution_time,omitempty" yaml:"execution_time,omitempty"`
	Environment   string   `json:"environment,omitempty" yaml:"environment,omitempty"`
	ExecutedBy    string   `json:"executed_by,omitempty" yaml:"executed_by,omitempty"`
	ActualResult  string   `json:"actual_result,omitempty" yaml:"actual_result,omitempty"`
	Labels        []string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Folder        string   `json:"folder,omitempty" yaml:"folder,omitempty"`
	Steps         []Step   `json:"steps,omitempty" yaml:"steps,omitempty"`

	// CustomFields are sent verbatim with test case creation.
	CustomFields map[string]interface{} `json:"custom_fields,omitempty" yaml:"custom_fields,omitempty"`
}

// TestCase returns the test case definition described by the record.
func (r *ResultRecord) TestCase() TestCase {
	return TestCase{
		Name:         r.Name,
		Objective:    r.Objective,
		Precondition: r.Precondition,
		Steps:        r.Steps,
		Priority:     Priority(r.Priority),
		Labels:       r.Labels,
		Folder:       r.Folder,
		CustomFields: r.CustomFields,
	}
}
