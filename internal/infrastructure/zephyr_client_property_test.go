package infrastructure

import (
	"context"
	"net/http"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"zephyr-upload/internal/domain"
)

// Property 1: REST API request validity.
//
// For any test case definition, the creation request goes to the flavor's
// endpoint as a POST and carries the name, objective, priority and labels
// unchanged, with the steps in input order.
func TestProperty_TestCaseRequestFidelity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	m := newMockZephyr(t)
	cloud := newCloudClient(t, m)
	server := newServerClient(t, m)

	genSteps := gen.SliceOf(gen.Identifier()).Map(func(descriptions []string) []domain.Step {
		steps := make([]domain.Step, len(descriptions))
		for i, d := range descriptions {
			steps[i] = domain.Step{Description: d, ExpectedResult: d + " ok"}
		}
		return steps
	})

	check := func(client *ZephyrClient, wantPath, priorityField string) func(string, string, string, string, []domain.Step) bool {
		return func(name, objective, priority, label string, steps []domain.Step) bool {
			_, err := client.CreateTestCase(context.Background(), &domain.TestCase{
				Name:      name,
				Objective: objective,
				Priority:  domain.Priority(priority),
				Labels:    []string{label},
				Steps:     steps,
			})
			if err != nil {
				return false
			}

			req := m.captured()[len(m.captured())-1]
			if req.Method != http.MethodPost || req.Path != wantPath {
				return false
			}
			if req.Body["name"] != name || req.Body["objective"] != objective || req.Body[priorityField] != priority {
				return false
			}
			labels, ok := req.Body["labels"].([]interface{})
			if !ok || len(labels) != 1 || labels[0] != label {
				return false
			}

			script, hasScript := req.Body["testScript"].(map[string]interface{})
			if len(steps) == 0 {
				return !hasScript
			}
			gotSteps, ok := script["steps"].([]interface{})
			if !ok || len(gotSteps) != len(steps) {
				return false
			}
			for i, s := range gotSteps {
				step, ok := s.(map[string]interface{})
				if !ok || step["description"] != steps[i].Description {
					return false
				}
			}
			return true
		}
	}

	genPriority := gen.OneConstOf("Critical", "High", "Normal", "Low")

	properties.Property("cloud test case requests carry the definition", prop.ForAll(
		check(cloud, "/testcases", "priorityName"),
		gen.Identifier(), gen.Identifier(), genPriority, gen.Identifier(), genSteps,
	))

	properties.Property("server test case requests carry the definition", prop.ForAll(
		check(server, "/rest/atm/1.0/testcase", "priority"),
		gen.Identifier(), gen.Identifier(), genPriority, gen.Identifier(), genSteps,
	))

	properties.TestingRun(t)
}

// Property 2: an execution with an unknown status never reaches the network.
func TestProperty_InvalidStatusSendsNothing(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	m := newMockZephyr(t)
	client := newCloudClient(t, m)

	properties.Property("unknown statuses are rejected locally", prop.ForAll(
		func(status string) bool {
			if _, err := domain.ParseStatus(status); err == nil {
				return true
			}
			before := len(m.captured())
			_, err := client.CreateTestExecution(context.Background(), &domain.TestExecution{
				TestCaseKey:  "PROJ-T1",
				TestCycleKey: "PROJ-R1",
				Status:       domain.Status(status),
			})
			return err != nil && len(m.captured()) == before
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
