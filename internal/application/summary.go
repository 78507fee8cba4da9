package application

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"zephyr-upload/internal/domain"
)

// Stage names the step of a record upload that failed.
type Stage string

const (
	StageValidate        Stage = "validate"
	StageCreateCycle     Stage = "create test cycle"
	StageCreateTestCase  Stage = "create test case"
	StageCreateExecution Stage = "create test execution"
	StageCancelled       Stage = "cancelled"
)

// RecordFailure describes why one record could not be uploaded.
type RecordFailure struct {
	Record     string
	Stage      Stage
	StatusCode int // 0 unless the remote service answered
	Message    string
}

// Summary accumulates the outcome of one upload run.
type Summary struct {
	CycleName         string
	CycleKey          string
	Total             int
	Succeeded         int
	TestCasesCreated  int
	ExecutionsCreated int
	StatusCounts      map[domain.Status]int
	Failures          []RecordFailure
}

func newSummary(total int) *Summary {
	return &Summary{
		Total:        total,
		StatusCounts: make(map[domain.Status]int),
	}
}

// Failed returns the number of records that failed outright.
func (s *Summary) Failed() int {
	return len(s.Failures)
}

// OK reports whether every record was uploaded.
func (s *Summary) OK() bool {
	return len(s.Failures) == 0
}

func (s *Summary) fail(record string, stage Stage, err error) RecordFailure {
	f := RecordFailure{Record: record, Stage: stage, Message: err.Error()}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		f.StatusCode = apiErr.StatusCode
		if apiErr.StatusCode != 0 {
			f.Message = apiErr.Summary()
		}
	}

	s.Failures = append(s.Failures, f)
	return f
}

// Print writes the human-readable summary block.
func (s *Summary) Print(w io.Writer) {
	line := strings.Repeat("=", 60)

	fmt.Fprintf(w, "\n%s\n", line)
	fmt.Fprintln(w, "Upload Summary:")
	if s.CycleKey != "" || s.CycleName != "" {
		fmt.Fprintf(w, "  Test Cycle: %s\n", describeCycle(s.CycleName, s.CycleKey))
	}
	fmt.Fprintf(w, "  Records: %d\n", s.Total)
	fmt.Fprintf(w, "  Test cases created: %d\n", s.TestCasesCreated)
	fmt.Fprintf(w, "  Executions created: %d\n", s.ExecutionsCreated)
	for _, status := range domain.Statuses {
		if n := s.StatusCounts[status]; n > 0 {
			fmt.Fprintf(w, "    %s: %d\n", status, n)
		}
	}
	fmt.Fprintf(w, "  Successful: %d/%d\n", s.Succeeded, s.Total)
	fmt.Fprintf(w, "  Failed: %d\n", s.Failed())

	if len(s.Failures) > 0 {
		fmt.Fprintln(w, "Failures:")
		for _, f := range s.Failures {
			if f.StatusCode != 0 {
				fmt.Fprintf(w, "  - %s [%s, HTTP %d]: %s\n", f.Record, f.Stage, f.StatusCode, f.Message)
			} else {
				fmt.Fprintf(w, "  - %s [%s]: %s\n", f.Record, f.Stage, f.Message)
			}
		}
	}
	fmt.Fprintln(w, line)
}

func describeCycle(name, key string) string {
	switch {
	case name != "" && key != "":
		return fmt.Sprintf("%s (%s)", name, key)
	case key != "":
		return key
	default:
		return name
	}
}
