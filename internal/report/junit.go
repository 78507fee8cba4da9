package report

import (
	"encoding/xml"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"zephyr-upload/internal/domain"
)

// JUnitOptions controls how JUnit test cases become result records.
type JUnitOptions struct {
	// ErrorStatus is the status of a test case with an <error> child.
	// Defaults to domain.StatusBlocked.
	ErrorStatus domain.Status
	// Labels are attached to every record. Defaults to DefaultJUnitLabels.
	Labels []string
}

// DefaultJUnitLabels are attached to test cases created from a JUnit report.
var DefaultJUnitLabels = []string{"automated", "junit"}

// junitTestCase is a <testcase> element. Only the parts Zephyr Scale has a
// place for are decoded.
type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitOutcome `xml:"failure"`
	Error     *junitOutcome `xml:"error"`
	Skipped   *junitOutcome `xml:"skipped"`
}

type junitOutcome struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Text    string `xml:",chardata"`
}

// ParseJUnitFile reads a JUnit XML report from path.
func ParseJUnitFile(path string, opts JUnitOptions) (*domain.ResultBundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.InputParseError{Path: path, Err: err}
	}
	defer f.Close()

	bundle, err := ParseJUnit(f, opts)
	if err != nil {
		return nil, &domain.InputParseError{Path: path, Err: err}
	}
	return bundle, nil
}

// ParseJUnit converts every <testcase> of a JUnit report into a result record,
// in document order. Suites may be nested at any depth under a <testsuites>
// or <testsuite> root.
func ParseJUnit(r io.Reader, opts JUnitOptions) (*domain.ResultBundle, error) {
	if opts.ErrorStatus == "" {
		opts.ErrorStatus = domain.StatusBlocked
	}
	if _, err := domain.ParseStatus(string(opts.ErrorStatus)); err != nil {
		return nil, err
	}
	if opts.Labels == nil {
		opts.Labels = DefaultJUnitLabels
	}

	decoder := xml.NewDecoder(r)
	bundle := &domain.ResultBundle{}
	sawRoot := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "invalid JUnit XML")
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		if !sawRoot {
			if start.Name.Local != "testsuites" && start.Name.Local != "testsuite" {
				return nil, errors.Errorf("unexpected root element <%s>: want <testsuites> or <testsuite>", start.Name.Local)
			}
			sawRoot = true
			continue
		}

		if start.Name.Local != "testcase" {
			continue
		}

		var tc junitTestCase
		if err := decoder.DecodeElement(&tc, &start); err != nil {
			return nil, errors.Wrap(err, "invalid <testcase> element")
		}
		record, err := tc.record(opts)
		if err != nil {
			return nil, err
		}
		bundle.Records = append(bundle.Records, record)
	}

	if !sawRoot {
		return nil, errors.New("empty JUnit XML document")
	}
	if len(bundle.Records) == 0 {
		return nil, errors.New("no <testcase> elements found")
	}
	return bundle, nil
}

func (tc *junitTestCase) record(opts JUnitOptions) (domain.ResultRecord, error) {
	millis, err := secondsToMillis(tc.Time)
	if err != nil {
		return domain.ResultRecord{}, errors.Wrapf(err, "test case %q", tc.Name)
	}

	name := tc.Name
	if tc.ClassName != "" {
		name = tc.ClassName + "." + tc.Name
	}

	var status domain.Status
	var comment string
	switch {
	case tc.Failure != nil:
		status = domain.StatusFail
		comment = tc.Failure.comment("Test failed")
	case tc.Error != nil:
		status = opts.ErrorStatus
		comment = tc.Error.comment("Test errored")
	case tc.Skipped != nil:
		status = domain.StatusNotExecuted
		comment = tc.Skipped.comment("Test skipped")
	default:
		status = domain.StatusPass
		comment = "Test passed successfully"
	}

	return domain.ResultRecord{
		Name:          name,
		Objective:     "Automated test: " + tc.Name,
		Status:        string(status),
		Comment:       comment,
		ExecutionTime: millis,
		Labels:        append([]string(nil), opts.Labels...),
	}, nil
}

func (o *junitOutcome) comment(fallback string) string {
	if msg := strings.TrimSpace(o.Message); msg != "" {
		return msg
	}
	if t := strings.TrimSpace(o.Type); t != "" {
		return t
	}
	return fallback
}

// maxSeconds keeps secs*1000 inside int64.
const maxSeconds = float64(math.MaxInt64/1000) - 1

// secondsToMillis converts a JUnit time attribute to whole milliseconds.
func secondsToMillis(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Errorf("invalid time %q", s)
	}
	if math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, errors.Errorf("invalid time %q", s)
	}
	if secs < 0 {
		return 0, errors.Errorf("negative time %q", s)
	}
	if secs > maxSeconds {
		return 0, errors.Errorf("time %q out of range", s)
	}
	return int64(secs * 1000), nil
}
