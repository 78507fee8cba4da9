package application

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"zephyr-upload/internal/domain"
)

// Default cycle name prefixes, completed with the local start time.
const (
	JUnitCyclePrefix  = "Automated Test Run"
	BundleCyclePrefix = "Test Run"
)

// UploadOptions controls a batch upload.
type UploadOptions struct {
	// CycleKey reuses an existing cycle; no cycle is created when set.
	CycleKey string
	// CycleName overrides the bundle's cycle name.
	CycleName string
	// CyclePrefix builds the cycle name when neither CycleName nor the
	// bundle supply one. Defaults to BundleCyclePrefix.
	CyclePrefix      string
	CycleDescription string
	CycleFolder      string
	JiraVersion      string
	// Environment is used for records without their own environment.
	Environment string
	// CreateOnly creates the test cases only: no cycle, no executions.
	CreateOnly bool
}

// Uploader turns result records into Zephyr Scale test cases, cycles and
// executions. Requests are sent one at a time in record order and never retried.
type Uploader struct {
	client domain.ZephyrClient
	out    io.Writer
	log    *zap.SugaredLogger
	now    func() time.Time
}

// NewUploader creates an uploader printing progress lines to out.
func NewUploader(client domain.ZephyrClient, out io.Writer, log *zap.SugaredLogger) *Uploader {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Uploader{
		client: client,
		out:    out,
		log:    log,
		now:    time.Now,
	}
}

// CreateTestCase validates tc and creates it. It always creates a new test
// case: there is no lookup by name.
func (u *Uploader) CreateTestCase(ctx context.Context, tc domain.TestCase) (*domain.CreatedTestCase, error) {
	if err := tc.Validate(); err != nil {
		u.printFailure("create test case", tc.Name, err)
		return nil, err
	}

	created, err := u.client.CreateTestCase(ctx, &tc)
	if err != nil {
		u.printFailure("create test case", tc.Name, err)
		return nil, err
	}

	fmt.Fprintf(u.out, "✓ Created test case: %s (%s)\n", tc.Name, created.Key)
	return created, nil
}

// CreateTestCycle creates a test cycle.
func (u *Uploader) CreateTestCycle(ctx context.Context, cycle domain.TestCycle) (*domain.CreatedTestCycle, error) {
	created, err := u.client.CreateTestCycle(ctx, &cycle)
	if err != nil {
		u.printFailure("create test cycle", cycle.Name, err)
		return nil, err
	}

	fmt.Fprintf(u.out, "✓ Created test cycle: %s (%s)\n", cycle.Name, created.Key)
	return created, nil
}

// CreateTestExecution records one execution. An unknown status fails with a
// *domain.ValidationError before any request.
func (u *Uploader) CreateTestExecution(ctx context.Context, exec domain.TestExecution) (*domain.ExecutionRecord, error) {
	if _, err := domain.ParseStatus(string(exec.Status)); err != nil {
		u.printFailure("create test execution", exec.TestCaseKey, err)
		return nil, err
	}

	record, err := u.client.CreateTestExecution(ctx, &exec)
	if err != nil {
		u.printFailure("create test execution", exec.TestCaseKey, err)
		return nil, err
	}

	fmt.Fprintf(u.out, "✓ Created test execution for %s: %s\n", exec.TestCaseKey, exec.Status)
	return record, nil
}

// Upload creates the cycle (unless a key is given or CreateOnly is set), then
// a test case and an execution per record. Per-record failures are collected
// in the summary and never stop the run; a failed cycle creation fails every
// record since no execution could reference it.
func (u *Uploader) Upload(ctx context.Context, bundle *domain.ResultBundle, opts UploadOptions) *Summary {
	summary := newSummary(len(bundle.Records))

	if !opts.CreateOnly {
		summary.CycleKey = opts.CycleKey
		if summary.CycleKey == "" {
			summary.CycleName = u.cycleName(bundle, opts)
			cycle, err := u.CreateTestCycle(ctx, domain.TestCycle{
				Name:        summary.CycleName,
				Description: opts.CycleDescription,
				JiraVersion: opts.JiraVersion,
				Folder:      opts.CycleFolder,
			})
			if err != nil {
				u.log.Errorw("test cycle creation failed, skipping all records", "cycle", summary.CycleName, "error", err)
				for _, record := range bundle.Records {
					summary.fail(record.Name, StageCreateCycle, err)
				}
				summary.Print(u.out)
				return summary
			}
			summary.CycleKey = cycle.Key
		}
	}

	for i := range bundle.Records {
		record := &bundle.Records[i]
		if err := ctx.Err(); err != nil {
			summary.fail(record.Name, StageCancelled, err)
			continue
		}
		u.uploadRecord(ctx, record, summary, opts)
	}

	summary.Print(u.out)
	return summary
}

func (u *Uploader) uploadRecord(ctx context.Context, record *domain.ResultRecord, summary *Summary, opts UploadOptions) {
	log := u.log.With("record", record.Name)

	var status domain.Status
	if !opts.CreateOnly {
		var err error
		status, err = domain.ParseStatus(record.Status)
		if err != nil {
			u.printFailure("upload", record.Name, err)
			f := summary.fail(record.Name, StageValidate, err)
			log.Warnw("record rejected", "stage", f.Stage, "error", err)
			return
		}
	}

	created, err := u.CreateTestCase(ctx, record.TestCase())
	if err != nil {
		stage := StageCreateTestCase
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			stage = StageValidate
		}
		f := summary.fail(record.Name, stage, err)
		log.Errorw("record failed", "stage", f.Stage, "status_code", f.StatusCode, "error", err)
		return
	}
	summary.TestCasesCreated++

	if opts.CreateOnly {
		summary.Succeeded++
		return
	}

	environment := record.Environment
	if environment == "" {
		environment = opts.Environment
	}

	_, err = u.CreateTestExecution(ctx, domain.TestExecution{
		TestCaseKey:   created.Key,
		TestCycleKey:  summary.CycleKey,
		Status:        status,
		Comment:       record.Comment,
		ExecutionTime: record.ExecutionTime,
		Environment:   environment,
		ExecutedBy:    record.ExecutedBy,
		ActualResult:  record.ActualResult,
	})
	if err != nil {
		f := summary.fail(record.Name, StageCreateExecution, err)
		log.Errorw("record failed", "stage", f.Stage, "test_case", created.Key, "status_code", f.StatusCode, "error", err)
		return
	}

	summary.ExecutionsCreated++
	summary.StatusCounts[status]++
	summary.Succeeded++
}

func (u *Uploader) cycleName(bundle *domain.ResultBundle, opts UploadOptions) string {
	if opts.CycleName != "" {
		return opts.CycleName
	}
	if bundle.CycleName != "" {
		return bundle.CycleName
	}
	prefix := opts.CyclePrefix
	if prefix == "" {
		prefix = BundleCyclePrefix
	}
	return fmt.Sprintf("%s - %s", prefix, u.now().Format("2006-01-02 15:04:05"))
}

func (u *Uploader) printFailure(operation, name string, err error) {
	fmt.Fprintf(u.out, "✗ Failed to %s '%s': %v\n", operation, name, err)

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Body != "" {
		fmt.Fprintf(u.out, "  Response: %s\n", apiErr.Summary())
	}
}
