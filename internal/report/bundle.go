package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"zephyr-upload/internal/domain"
)

// DefaultBundleLabels are attached to records that carry no labels key.
var DefaultBundleLabels = []string{"manual"}

// Format is the encoding of a result bundle file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath guesses the bundle format from the file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseBundleFile reads a JSON or YAML result bundle from path.
func ParseBundleFile(path string, format Format) (*domain.ResultBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.InputParseError{Path: path, Err: err}
	}

	bundle, err := ParseBundle(data, format)
	if err != nil {
		return nil, &domain.InputParseError{Path: path, Err: err}
	}
	return bundle, nil
}

// ParseBundle decodes a result bundle and fills record defaults:
// a missing status becomes "Not Executed" and missing labels become
// DefaultBundleLabels. An explicitly empty labels list stays empty.
func ParseBundle(data []byte, format Format) (*domain.ResultBundle, error) {
	var bundle domain.ResultBundle
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &bundle); err != nil {
			return nil, errors.Wrap(err, "invalid YAML")
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &bundle); err != nil {
			return nil, errors.Wrap(err, "invalid JSON")
		}
	default:
		return nil, errors.Errorf("unknown bundle format %q", format)
	}

	if len(bundle.Records) == 0 {
		return nil, errors.New("no test cases found (test_cases is missing or empty)")
	}

	for i := range bundle.Records {
		record := &bundle.Records[i]
		if record.Status == "" {
			record.Status = string(domain.StatusNotExecuted)
		}
		if record.Labels == nil {
			record.Labels = append([]string(nil), DefaultBundleLabels...)
		}
	}
	return &bundle, nil
}
