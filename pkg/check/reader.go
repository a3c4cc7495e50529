package check

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadFile parses a lintkit-check file from disk.
func ReadFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open check file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses a lintkit-check report.
func Read(r io.Reader) (*Report, error) {
	var report Report
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode check report: %w", err)
	}
	if report.Schema != SchemaID {
		return nil, fmt.Errorf("invalid schema: expected %q, got %q", SchemaID, report.Schema)
	}
	return &report, nil
}

// ReadBytes parses a lintkit-check report from a byte slice.
func ReadBytes(data []byte) (*Report, error) {
	return Read(bytes.NewReader(data))
}
