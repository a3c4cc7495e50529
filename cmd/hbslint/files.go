package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dkoosis/hbslint/pkg/filter"
	"github.com/dkoosis/hbslint/pkg/stage"
	"github.com/dkoosis/hbslint/pkg/testgen"
)

func generatorNames() []string {
	return testgen.Names()
}

func openResults(cacheDir string) (*filter.DiskStore[stage.Result], error) {
	return filter.OpenDiskStore[stage.Result](stage.ResultsDir(cacheDir))
}

func removeAll(dir string) error {
	if err := os.RemoveAll(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	return nil
}

// writeFileWith creates path and its parent directories and streams into it.
func writeFileWith(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
