package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dspeclang/dspec/internal/config"
	"github.com/dspeclang/dspec/pkg/compiler"
)

// loadUnits reads every schema file under the configured schema
// directory, or the explicitly given paths. Unit names are paths
// relative to the project root so diagnostics stay readable.
func loadUnits(cfg *config.Config, args []string) ([]compiler.Unit, error) {
	paths := args
	if len(paths) == 0 {
		found, err := findSchemaFiles(cfg.SchemaDir, cfg.Ext)
		if err != nil {
			return nil, err
		}
		paths = found
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no %s files found in %s", cfg.Ext, cfg.SchemaDir)
	}

	units := make([]compiler.Unit, 0, len(paths))
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		units = append(units, compiler.Unit{
			Name:   unitName(cfg.ProjectRoot, path),
			Source: string(src),
		})
	}
	return units, nil
}

// findSchemaFiles walks dir collecting files with the given extension,
// skipping hidden directories. Results are sorted for deterministic
// unit order.
func findSchemaFiles(dir, ext string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ext {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// unitName renders a path relative to the project root when possible.
func unitName(root, path string) string {
	if root == "" {
		return path
	}
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
