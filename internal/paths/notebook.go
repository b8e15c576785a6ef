// Package paths provides path resolution utilities.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// NotebookExt is the extension of notebook files.
const NotebookExt = ".ipynb"

// ErrNoNotebook is returned when a directory holds no notebook.
var ErrNoNotebook = errors.New("no notebook found")

// ErrAmbiguousNotebook is returned when a directory holds several notebooks.
var ErrAmbiguousNotebook = errors.New("more than one notebook found")

// ResolveNotebook turns user input into the path of one notebook file.
//
// Input normalization:
//   - "analysis.ipynb" -> "analysis.ipynb"
//   - "analysis" (with analysis.ipynb next to it) -> "analysis.ipynb"
//   - "/path/to/dir" (holding exactly one notebook) -> "/path/to/dir/<that>.ipynb"
//   - "" -> as for "."
//
// A path naming a notebook that does not exist yet is returned as is, so a
// new notebook can be created there.
func ResolveNotebook(path string) (string, error) {
	if path == "" {
		path = "."
	}
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return findSingleNotebook(path)
	case err == nil:
		return path, nil
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), NotebookExt) {
		return path, nil
	}
	withExt := path + NotebookExt
	if _, err := os.Stat(withExt); err == nil {
		return withExt, nil
	}
	return "", fmt.Errorf("resolving %s: %w", path, os.ErrNotExist)
}

func findSingleNotebook(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", dir, err)
	}

	var found []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), NotebookExt) {
			continue
		}
		// Jupyter checkpoints and editor backups.
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		found = append(found, filepath.Join(dir, e.Name()))
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("%s: %w", dir, ErrNoNotebook)
	case 1:
		return found[0], nil
	default:
		slices.Sort(found)
		names := make([]string, len(found))
		for i, f := range found {
			names[i] = filepath.Base(f)
		}
		return "", fmt.Errorf("%s: %w: %s", dir, ErrAmbiguousNotebook, strings.Join(names, ", "))
	}
}
