// Package draft reads and writes the markdown drafts tickets are created from.
package draft

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrNoTitle is returned when a draft has no "# " heading line.
var ErrNoTitle = errors.New("no title found in draft (needs # heading)")

// Draft is a parsed draft file. Content is the file verbatim and becomes the
// ticket description unchanged, heading line included.
type Draft struct {
	Path    string
	Title   string
	Content string
}

// Parse takes the title from the first line starting with "# ".
func Parse(content string) (Draft, error) {
	for _, line := range strings.Split(content, "\n") {
		if rest, ok := strings.CutPrefix(line, "# "); ok {
			title := strings.TrimSpace(rest)
			if title == "" {
				break
			}
			return Draft{Title: title, Content: content}, nil
		}
	}
	return Draft{}, ErrNoTitle
}

// Store reads and consumes drafts on a filesystem.
type Store struct {
	fs afero.Fs
}

// NewStore returns a Store over fs, or over the OS filesystem when fs is nil.
func NewStore(fs afero.Fs) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{fs: fs}
}

// Read loads and parses the draft at path.
func (s *Store) Read(path string) (Draft, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Draft{}, fmt.Errorf("draft file not found: %s", path)
		}
		return Draft{}, fmt.Errorf("failed to read draft: %w", err)
	}
	d, err := Parse(string(data))
	if err != nil {
		return Draft{}, fmt.Errorf("%s: %w", path, err)
	}
	d.Path = path
	return d, nil
}

// Write stores content at path, creating parent directories.
func (s *Store) Write(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create draft directory: %w", err)
		}
	}
	if err := afero.WriteFile(s.fs, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write draft: %w", err)
	}
	return nil
}

// Consume deletes a draft once its ticket has been created or updated.
func (s *Store) Consume(d Draft) error {
	if err := s.fs.Remove(d.Path); err != nil {
		return fmt.Errorf("failed to remove draft %s: %w", d.Path, err)
	}
	return nil
}

// List returns the markdown drafts directly inside dir.
func (s *Store) List(dir string) ([]string, error) {
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	var paths []string
	for _, fi := range infos {
		if fi.IsDir() || !strings.HasSuffix(fi.Name(), ".md") {
			continue
		}
		paths = append(paths, filepath.Join(dir, fi.Name()))
	}
	return paths, nil
}
