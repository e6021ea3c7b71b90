// Package docs reads the Markdown documents doctags tracks.
package docs

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/steveyegge/doctags/internal/identity"
)

// Ext is the extension of tracked documents.
const Ext = ".md"

// Source lists and reads documents under a topic root on an afero
// filesystem. Paths are slash-separated and relative to the filesystem root,
// e.g. "docs/research/eeg/x.md".
type Source struct {
	Fs   afero.Fs
	Root string
}

// NewSource returns a source over fsys rooted at root.
func NewSource(fsys afero.Fs, root string) *Source {
	return &Source{Fs: fsys, Root: identity.NormalizePath(root)}
}

// NewOSSource returns a source over the working tree at dir.
func NewOSSource(dir, root string) *Source {
	return NewSource(afero.NewBasePathFs(afero.NewOsFs(), dir), root)
}

// List returns every Markdown document under the root, sorted. A missing
// root is an error: treating it as empty would close every record as an
// orphan.
func (s *Source) List(ctx context.Context) ([]string, error) {
	var out []string
	err := afero.Walk(s.Fs, s.Root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() || filepath.Ext(p) != Ext {
			return nil
		}
		out = append(out, identity.NormalizePath(filepath.ToSlash(p)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list documents under %s: %w", s.Root, err)
	}
	slices.Sort(out)
	return out, nil
}

// Read returns a document's text.
func (s *Source) Read(_ context.Context, path string) (string, error) {
	data, err := afero.ReadFile(s.Fs, identity.NormalizePath(path))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// InScope reports whether path names a Markdown document under the root.
func (s *Source) InScope(path string) bool {
	path = identity.NormalizePath(path)
	return strings.HasPrefix(path, s.Root+"/") && strings.HasSuffix(path, Ext)
}
