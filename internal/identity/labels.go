package identity

import (
	"path"
	"slices"
	"strings"
)

// LabelPolicy derives topic labels from a document's directory.
type LabelPolicy struct {
	// RootDir is the topic root, e.g. "docs".
	RootDir string
	// ArchiveSegment is dropped when it is the first directory under RootDir,
	// e.g. "research" in docs/research/eeg/x.md.
	ArchiveSegment string
	// DefaultLabel is used when no directory segment yields a label.
	DefaultLabel string
}

// DefaultLabelPolicy matches the layout doctags was built for.
func DefaultLabelPolicy() LabelPolicy {
	return LabelPolicy{
		RootDir:        "docs",
		ArchiveSegment: "research",
		DefaultLabel:   "general",
	}
}

// Labels returns the ordered topic labels for a document path.
//
//	docs/index.md                     -> [general]
//	docs/get-started/admin.md         -> [get-started]
//	docs/research/index.md            -> [general]
//	docs/research/fmri/analysis/x.md  -> [fmri analysis]
func (p LabelPolicy) Labels(docPath string) []string {
	dir := path.Dir(NormalizePath(docPath))
	segments := strings.Split(dir, "/")
	if len(segments) < 2 || segments[0] != p.RootDir {
		return p.defaults()
	}

	segments = segments[1:]
	if p.ArchiveSegment != "" && segments[0] == p.ArchiveSegment {
		segments = segments[1:]
	}

	var labels []string
	for _, s := range segments {
		if s == "" || s == "." || slices.Contains(labels, s) {
			continue
		}
		labels = append(labels, s)
	}
	if len(labels) == 0 {
		return p.defaults()
	}
	return labels
}

func (p LabelPolicy) defaults() []string {
	if p.DefaultLabel == "" {
		return nil
	}
	return []string{p.DefaultLabel}
}
