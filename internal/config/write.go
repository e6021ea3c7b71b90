package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultFile describes the file written by WriteDefault, in order.
var defaultFile = []struct {
	section string
	comment string
	keys    []fileKey
}{
	{"github", "GitHub repository that holds the tracking issues.\nThe token is read from GITHUB_TOKEN; do not commit it here.", []fileKey{
		{"owner", "", "Defaults to the owner part of GITHUB_REPOSITORY."},
		{"repo", "", "Defaults to the repo part of GITHUB_REPOSITORY."},
		{"server_url", DefaultServerURL, ""},
		{"api_url", DefaultAPIURL, ""},
	}},
	{"docs", "Documents scanned for TODO, PLACEHOLDER and NOTE markers.", []fileKey{
		{"dir", DefaultDocsDir, "Topic root; only Markdown files under it are tracked."},
		{"archive_segment", DefaultArchiveSegment, "Dropped from topic labels when it is the first directory under dir."},
		{"default_label", DefaultLabel, "Label for documents with no topic directory."},
	}},
	{"resolve", "How human-added comment tasks are resolved.", []fileKey{
		{"reaction", DefaultReaction, "Reaction on the originating comment that resolves its task."},
	}},
	{"reactions", "", []fileKey{
		{"concurrency", fmt.Sprint(DefaultConcurrency), "Concurrent reaction lookups per run."},
	}},
}

type fileKey struct {
	name    string
	value   string
	comment string
}

// DefaultYAML renders the commented default config file.
func DefaultYAML() ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, sec := range defaultFile {
		body := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range sec.keys {
			val := &yaml.Node{Kind: yaml.ScalarNode, Value: k.value}
			if k.name == "concurrency" {
				val.Tag = "!!int"
			}
			body.Content = append(body.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: k.name, HeadComment: k.comment},
				val,
			)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: sec.section, HeadComment: sec.comment},
			body,
		)
	}
	root.Content = append(root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "dry_run", HeadComment: "Log writes instead of performing them."},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "false"},
	)

	doc := &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: "doctags configuration. Environment variables (DOCTAGS_*) override these values.",
		Content:     []*yaml.Node{root},
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("render default config: %w", err)
	}
	return out, nil
}

// WriteDefault writes the default config file to path. An existing file is
// only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	data, err := DefaultYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 - config file is not secret
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
