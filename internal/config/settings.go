package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/steveyegge/doctags/internal/tasks"
)

// Config keys.
const (
	KeyToken          = "github.token"
	KeyOwner          = "github.owner"
	KeyRepo           = "github.repo"
	KeyRepository     = "github.repository" // owner/repo, as GITHUB_REPOSITORY
	KeyServerURL      = "github.server_url"
	KeyAPIURL         = "github.api_url"
	KeyBranch         = "branch"
	KeyActor          = "actor"
	KeyEventName      = "event.name"
	KeyEventPath      = "event.path"
	KeyDocsDir        = "docs.dir"
	KeyArchiveSegment = "docs.archive_segment"
	KeyDefaultLabel   = "docs.default_label"
	KeyReaction       = "resolve.reaction"
	KeyConcurrency    = "reactions.concurrency"
	KeyDryRun         = "dry_run"
)

// Defaults.
const (
	DefaultServerURL      = "https://github.com"
	DefaultAPIURL         = "https://api.github.com"
	DefaultBranch         = "main"
	DefaultDocsDir        = "docs"
	DefaultArchiveSegment = "research"
	DefaultLabel          = "general"
	DefaultReaction       = "rocket"
	DefaultConcurrency    = 4
)

var defaults = map[string]any{
	KeyServerURL:      DefaultServerURL,
	KeyAPIURL:         DefaultAPIURL,
	KeyBranch:         DefaultBranch,
	KeyDocsDir:        DefaultDocsDir,
	KeyArchiveSegment: DefaultArchiveSegment,
	KeyDefaultLabel:   DefaultLabel,
	KeyReaction:       DefaultReaction,
	KeyConcurrency:    DefaultConcurrency,
	KeyDryRun:         false,
}

// GetReaction retrieves the reaction that resolves comment tasks.
// Returns DefaultReaction if not set or invalid, with a warning for invalid
// values.
//
// Config key: resolve.reaction
// Valid values: the reaction contents GitHub accepts (see tasks.Reactions).
func GetReaction() string {
	value := strings.ToLower(strings.TrimSpace(GetString(KeyReaction)))
	if value == "" {
		return DefaultReaction
	}
	if !tasks.IsReaction(value) {
		fmt.Fprintf(ConfigWarningWriter, "Warning: invalid %s %q in config (valid: %s), using default %q\n",
			KeyReaction, value, strings.Join(tasks.Reactions(), ", "), DefaultReaction)
		return DefaultReaction
	}
	return value
}

// GetConcurrency retrieves the bound on concurrent reaction lookups.
// Non-positive values fall back to DefaultConcurrency with a warning.
//
// Config key: reactions.concurrency
func GetConcurrency() int {
	n := GetInt(KeyConcurrency)
	if n <= 0 {
		fmt.Fprintf(ConfigWarningWriter, "Warning: invalid %s %d in config (must be positive), using default %d\n", KeyConcurrency, n, DefaultConcurrency)
		return DefaultConcurrency
	}
	return n
}

// GetRepository returns the owner and repository name. Explicit github.owner
// and github.repo win over github.repository ("owner/repo").
func GetRepository() (owner, repo string) {
	owner, repo = GetString(KeyOwner), GetString(KeyRepo)
	if owner != "" && repo != "" {
		return owner, repo
	}
	if full := GetString(KeyRepository); full != "" {
		if o, r, ok := strings.Cut(full, "/"); ok {
			if owner == "" {
				owner = o
			}
			if repo == "" {
				repo = r
			}
		}
	}
	return owner, repo
}

// Settings is the resolved configuration of one invocation.
type Settings struct {
	Token          string `json:"-" yaml:"-"`
	Owner          string `json:"owner" yaml:"owner"`
	Repo           string `json:"repo" yaml:"repo"`
	ServerURL      string `json:"server_url" yaml:"server_url"`
	APIURL         string `json:"api_url" yaml:"api_url"`
	Branch         string `json:"branch" yaml:"branch"`
	Actor          string `json:"actor,omitempty" yaml:"actor,omitempty"`
	EventName      string `json:"event_name,omitempty" yaml:"event_name,omitempty"`
	EventPath      string `json:"event_path,omitempty" yaml:"event_path,omitempty"`
	DocsDir        string `json:"docs_dir" yaml:"docs_dir"`
	ArchiveSegment string `json:"archive_segment" yaml:"archive_segment"`
	DefaultLabel   string `json:"default_label" yaml:"default_label"`
	Reaction       string `json:"reaction" yaml:"reaction"`
	Concurrency    int    `json:"concurrency" yaml:"concurrency"`
	DryRun         bool   `json:"dry_run" yaml:"dry_run"`
}

// Load resolves the current configuration.
func Load() Settings {
	owner, repo := GetRepository()
	return Settings{
		Token:          GetString(KeyToken),
		Owner:          owner,
		Repo:           repo,
		ServerURL:      GetString(KeyServerURL),
		APIURL:         GetString(KeyAPIURL),
		Branch:         GetString(KeyBranch),
		Actor:          GetString(KeyActor),
		EventName:      GetString(KeyEventName),
		EventPath:      GetString(KeyEventPath),
		DocsDir:        GetString(KeyDocsDir),
		ArchiveSegment: GetString(KeyArchiveSegment),
		DefaultLabel:   GetString(KeyDefaultLabel),
		Reaction:       GetReaction(),
		Concurrency:    GetConcurrency(),
		DryRun:         GetBool(KeyDryRun),
	}
}

// Validate reports what is missing to talk to GitHub.
func (s Settings) Validate() error {
	var errs []error
	if s.Token == "" {
		errs = append(errs, errors.New("GitHub token not configured (set GITHUB_TOKEN or github.token in "+FileName+")"))
	}
	if s.Owner == "" || s.Repo == "" {
		errs = append(errs, errors.New("GitHub repository not configured (set GITHUB_REPOSITORY=owner/repo or github.owner and github.repo)"))
	}
	if s.DocsDir == "" {
		errs = append(errs, errors.New("docs.dir must not be empty"))
	}
	return errors.Join(errs...)
}

// MaskedToken returns the token with everything after its prefix hidden.
func (s Settings) MaskedToken() string {
	return MaskToken(s.Token)
}

// MaskToken hides a secret for display.
func MaskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 4 {
		return "****"
	}
	return token[:4] + "****"
}
