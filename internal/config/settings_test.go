package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/steveyegge/doctags/internal/tasks"
)

// clearEnv blanks every variable config reads so the host environment (for
// example a CI runner's GITHUB_* variables) does not leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, envs := range envBindings {
		for _, name := range envs {
			t.Setenv(name, "")
		}
	}
	for key := range defaults {
		t.Setenv("DOCTAGS_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), "")
	}
	t.Setenv("DOCTAGS_GITHUB_OWNER", "")
	t.Setenv("DOCTAGS_GITHUB_REPO", "")
}

func setup(t *testing.T) {
	t.Helper()
	clearEnv(t)
	t.Chdir(t.TempDir())
	ResetForTesting()
	t.Cleanup(ResetForTesting)
	require.NoError(t, Initialize(""))
}

func TestDefaults(t *testing.T) {
	setup(t)
	s := Load()
	assert.Equal(t, DefaultServerURL, s.ServerURL)
	assert.Equal(t, DefaultAPIURL, s.APIURL)
	assert.Equal(t, DefaultBranch, s.Branch)
	assert.Equal(t, DefaultDocsDir, s.DocsDir)
	assert.Equal(t, DefaultArchiveSegment, s.ArchiveSegment)
	assert.Equal(t, DefaultLabel, s.DefaultLabel)
	assert.Equal(t, DefaultReaction, s.Reaction)
	assert.Equal(t, DefaultConcurrency, s.Concurrency)
	assert.False(t, s.DryRun)
	assert.Empty(t, ConfigFileUsed())
}

func TestGitHubActionsEnvironment(t *testing.T) {
	setup(t)
	t.Setenv("GITHUB_TOKEN", "ghp_secret")
	t.Setenv("GITHUB_REPOSITORY", "acme/handbook")
	t.Setenv("GITHUB_SERVER_URL", "https://ghe.example.com")
	t.Setenv("GITHUB_REF_NAME", "trunk")
	t.Setenv("GITHUB_ACTOR", "octocat")
	t.Setenv("GITHUB_EVENT_NAME", "push")
	t.Setenv("GITHUB_EVENT_PATH", "/tmp/event.json")

	s := Load()
	assert.Equal(t, "ghp_secret", s.Token)
	assert.Equal(t, "acme", s.Owner)
	assert.Equal(t, "handbook", s.Repo)
	assert.Equal(t, "https://ghe.example.com", s.ServerURL)
	// Edit links stay on the default branch whatever ref triggered the run.
	assert.Equal(t, DefaultBranch, s.Branch)
	assert.Equal(t, "octocat", s.Actor)
	assert.Equal(t, "push", s.EventName)
	assert.Equal(t, "/tmp/event.json", s.EventPath)
	assert.NoError(t, s.Validate())
}

func TestPrefixedEnvironmentWins(t *testing.T) {
	setup(t)
	t.Setenv("GITHUB_TOKEN", "from-actions")
	t.Setenv("DOCTAGS_GITHUB_TOKEN", "from-doctags")
	t.Setenv("DOCTAGS_DOCS_DIR", "handbook")
	t.Setenv("DOCTAGS_BRANCH", "trunk")

	s := Load()
	assert.Equal(t, "from-doctags", s.Token)
	assert.Equal(t, "handbook", s.DocsDir)
	assert.Equal(t, "trunk", s.Branch)
}

func TestConfigFile(t *testing.T) {
	setup(t)
	content := `github:
  owner: acme
  repo: handbook
docs:
  dir: notes
  archive_segment: archive
resolve:
  reaction: hooray
reactions:
  concurrency: 8
`
	require.NoError(t, os.WriteFile(FileName, []byte(content), 0o600))
	ResetForTesting()
	require.NoError(t, Initialize(""))

	s := Load()
	assert.Equal(t, "acme", s.Owner)
	assert.Equal(t, "handbook", s.Repo)
	assert.Equal(t, "notes", s.DocsDir)
	assert.Equal(t, "archive", s.ArchiveSegment)
	assert.Equal(t, "hooray", s.Reaction)
	assert.Equal(t, 8, s.Concurrency)
	assert.NotEmpty(t, ConfigFileUsed())

	// Environment overrides the file.
	t.Setenv("DOCTAGS_DOCS_DIR", "docs")
	assert.Equal(t, "docs", Load().DocsDir)

	// Set overrides everything.
	Set(KeyDocsDir, "flag")
	assert.Equal(t, "flag", Load().DocsDir)
}

func TestExplicitConfigFileMustExist(t *testing.T) {
	setup(t)
	ResetForTesting()
	err := Initialize(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOwnerRepoOverrideRepository(t *testing.T) {
	setup(t)
	t.Setenv("GITHUB_REPOSITORY", "acme/handbook")
	Set(KeyRepo, "fork")

	owner, repo := GetRepository()
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "fork", repo)
}

func TestGetReaction(t *testing.T) {
	tests := []struct {
		name           string
		configValue    string
		expected       string
		expectsWarning bool
	}{
		{"empty returns default", "", DefaultReaction, false},
		{"rocket is valid", "rocket", "rocket", false},
		{"plus one is valid", "+1", "+1", false},
		{"mixed case is normalized", "Hooray", "hooray", false},
		{"whitespace is trimmed", "  eyes ", "eyes", false},
		{"emoji is rejected", "🚀", DefaultReaction, true},
		{"unknown is rejected", "thumbsup", DefaultReaction, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t)
			Set(KeyReaction, tt.configValue)

			var buf bytes.Buffer
			old := ConfigWarningWriter
			ConfigWarningWriter = &buf
			defer func() { ConfigWarningWriter = old }()

			if got := GetReaction(); got != tt.expected {
				t.Errorf("GetReaction() = %q, want %q", got, tt.expected)
			}
			hasWarning := strings.Contains(buf.String(), "Warning:")
			if hasWarning != tt.expectsWarning {
				t.Errorf("warning = %v, want %v (output %q)", hasWarning, tt.expectsWarning, buf.String())
			}
		})
	}
}

func TestGetReaction_AcceptsEveryRenderedReaction(t *testing.T) {
	for _, content := range tasks.Reactions() {
		setup(t)
		Set(KeyReaction, content)
		assert.Equal(t, content, GetReaction())
	}
}

func TestGetConcurrency(t *testing.T) {
	for _, n := range []int{0, -3} {
		setup(t)
		Set(KeyConcurrency, n)
		var buf bytes.Buffer
		old := ConfigWarningWriter
		ConfigWarningWriter = &buf
		assert.Equal(t, DefaultConcurrency, GetConcurrency())
		ConfigWarningWriter = old
		assert.Contains(t, buf.String(), "Warning:")
	}

	setup(t)
	Set(KeyConcurrency, 12)
	assert.Equal(t, 12, GetConcurrency())
}

func TestValidate(t *testing.T) {
	err := Settings{DocsDir: "docs"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
	assert.Contains(t, err.Error(), "GITHUB_REPOSITORY")

	err = Settings{Token: "t", Owner: "o", Repo: "r"}.Validate()
	assert.ErrorContains(t, err, "docs.dir")

	assert.NoError(t, Settings{Token: "t", Owner: "o", Repo: "r", DocsDir: "docs"}.Validate())
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "(not set)", MaskToken(""))
	assert.Equal(t, "****", MaskToken("abc"))
	assert.Equal(t, "ghp_****", MaskToken("ghp_1234567890"))
	assert.Equal(t, "ghp_****", Settings{Token: "ghp_1234567890"}.MaskedToken())
}

func TestDefaultYAML(t *testing.T) {
	data, err := DefaultYAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "# doctags configuration")

	var parsed struct {
		GitHub struct {
			ServerURL string `yaml:"server_url"`
			APIURL    string `yaml:"api_url"`
		} `yaml:"github"`
		Docs struct {
			Dir            string `yaml:"dir"`
			ArchiveSegment string `yaml:"archive_segment"`
			DefaultLabel   string `yaml:"default_label"`
		} `yaml:"docs"`
		Resolve struct {
			Reaction string `yaml:"reaction"`
		} `yaml:"resolve"`
		Reactions struct {
			Concurrency int `yaml:"concurrency"`
		} `yaml:"reactions"`
		DryRun bool `yaml:"dry_run"`
	}
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	assert.Equal(t, DefaultServerURL, parsed.GitHub.ServerURL)
	assert.Equal(t, DefaultAPIURL, parsed.GitHub.APIURL)
	assert.Equal(t, DefaultDocsDir, parsed.Docs.Dir)
	assert.Equal(t, DefaultArchiveSegment, parsed.Docs.ArchiveSegment)
	assert.Equal(t, DefaultLabel, parsed.Docs.DefaultLabel)
	assert.Equal(t, DefaultReaction, parsed.Resolve.Reaction)
	assert.Equal(t, DefaultConcurrency, parsed.Reactions.Concurrency)
	assert.False(t, parsed.DryRun)
}

func TestWriteDefault(t *testing.T) {
	setup(t)
	require.NoError(t, WriteDefault(FileName, false))
	assert.Error(t, WriteDefault(FileName, false))
	require.NoError(t, WriteDefault(FileName, true))

	ResetForTesting()
	require.NoError(t, Initialize(""))
	s := Load()
	assert.Equal(t, DefaultDocsDir, s.DocsDir)
	assert.Equal(t, DefaultConcurrency, s.Concurrency)
	assert.Empty(t, s.Owner)
}
