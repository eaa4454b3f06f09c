package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goblinsan/mixer/pkg/errs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sampleConfig = `github:
  repo: acme/widgets
linear:
  workspace: acme
  team_id: SYS
`

func clearSecrets(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GITHUB_TOKEN", "GH_TOKEN", "LINEAR_API_KEY", "LINEAR_TOKEN"} {
		t.Setenv(k, "")
	}
}

func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func TestLoadReadsFileAndSecrets(t *testing.T) {
	clearSecrets(t)
	t.Setenv("GH_TOKEN", "gh-fallback")
	t.Setenv("LINEAR_API_KEY", "lin_api_key")

	fs := memFs(t, map[string]string{"/proj/config.yaml": sampleConfig})
	cfg, err := Load(Options{Root: "/proj", Fs: fs})
	require.NoError(t, err)

	assert.Equal(t, "acme/widgets", cfg.GitHub.Repo)
	assert.Equal(t, "acme", cfg.GitHub.Owner())
	assert.Equal(t, "widgets", cfg.GitHub.Name())
	assert.Equal(t, "acme", cfg.Linear.Workspace)
	assert.Equal(t, "SYS", cfg.Linear.TeamID)
	assert.Equal(t, "gh-fallback", cfg.GitHub.Token)
	assert.Equal(t, "lin_api_key", cfg.Linear.APIKey)
	assert.Equal(t, filepath.Join("/proj", FileName), cfg.Path)
	assert.NoError(t, cfg.Validate())
}

func TestLoadPrefersPrimaryTokenNames(t *testing.T) {
	clearSecrets(t)
	t.Setenv("GITHUB_TOKEN", "primary")
	t.Setenv("GH_TOKEN", "secondary")
	t.Setenv("LINEAR_API_KEY", "key-a")
	t.Setenv("LINEAR_TOKEN", "key-b")

	fs := memFs(t, map[string]string{"/proj/config.yaml": sampleConfig})
	cfg, err := Load(Options{Root: "/proj", Fs: fs})
	require.NoError(t, err)

	assert.Equal(t, "primary", cfg.GitHub.Token)
	assert.Equal(t, "key-a", cfg.Linear.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(Options{Root: "/nowhere", Fs: afero.NewMemMapFs()})
	require.Error(t, err)
	assert.True(t, errs.IsConfiguration(err))
	assert.Contains(t, err.Error(), "github.repo")
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	const fresh = "MIXER_TEST_DOTENV_FRESH"
	const preset = "MIXER_TEST_DOTENV_PRESET"
	t.Setenv(preset, "from-env")
	os.Unsetenv(fresh)
	t.Cleanup(func() { os.Unsetenv(fresh) })

	fs := memFs(t, map[string]string{
		"/proj/.env": fresh + "=from-file\n" + preset + "=from-file\n",
	})
	require.NoError(t, LoadDotEnv(fs, "/proj"))

	assert.Equal(t, "from-file", os.Getenv(fresh))
	assert.Equal(t, "from-env", os.Getenv(preset))
}

func TestLoadDotEnvFallsBackToParent(t *testing.T) {
	const key = "MIXER_TEST_DOTENV_PARENT"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	fs := memFs(t, map[string]string{"/work/.env": key + "=parent\n"})
	require.NoError(t, LoadDotEnv(fs, "/work/proj"))
	assert.Equal(t, "parent", os.Getenv(key))
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := &Config{GitHub: GitHubConfig{Repo: "not-a-slug"}}

	err := cfg.Validate()
	require.Error(t, err)

	var cerr *errs.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Len(t, cerr.Problems, 5)
	assert.Contains(t, cerr.Problems[0], "owner/repo")

	assert.Error(t, cfg.RequireGitHub())
	cfg.Linear = LinearConfig{Workspace: "acme", TeamID: "SYS", APIKey: "k"}
	assert.NoError(t, cfg.RequireLinear())
}

func TestTemplate(t *testing.T) {
	out, err := Template("acme/widgets", "acme", "SYS")
	require.NoError(t, err)

	var back map[string]map[string]string
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, "acme/widgets", back["github"]["repo"])
	assert.Equal(t, "SYS", back["linear"]["team_id"])
	assert.NotContains(t, string(out), "token")
	assert.NotContains(t, string(out), "api_key")
}
