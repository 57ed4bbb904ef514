package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/notelink/internal/adapters/web"
	"github.com/corey/notelink/internal/app"
)

// =============================================================================
// Settings: flags over NOTELINK_* env over .notelink.yaml over defaults
// =============================================================================

// parseFlags builds the persistent flag set and parses args into it.
func parseFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("notelink", pflag.ContinueOnError)
	addSettingsFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

// isolate keeps the user's real config and env out of the test.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"NOTES_DIR", "DB", "CASE_SENSITIVE", "ENGINE", "WHOLE_WORDS", "EXTENSIONS", "HTTP", "HTTP_PORT", "VERBOSE"} {
		t.Setenv("NOTELINK_"+k, "")
		os.Unsetenv("NOTELINK_" + k)
	}
	return t.TempDir()
}

func TestLoadSettings_Defaults(t *testing.T) {
	cwd := isolate(t)

	s, err := loadSettings(parseFlags(t), cwd)
	require.NoError(t, err)
	assert.Equal(t, cwd, s.NotesDir)
	assert.Empty(t, s.DB)
	assert.False(t, s.CaseSensitive)
	assert.Equal(t, app.EngineTrie, s.Engine)
	assert.True(t, s.WholeWords)
	assert.Equal(t, []string{".md", ".txt", ".note"}, s.Extensions)
	assert.False(t, s.HTTP)
	assert.Equal(t, web.DefaultPort(cwd), s.HTTPPort)
	assert.Equal(t, 0, s.Verbose)
	assert.Empty(t, s.ConfigFile)
}

func TestLoadSettings_Flags(t *testing.T) {
	cwd := isolate(t)
	notes := t.TempDir()

	s, err := loadSettings(parseFlags(t,
		"--notes-dir", notes,
		"--case-sensitive",
		"--engine", "LIBRARY",
		"--whole-words=false",
		"--ext", "org,md",
		"--http",
		"--http-port", "8088",
		"-vv",
	), cwd)
	require.NoError(t, err)
	assert.Equal(t, notes, s.NotesDir)
	assert.True(t, s.CaseSensitive)
	assert.Equal(t, app.EngineLibrary, s.Engine)
	assert.False(t, s.WholeWords)
	assert.Equal(t, []string{"org", "md"}, s.Extensions)
	assert.True(t, s.HTTP)
	assert.Equal(t, 8088, s.HTTPPort)
	assert.Equal(t, 2, s.Verbose)
}

func TestLoadSettings_ConfigFileInNotesDir(t *testing.T) {
	cwd := isolate(t)
	cfg := "engine: library\nwhole_words: false\nextensions: [md]\n"
	require.NoError(t, os.WriteFile(filepath.Join(cwd, ".notelink.yaml"), []byte(cfg), 0644))

	s, err := loadSettings(parseFlags(t), cwd)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, ".notelink.yaml"), s.ConfigFile)
	assert.Equal(t, app.EngineLibrary, s.Engine)
	assert.False(t, s.WholeWords)
	assert.Equal(t, []string{"md"}, s.Extensions)
}

func TestLoadSettings_Precedence(t *testing.T) {
	cwd := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(cwd, ".notelink.yaml"), []byte("engine: library\ncase_sensitive: true\n"), 0644))
	t.Setenv("NOTELINK_ENGINE", "trie")
	t.Setenv("NOTELINK_WHOLE_WORDS", "false")

	// env beats file
	s, err := loadSettings(parseFlags(t), cwd)
	require.NoError(t, err)
	assert.Equal(t, app.EngineTrie, s.Engine)
	assert.False(t, s.WholeWords)
	assert.True(t, s.CaseSensitive, "file value survives when nothing overrides it")

	// flag beats env
	s, err = loadSettings(parseFlags(t, "--engine", "library"), cwd)
	require.NoError(t, err)
	assert.Equal(t, app.EngineLibrary, s.Engine)
}

func TestLoadSettings_ExplicitConfig(t *testing.T) {
	cwd := isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("case_sensitive: true\n"), 0644))

	s, err := loadSettings(parseFlags(t, "--config", path), cwd)
	require.NoError(t, err)
	assert.True(t, s.CaseSensitive)
	assert.Equal(t, path, s.ConfigFile)

	_, err = loadSettings(parseFlags(t, "--config", filepath.Join(cwd, "missing.yaml")), cwd)
	assert.ErrorContains(t, err, "read config")
}

func TestLoadSettings_RejectsUnknownEngine(t *testing.T) {
	cwd := isolate(t)
	_, err := loadSettings(parseFlags(t, "--engine", "regex"), cwd)
	assert.ErrorContains(t, err, `unknown engine "regex"`)
}

func TestSettings_AppConfig(t *testing.T) {
	s := &Settings{
		NotesDir:      "/notes",
		DB:            "/tmp/n.db",
		CaseSensitive: true,
		Engine:        app.EngineLibrary,
		WholeWords:    true,
		Extensions:    []string{".md"},
		HTTP:          true,
		HTTPPort:      8088,
	}
	cfg := s.appConfig(newLogger(&bytes.Buffer{}, 0))
	assert.Equal(t, "/notes", cfg.NotesDir)
	assert.Equal(t, "/tmp/n.db", cfg.DBPath)
	assert.True(t, cfg.CaseSensitive)
	assert.Equal(t, app.EngineLibrary, cfg.Engine)
	assert.True(t, cfg.WholeWords)
	assert.Equal(t, []string{".md"}, cfg.Extensions)
	assert.True(t, cfg.HTTP)
	assert.Equal(t, 8088, cfg.HTTPPort)
}

func TestNewLogger_Verbosity(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, 0)
	log.Info("visible", "k", 1)
	log.V(1).Info("hidden")
	assert.Contains(t, buf.String(), `"msg"="visible"`)
	assert.Contains(t, buf.String(), `"k"=1`)
	assert.NotContains(t, buf.String(), "hidden")

	buf.Reset()
	newLogger(&buf, 1).WithName("titles").V(1).Info("rebuilt")
	assert.Contains(t, buf.String(), "titles: ")
	assert.Contains(t, buf.String(), "rebuilt")
}
