package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/corey/notelink/internal/adapters/notefs"
	"github.com/corey/notelink/internal/adapters/web"
	"github.com/corey/notelink/internal/app"
)

// Settings is the resolved configuration: flags over NOTELINK_* env vars
// over .notelink.yaml over defaults.
type Settings struct {
	NotesDir      string   `mapstructure:"notes_dir"`
	DB            string   `mapstructure:"db"`
	CaseSensitive bool     `mapstructure:"case_sensitive"`
	Engine        string   `mapstructure:"engine"`
	WholeWords    bool     `mapstructure:"whole_words"`
	Extensions    []string `mapstructure:"extensions"`
	HTTP          bool     `mapstructure:"http"`
	HTTPPort      int      `mapstructure:"http_port"`
	Verbose       int      `mapstructure:"verbose"`

	ConfigFile string `mapstructure:"-"` // file actually read, if any
}

const configName = ".notelink"

// flag name -> config key
var settingsKeys = map[string]string{
	"notes-dir":      "notes_dir",
	"db":             "db",
	"case-sensitive": "case_sensitive",
	"engine":         "engine",
	"whole-words":    "whole_words",
	"ext":            "extensions",
	"http":           "http",
	"http-port":      "http_port",
	"verbose":        "verbose",
}

// addSettingsFlags registers the persistent configuration flags.
func addSettingsFlags(fs *pflag.FlagSet) {
	fs.StringP("notes-dir", "d", "", "Notes directory (default: current directory)")
	fs.String("db", "", "Note store path (default: <notes-dir>/.notelink/notelink.db)")
	fs.Bool("case-sensitive", false, "Match titles case-sensitively")
	fs.String("engine", app.EngineTrie, "Title matcher: trie or library")
	fs.Bool("whole-words", true, "Only link titles that stand as whole words")
	fs.StringSlice("ext", notefs.DefaultExtensions, "Note file extensions")
	fs.Bool("http", false, "Daemon also serves the JSON API over HTTP on localhost")
	fs.Int("http-port", 0, "HTTP API port (default: derived from the notes dir)")
	fs.CountP("verbose", "v", "Log verbosity (-v debug)")
	fs.String("config", "", "Config file (default: .notelink.yaml in the notes dir or $HOME)")
}

// loadSettings resolves Settings from fs, the environment and the config
// file. cwd is the fallback notes directory.
func loadSettings(fs *pflag.FlagSet, cwd string) (*Settings, error) {
	v := viper.New()
	v.SetDefault("notes_dir", "")
	v.SetDefault("db", "")
	v.SetDefault("case_sensitive", false)
	v.SetDefault("engine", app.EngineTrie)
	v.SetDefault("whole_words", true)
	v.SetDefault("extensions", notefs.DefaultExtensions)
	v.SetDefault("http", false)
	v.SetDefault("http_port", 0)
	v.SetDefault("verbose", 0)

	for flag, key := range settingsKeys {
		if f := fs.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind --%s: %w", flag, err)
			}
		}
	}

	v.SetEnvPrefix("NOTELINK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	configFile, _ := fs.GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		dir := v.GetString("notes_dir")
		if dir == "" {
			dir = cwd
		}
		v.AddConfigPath(dir)
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	s.ConfigFile = v.ConfigFileUsed()

	if s.NotesDir == "" {
		s.NotesDir = cwd
	}
	abs, err := filepath.Abs(s.NotesDir)
	if err != nil {
		return nil, fmt.Errorf("resolve notes dir: %w", err)
	}
	s.NotesDir = abs
	if s.HTTPPort == 0 {
		s.HTTPPort = web.DefaultPort(s.NotesDir)
	}
	s.Engine = strings.ToLower(strings.TrimSpace(s.Engine))
	if _, err := app.CompilerFor(s.Engine); err != nil {
		return nil, err
	}
	return &s, nil
}

// appConfig maps settings onto the app's configuration.
func (s *Settings) appConfig(log logr.Logger) app.Config {
	return app.Config{
		NotesDir:      s.NotesDir,
		DBPath:        s.DB,
		CaseSensitive: s.CaseSensitive,
		Engine:        s.Engine,
		WholeWords:    s.WholeWords,
		Extensions:    s.Extensions,
		HTTP:          s.HTTP,
		HTTPPort:      s.HTTPPort,
		Logger:        log,
	}
}

// newLogger builds a key=value logger writing to w at the given verbosity.
func newLogger(w io.Writer, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbosity, LogTimestamp: true})
}
