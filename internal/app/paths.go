package app

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/corey/notelink/internal/domain/status"
)

// Paths holds all resolved filesystem paths for the .notelink/ directory
// kept inside the notes directory.
type Paths struct {
	Root string // .notelink/
	DB   string // .notelink/notelink.db

	LogDir    string // .notelink/log/
	DaemonLog string // .notelink/log/daemon.log

	RunDir       string // .notelink/run/
	PIDFile      string // .notelink/run/daemon.pid
	StatusFile   string // .notelink/run/status.json
	HTTPPortFile string // .notelink/run/http.port
}

// NewPaths constructs all resolved paths from a notes directory.
func NewPaths(notesDir string) *Paths {
	root := filepath.Join(notesDir, ".notelink")
	return &Paths{
		Root: root,
		DB:   filepath.Join(root, "notelink.db"),

		LogDir:    filepath.Join(root, "log"),
		DaemonLog: filepath.Join(root, "log", "daemon.log"),

		RunDir:       filepath.Join(root, "run"),
		PIDFile:      filepath.Join(root, "run", "daemon.pid"),
		StatusFile:   filepath.Join(root, "run", status.StatusFile),
		HTTPPortFile: filepath.Join(root, "run", "http.port"),
	}
}

// EnsureDirs creates all subdirectories under .notelink/. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.LogDir, p.RunDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// WritePID records pid in the PID file.
func (p *Paths) WritePID(pid int) error {
	return os.WriteFile(p.PIDFile, []byte(strconv.Itoa(pid)+"\n"), 0644)
}

// ReadPID returns the recorded daemon PID, or 0 if none is recorded.
func (p *Paths) ReadPID() int {
	data, err := os.ReadFile(p.PIDFile)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}

// CleanEphemeral removes ephemeral runtime files.
// Called on clean daemon shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PIDFile)
	os.Remove(p.StatusFile)
	os.Remove(p.HTTPPortFile)
}
