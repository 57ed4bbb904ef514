// Package app wires together all adapters and domain logic.
// It provides lifecycle management for the notelink daemon: create, start, stop.
// The same App answers one-shot CLI requests in-process when no daemon runs.
package app

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/afero"

	"github.com/corey/notelink/internal/adapters/ahocorasick"
	"github.com/corey/notelink/internal/adapters/bbolt"
	fsw "github.com/corey/notelink/internal/adapters/fsnotify"
	"github.com/corey/notelink/internal/adapters/notefs"
	"github.com/corey/notelink/internal/adapters/socket"
	"github.com/corey/notelink/internal/adapters/web"
	"github.com/corey/notelink/internal/domain/titles"
	"github.com/corey/notelink/internal/ports"
)

// Matcher engines.
const (
	EngineTrie    = "trie"
	EngineLibrary = "library"
)

// App is the top-level container wiring all components together.
type App struct {
	NotesDir string
	Paths    *Paths

	Store   *bbolt.Store
	Source  *notefs.Source
	Index   *titles.Index
	Server  *socket.Server
	Web     *web.Server  // nil unless Config.HTTP
	Watcher *fsw.Watcher // nil until Start

	cfg   Config
	log   logr.Logger
	mu    sync.RWMutex           // guards notes; held across index updates so they apply in order
	notes map[string]*ports.Note // id -> note, bodies kept for backlinks

	statusMu   sync.Mutex
	statusPath string // set by Start; empty for one-shot use
}

// Config holds initialization parameters for the App.
type Config struct {
	NotesDir      string
	DBPath        string   // default: .notelink/notelink.db under NotesDir
	SocketPath    string   // default: socket.SocketPath(NotesDir)
	CaseSensitive bool     // false folds titles and text per codepoint
	Engine        string   // EngineTrie (default) or EngineLibrary
	WholeWords    bool     // link only hits that are whole words
	Extensions    []string // default: notefs.DefaultExtensions
	Fs            afero.Fs // notes directory filesystem; nil = OS
	HTTP          bool     // also serve the JSON API over HTTP
	HTTPPort      int      // 0 picks a free port
	Logger        logr.Logger
}

// CompilerFor returns the matcher compiler for an engine name.
func CompilerFor(engine string) (ports.MatcherCompiler, error) {
	switch engine {
	case "", EngineTrie:
		return titles.Compile, nil
	case EngineLibrary:
		return ahocorasick.Compile, nil
	default:
		return nil, fmt.Errorf("unknown engine %q (want %s or %s)", engine, EngineTrie, EngineLibrary)
	}
}

// New creates an App with all dependencies wired and the notes loaded.
// Does not start services.
func New(cfg Config) (*App, error) {
	if cfg.NotesDir == "" {
		return nil, fmt.Errorf("notes directory required")
	}
	abs, err := filepath.Abs(cfg.NotesDir)
	if err != nil {
		return nil, fmt.Errorf("resolve notes dir: %w", err)
	}
	cfg.NotesDir = abs
	if cfg.Engine == "" {
		cfg.Engine = EngineTrie
	}
	compiler, err := CompilerFor(cfg.Engine)
	if err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if ok, err := afero.DirExists(fs, cfg.NotesDir); err != nil || !ok {
		return nil, fmt.Errorf("notes directory %s does not exist", cfg.NotesDir)
	}

	paths := NewPaths(cfg.NotesDir)
	if cfg.DBPath == "" {
		if err := paths.EnsureDirs(); err != nil {
			return nil, fmt.Errorf("create %s: %w", paths.Root, err)
		}
		cfg.DBPath = paths.DB
	}
	if cfg.SocketPath == "" {
		cfg.SocketPath = socket.SocketPath(cfg.NotesDir)
	}

	source, err := notefs.New(fs, cfg.NotesDir, cfg.Extensions)
	if err != nil {
		return nil, err
	}
	source.WithLogger(log)

	store, err := bbolt.NewStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &App{
		NotesDir: cfg.NotesDir,
		Paths:    paths,
		Store:    store,
		Source:   source,
		Index: titles.New(titles.Options{
			CaseSensitive: cfg.CaseSensitive,
			Compiler:      compiler,
			Logger:        log,
		}),
		cfg:   cfg,
		log:   log,
		notes: make(map[string]*ports.Note),
	}

	if _, err := a.Reload(); err != nil {
		store.Close()
		return nil, err
	}

	a.Server = socket.NewServer(a, cfg.SocketPath, log)
	return a, nil
}

// Start begins the daemon (socket server, optional HTTP API, notes
// directory watcher, status file).
func (a *App) Start() error {
	if err := a.Server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	portFile := ""
	if err := a.Paths.EnsureDirs(); err != nil {
		a.log.Error(err, "runtime dir unavailable, no status file", "dir", a.Paths.RunDir)
	} else {
		a.statusMu.Lock()
		a.statusPath = a.Paths.StatusFile
		a.statusMu.Unlock()
		portFile = a.Paths.HTTPPortFile
		a.publishStatus()
	}

	if a.cfg.HTTP {
		srv := web.NewServer(a, portFile, a.log)
		if err := srv.Start(a.cfg.HTTPPort); err != nil {
			a.Server.Stop()
			return fmt.Errorf("start http: %w", err)
		}
		a.Web = srv
		a.log.Info("http api listening", "url", srv.URL())
	}

	// Watcher failure is non-fatal; reload still works on request.
	w, err := fsw.NewWatcher(a.Source.IsNotePath, a.log)
	if err != nil {
		a.log.Error(err, "file watcher unavailable")
		return nil
	}
	if err := w.Watch(a.NotesDir, a.onNoteChanged); err != nil {
		w.Stop()
		a.log.Error(err, "file watcher unavailable", "dir", a.NotesDir)
		return nil
	}
	a.Watcher = w
	a.log.Info("daemon started", "socket", a.Server.Addr(), "notes", a.Index.Len(), "engine", a.cfg.Engine)
	return nil
}

// Stop gracefully shuts down all services and closes the store.
func (a *App) Stop() error {
	if a.Watcher != nil {
		a.Watcher.Stop()
	}
	if a.Web != nil {
		a.Web.Stop()
	}
	a.Server.Stop()
	return a.Store.Close()
}

// Close releases the store of an App that was never started.
func (a *App) Close() error {
	return a.Store.Close()
}

// Reload re-reads every note from the notes directory and the store and
// rebuilds the title matcher. The IO runs outside the lock; only the swap
// is locked. Implements socket.AppQueries.
func (a *App) Reload() (socket.ReloadResult, error) {
	start := time.Now()

	dirNotes, err := a.Source.LoadAll()
	if err != nil {
		return socket.ReloadResult{}, fmt.Errorf("load notes: %w", err)
	}
	storeNotes, err := a.Store.LoadNotes()
	if err != nil {
		return socket.ReloadResult{}, fmt.Errorf("load stored notes: %w", err)
	}

	notes := make(map[string]*ports.Note, len(dirNotes)+len(storeNotes))
	for _, n := range dirNotes {
		notes[n.ID] = n
	}
	for _, n := range storeNotes {
		if _, dup := notes[n.ID]; dup {
			a.log.Info("stored note shadows a file note", "id", n.ID)
		}
		notes[n.ID] = n
	}
	refs := make([]ports.NoteRef, 0, len(notes))
	for _, n := range notes {
		refs = append(refs, n.Ref())
	}

	a.mu.Lock()
	a.notes = notes
	a.Index.Load(refs)
	a.mu.Unlock()
	a.publishStatus()

	elapsed := time.Since(start)
	a.log.V(1).Info("reloaded notes", "files", len(dirNotes), "stored", len(storeNotes), "elapsed", elapsed)
	return socket.ReloadResult{
		NoteCount:  len(notes),
		TitleCount: a.Index.Len(),
		Version:    a.Index.Version(),
		ElapsedMs:  elapsed.Milliseconds(),
	}, nil
}

// Note returns a note by ID, or nil if unknown.
func (a *App) Note(id string) *ports.Note {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.notes[id]
}

// ListNotes returns every known note ordered by title then ID.
func (a *App) ListNotes() []*ports.Note {
	notes := a.snapshotNotes()
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Title < notes[j].Title
	})
	return notes
}

// snapshotNotes copies the note set ordered by ID.
func (a *App) snapshotNotes() []*ports.Note {
	a.mu.RLock()
	notes := make([]*ports.Note, 0, len(a.notes))
	for _, n := range a.notes {
		notes = append(notes, n)
	}
	a.mu.RUnlock()

	sort.Slice(notes, func(i, j int) bool { return notes[i].ID < notes[j].ID })
	return notes
}
