package app

import (
	"github.com/corey/notelink/internal/domain/status"
)

// publishStatus rewrites the status file after an index change.
// A no-op until Start has claimed the runtime directory.
func (a *App) publishStatus() {
	a.statusMu.Lock()
	defer a.statusMu.Unlock()
	if a.statusPath == "" {
		return
	}

	a.mu.RLock()
	noteCount := len(a.notes)
	a.mu.RUnlock()

	data := status.Generate(status.Input{
		Notes:     noteCount,
		Titles:    a.Index.Len(),
		MaxLength: a.Index.MaxLength(),
		Version:   a.Index.Version(),
		Engine:    a.cfg.Engine,
		Refs:      a.linkableRefs(),
	})
	if err := status.WriteJSON(a.statusPath, data); err != nil {
		a.log.Error(err, "write status file", "path", a.statusPath)
	}
}
