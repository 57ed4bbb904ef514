package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/corey/notelink/internal/adapters/socket"
)

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt returns the string "timeout" when it cannot acquire the file lock
// within the configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "timeout")
}

// diagnoseDBLock checks the daemon state and returns actionable guidance
// when a bbolt open fails due to lock contention. It distinguishes three
// scenarios: daemon running, stale socket, and unknown lock holder.
func diagnoseDBLock(notesDir string) string {
	sockPath := socket.SocketPath(notesDir)
	client := socket.NewClient(sockPath)

	if client.Ping() {
		return "note store is locked by the running daemon\n" +
			"  → stop it first:  notelink daemon stop\n" +
			"  → then retry your command"
	}

	if _, err := os.Stat(sockPath); err == nil {
		return fmt.Sprintf("note store is locked; daemon socket exists but is not responding\n"+
			"  → a previous daemon may have crashed\n"+
			"  → find the process:  ps aux | grep 'notelink daemon'\n"+
			"  → kill it:           kill <PID>\n"+
			"  → clean up socket:   rm %s", sockPath)
	}

	return "note store is locked by another process\n" +
		"  → find the process:  ps aux | grep 'notelink'\n" +
		"  → kill it:           kill <PID>\n" +
		"  → then retry your command"
}
