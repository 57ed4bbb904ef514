package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/corey/notelink/internal/adapters/notefs"
)

// readText returns the text a command works on: the --file contents, the
// arguments joined by spaces, or piped stdin, in that order. When the text
// comes from a note file inside the notes directory, self is that note's ID.
func readText(args []string, file string) (text, self string, err error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", "", fmt.Errorf("read %s: %w", file, err)
		}
		src, err := notefs.New(nil, settings.NotesDir, settings.Extensions)
		if err != nil {
			return "", "", err
		}
		abs, err := filepath.Abs(file)
		if err != nil {
			return "", "", fmt.Errorf("resolve %s: %w", file, err)
		}
		if id, err := src.ID(abs); err == nil && src.IsNotePath(abs) {
			self = id
		}
		return string(data), self, nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), "", nil
	}
	if isStdinPipe() {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "", nil
	}
	return "", "", fmt.Errorf("no text: pass it as arguments, --file, or on stdin")
}
