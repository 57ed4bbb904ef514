package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/notelink/internal/adapters/socket"
	"github.com/corey/notelink/internal/ports"
)

var backlinksCmd = &cobra.Command{
	Use:   "backlinks <note-id | title>",
	Short: "List notes that link to a note",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBacklinks,
}

func runBacklinks(cmd *cobra.Command, args []string) error {
	key := strings.Join(args, " ")

	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	result, err := b.Backlinks(socket.BacklinksParams{ID: key})
	if err != nil && isNotFound(err) {
		result, err = b.Backlinks(socket.BacklinksParams{Title: key})
	}
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatBacklinks(result))
	return nil
}

// isNotFound matches ErrNoteNotFound locally and its text over the socket.
func isNotFound(err error) bool {
	return errors.Is(err, ports.ErrNoteNotFound) || strings.Contains(err.Error(), ports.ErrNoteNotFound.Error())
}
