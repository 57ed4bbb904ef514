package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var noteBody string

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes kept in the note store",
	Long: "Notes kept in the store sit next to the notes directory's files and are\n" +
		"linkable the same way. The store is single-writer: stop the daemon first.",
}

var noteAddCmd = &cobra.Command{
	Use:   "add <title...>",
	Short: "Store a new note (body from --body or stdin)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runNoteAdd,
}

var noteRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a stored note",
	Args:  cobra.ExactArgs(1),
	RunE:  runNoteRm,
}

var noteRenameCmd = &cobra.Command{
	Use:   "rename <id> <title...>",
	Short: "Change a stored note's title",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runNoteRename,
}

var noteLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List every note, from files and the store",
	RunE:  runNoteLs,
}

func init() {
	noteAddCmd.Flags().StringVarP(&noteBody, "body", "b", "", "Note body")
	noteCmd.AddCommand(noteAddCmd)
	noteCmd.AddCommand(noteRmCmd)
	noteCmd.AddCommand(noteRenameCmd)
	noteCmd.AddCommand(noteLsCmd)
}

func runNoteAdd(cmd *cobra.Command, args []string) error {
	body := noteBody
	if body == "" && isStdinPipe() {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		body = string(data)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	note, err := a.AddNote(strings.Join(args, " "), body)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "⚡ added %s  %s\n", paint(colorCyan, note.Title), paint(colorGray, note.ID))
	return nil
}

func runNoteRm(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.DeleteNote(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "⚡ removed %s\n", args[0])
	return nil
}

func runNoteRename(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	title := strings.Join(args[1:], " ")
	if err := a.RenameNote(args[0], title); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "⚡ renamed %s → %s\n", args[0], paint(colorCyan, title))
	return nil
}

func runNoteLs(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprint(cmd.OutOrStdout(), formatNotes(a.ListNotes()))
	return nil
}
