package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/notelink/internal/adapters/socket"
)

var (
	linkFile   string
	linkSelf   string
	linkRender bool
)

var linkCmd = &cobra.Command{
	Use:   "link [text...]",
	Short: "Resolve the links text should carry",
	Long: "Picks non-overlapping whole-word title occurrences (leftmost, then longest)\n" +
		"and lists them, or prints the text rewritten with [[Title]] links (--render).\n" +
		"A note never links to itself; --file inside the notes directory sets --self.",
	RunE: runLink,
}

func init() {
	linkCmd.Flags().StringVarP(&linkFile, "file", "f", "", "Link this file instead of arguments or stdin")
	linkCmd.Flags().StringVar(&linkSelf, "self", "", "ID of the note the text belongs to")
	linkCmd.Flags().BoolVarP(&linkRender, "render", "r", false, "Print the text with link markup")
}

func runLink(cmd *cobra.Command, args []string) error {
	text, self, err := readText(args, linkFile)
	if err != nil {
		return err
	}
	if linkSelf != "" {
		self = linkSelf
	}

	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	params := socket.LinkParams{Text: text, Self: self}
	if cmd.Flags().Changed("whole-words") {
		whole := settings.WholeWords
		params.WholeWords = &whole
	}
	result, err := b.Link(params)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatLinks(result, linkRender))
	return nil
}
