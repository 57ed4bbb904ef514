package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var titlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "List linkable note titles",
	RunE:  runTitles,
}

func runTitles(cmd *cobra.Command, args []string) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	result, err := b.Titles()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatTitles(result))
	return nil
}
