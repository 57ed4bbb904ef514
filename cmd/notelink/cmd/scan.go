package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scanFile string

var scanCmd = &cobra.Command{
	Use:   "scan [text...]",
	Short: "Report every note title occurring in text",
	Long: "Reports every occurrence of every note title, overlapping ones included,\n" +
		"with codepoint offsets. Uses the daemon when it is running.",
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanFile, "file", "f", "", "Scan this file instead of arguments or stdin")
}

func runScan(cmd *cobra.Command, args []string) error {
	text, _, err := readText(args, scanFile)
	if err != nil {
		return err
	}

	b, err := openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	result, err := b.Match(text)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatMatches(result))
	return nil
}
