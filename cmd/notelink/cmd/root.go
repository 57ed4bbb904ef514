package cmd

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

var (
	settings *Settings
	logger   = logr.Discard()
)

var rootCmd = &cobra.Command{
	Use:           "notelink",
	Short:         "notelink — link note titles wherever they appear",
	Long:          "Finds every occurrence of a note title in text and turns it into a wiki link.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd.Flags(), workingDir())
		if err != nil {
			return err
		}
		settings = s
		logger = newLogger(os.Stderr, s.Verbose)
		colorFlag, _ := cmd.Flags().GetString("color")
		colorEnabled = resolveColor(colorFlag)
		if s.ConfigFile != "" {
			logger.V(1).Info("loaded config", "file", s.ConfigFile)
		}
		return nil
	},
}

// workingDir returns the current directory, the default notes directory.
func workingDir() string {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	addSettingsFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().String("color", "auto", "Color output: auto, always, never")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(titlesCmd)
	rootCmd.AddCommand(backlinksCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
}
