package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/notelink/internal/adapters/socket"
	"github.com/corey/notelink/internal/app"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows the resolved settings, store and socket paths, and daemon status. No daemon required.",
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	fmt.Fprint(cmd.OutOrStdout(), formatConfig(settings))
	return nil
}

func formatConfig(s *Settings) string {
	sockPath := socket.SocketPath(s.NotesDir)
	dbPath := s.DB
	if dbPath == "" {
		dbPath = app.NewPaths(s.NotesDir).DB
	}
	configFile := s.ConfigFile
	if configFile == "" {
		configFile = "(none)"
	}

	daemonStatus := paint(colorYellow, "✗ not running")
	if socket.NewClient(sockPath).Ping() {
		daemonStatus = paint(colorGreen, "✓ running")
	}

	var sb strings.Builder
	sb.WriteString(paint(colorBold, "⚡ notelink config") + "\n")
	sb.WriteString(fmt.Sprintf("  Notes:       %s\n", s.NotesDir))
	sb.WriteString(fmt.Sprintf("  Config:      %s\n", configFile))
	sb.WriteString(fmt.Sprintf("  Store:       %s\n", dbPath))
	sb.WriteString(fmt.Sprintf("  Socket:      %s\n", sockPath))
	sb.WriteString(fmt.Sprintf("  Engine:      %s\n", s.Engine))
	sb.WriteString(fmt.Sprintf("  Case:        %s\n", caseLabel(s.CaseSensitive)))
	sb.WriteString(fmt.Sprintf("  Whole words: %t\n", s.WholeWords))
	sb.WriteString(fmt.Sprintf("  Extensions:  %s\n", strings.Join(s.Extensions, " ")))
	if s.HTTP {
		sb.WriteString(fmt.Sprintf("  HTTP:        127.0.0.1:%d\n", s.HTTPPort))
	} else {
		sb.WriteString("  HTTP:        off\n")
	}
	sb.WriteString(fmt.Sprintf("  Daemon:      %s\n", daemonStatus))
	return sb.String()
}

func caseLabel(sensitive bool) string {
	if sensitive {
		return "sensitive"
	}
	return "insensitive"
}
