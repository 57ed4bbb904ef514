package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/notelink/internal/adapters/socket"
	"github.com/corey/notelink/internal/app"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the notelink daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the daemon in the foreground",
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE:  runDaemonStop,
}

var daemonReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Re-read every note and rebuild the title automaton",
	RunE:  runDaemonReload,
}

func init() {
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonReloadCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	sockPath := socket.SocketPath(settings.NotesDir)

	client := socket.NewClient(sockPath)
	if client.Ping() {
		fmt.Println("⚡ daemon already running")
		return nil
	}

	// Daemon logs go to stderr and .notelink/log/daemon.log
	paths := app.NewPaths(settings.NotesDir)
	if err := paths.EnsureDirs(); err != nil {
		return fmt.Errorf("create %s: %w", paths.Root, err)
	}
	logFile, err := os.OpenFile(paths.DaemonLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open daemon log: %w", err)
	}
	defer logFile.Close()
	logger = newLogger(io.MultiWriter(os.Stderr, logFile), settings.Verbose)

	a, err := openApp()
	if err != nil {
		return err
	}
	if err := a.Start(); err != nil {
		a.Close()
		return err
	}
	if err := a.Paths.WritePID(os.Getpid()); err != nil {
		logger.Error(err, "write pid file", "path", a.Paths.PIDFile)
	}
	defer a.Paths.CleanEphemeral()

	fmt.Printf("⚡ notelink daemon started at %s (%d titles)\n", sockPath, a.Index.Len())
	if a.Web != nil {
		fmt.Printf("  HTTP API: %s\n", a.Web.URL())
	}

	// Wait for a signal or a remote shutdown request
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-a.Server.ShutdownCh():
	}

	fmt.Println("\n⚡ shutting down...")
	return a.Stop()
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	client := socket.NewClient(socket.SocketPath(settings.NotesDir))

	if !client.Ping() {
		fmt.Println("⚡ daemon is not running")
		return nil
	}

	if err := client.Shutdown(); err != nil {
		return err
	}

	fmt.Println("⚡ daemon stopped")
	return nil
}

func runDaemonReload(cmd *cobra.Command, args []string) error {
	client := socket.NewClient(socket.SocketPath(settings.NotesDir))

	if !client.Ping() {
		fmt.Println("⚡ daemon is not running")
		return nil
	}

	result, err := client.Reload()
	if err != nil {
		return err
	}
	fmt.Printf("⚡ reloaded %d notes, %d titles │ %dms\n", result.NoteCount, result.TitleCount, result.ElapsedMs)
	return nil
}
