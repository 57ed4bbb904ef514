package cmd

import (
	"fmt"

	"github.com/corey/notelink/internal/adapters/socket"
	"github.com/corey/notelink/internal/app"
)

// backend answers link queries, from the daemon when one is running for
// the notes directory, otherwise from an in-process app.
type backend interface {
	Link(params socket.LinkParams) (*socket.LinkResult, error)
	Match(text string) (*socket.MatchResult, error)
	Titles() (*socket.TitlesResult, error)
	Backlinks(params socket.BacklinksParams) (*socket.BacklinksResult, error)
	Close() error
}

type daemonBackend struct {
	*socket.Client
}

func (daemonBackend) Close() error { return nil }

type localBackend struct {
	app *app.App
}

func (b localBackend) Link(params socket.LinkParams) (*socket.LinkResult, error) {
	r := b.app.Link(params)
	return &r, nil
}

func (b localBackend) Match(text string) (*socket.MatchResult, error) {
	r := b.app.Match(text)
	return &r, nil
}

func (b localBackend) Titles() (*socket.TitlesResult, error) {
	r := b.app.Titles()
	return &r, nil
}

func (b localBackend) Backlinks(params socket.BacklinksParams) (*socket.BacklinksResult, error) {
	r, err := b.app.Backlinks(params)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (b localBackend) Close() error { return b.app.Close() }

// openBackend prefers a running daemon and falls back to loading the notes
// in-process.
func openBackend() (backend, error) {
	client := socket.NewClient(socket.SocketPath(settings.NotesDir))
	if client.Ping() {
		logger.V(1).Info("using daemon", "notes", settings.NotesDir)
		return daemonBackend{client}, nil
	}
	a, err := openApp()
	if err != nil {
		return nil, err
	}
	return localBackend{app: a}, nil
}

// openApp loads the notes in-process.
func openApp() (*app.App, error) {
	a, err := app.New(settings.appConfig(logger))
	if err != nil {
		if isDBLockError(err) {
			return nil, fmt.Errorf("%s", diagnoseDBLock(settings.NotesDir))
		}
		return nil, fmt.Errorf("init: %w", err)
	}
	return a, nil
}
