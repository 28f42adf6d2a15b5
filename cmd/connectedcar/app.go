package main

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jrsteele09/go-connectedcar/auth"
	"github.com/jrsteele09/go-connectedcar/connectedcar"
	"github.com/jrsteele09/go-connectedcar/internal/config"
	"github.com/jrsteele09/go-connectedcar/sessions"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app carries what the commands share: the configuration and the session
// loaded before the command runs and saved after it.
type app struct {
	cfg         config.Config
	sessionFile string
	carsFile    string
	repo        sessions.Repo
	state       *sessions.State
	service     *auth.Service
	authOptions []auth.ServiceOption
}

func newApp(c config.Config) *app {
	return &app{
		cfg:         c,
		sessionFile: c.GetSessionFile(),
		carsFile:    c.GetVehicleCacheFile(),
	}
}

func (a *app) loadSession(cmd *cobra.Command, _ []string) error {
	if a.repo == nil {
		a.repo = sessions.NewFileRepo(a.sessionFile)
	}
	state, err := a.repo.Load()
	if err != nil {
		return err
	}
	a.state = state
	return nil
}

// saveSession persists the session at the end of every command.
func (a *app) saveSession(cmd *cobra.Command, _ []string) error {
	if a.state == nil {
		return nil
	}
	return a.repo.Save(a.state)
}

func (a *app) authService() (*auth.Service, error) {
	if a.service != nil {
		return a.service, nil
	}
	options := append([]auth.ServiceOption{
		auth.WithAPIConfig(a.cfg),
		auth.WithHTTPClient(&http.Client{Timeout: a.cfg.GetHTTPTimeout()}),
	}, a.authOptions...)
	service, err := auth.NewService(a.state, a.repo, options...)
	if err != nil {
		return nil, err
	}
	a.service = service
	return service, nil
}

func (a *app) apiClient(cmd *cobra.Command) (*connectedcar.Client, error) {
	service, err := a.authService()
	if err != nil {
		return nil, err
	}
	return connectedcar.NewClient(service.TokenSource(cmd.Context()), a.state.API,
		connectedcar.WithTimeout(a.cfg.GetHTTPTimeout()))
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) requirePackage() error {
	if !a.state.HasPackage() {
		log.Warn().Str("session", a.sessionFile).Msg("No package credentials in session")
		return usageErr("no package credentials in %s, run extract first", a.sessionFile)
	}
	return nil
}
