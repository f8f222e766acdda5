// Package cli implements the interactive terminal client for the authgate
// server: signup, login, profile and logout driven through a small REPL.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/avdokushin/authgate/internal/client/api"
	"github.com/avdokushin/authgate/internal/client/config"
)

// apiClient is the slice of api.Client the REPL uses; a test seam.
type apiClient interface {
	Signup(ctx context.Context, name, email, password string) (*api.AuthResult, error)
	Login(ctx context.Context, email, password string) (*api.AuthResult, error)
	Logout(ctx context.Context) (*api.AuthResult, error)
	Profile(ctx context.Context) (*api.Profile, error)
	Ping(ctx context.Context) error
}

type App struct {
	config *config.Config
	client apiClient
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {

	client, err := api.NewClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return &App{
		config: c,
		client: client,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	a.repl(ctx)
}
