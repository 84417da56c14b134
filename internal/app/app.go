// Package app wires the client together: config, backend client, launch
// context, account and deck.
package app

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/arcanaland/tarotluna/internal/account"
	"github.com/arcanaland/tarotluna/internal/api"
	"github.com/arcanaland/tarotluna/internal/card"
	"github.com/arcanaland/tarotluna/internal/config"
	"github.com/arcanaland/tarotluna/internal/deck"
	"github.com/arcanaland/tarotluna/internal/host"
	"github.com/arcanaland/tarotluna/internal/reading"
)

// App holds the components shared by every command
type App struct {
	Config  *config.Config
	Client  *api.Client
	Host    *host.Host
	Account *account.Account
	Deck    []card.Definition
}

// New builds the application from cfg. Output for the user goes to out.
func New(cfg *config.Config, out io.Writer) (*App, error) {
	cards, err := loadDeck(cfg.DeckPath)
	if err != nil {
		return nil, err
	}

	var feedback host.Feedback = host.Noop{}
	if cfg.Haptics {
		feedback = host.NewTerminal(out)
	}

	h := host.New(cfg.InitData,
		host.WithFeedback(feedback),
		host.WithOpener(host.PrintOpener{W: out}),
	)

	client := api.NewClient(cfg.APIURL, h.InitData(), api.WithTimeout(cfg.HTTPTimeout))
	acct := account.New(client, h, config.NewStore(config.GetConfigFilePath()))

	log.WithFields(log.Fields{
		"api_url": client.BaseURL(),
		"in_host": h.InHost(),
		"deck":    len(cards),
	}).Debug("Application initialized")

	return &App{
		Config:  cfg,
		Client:  client,
		Host:    h,
		Account: acct,
		Deck:    cards,
	}, nil
}

func loadDeck(path string) ([]card.Definition, error) {
	if path == "" {
		return deck.Default()
	}
	cards, err := deck.Load(path)
	if err != nil {
		return nil, fmt.Errorf("error loading deck %s: %w", path, err)
	}
	return cards, nil
}

// Denylist returns the built-in denylist extended with configured stems
func (a *App) Denylist() *reading.Denylist {
	list := reading.DefaultDenylist()
	if len(a.Config.Denylist) > 0 {
		list = list.WithStems(a.Config.Denylist...)
	}
	return list
}

// NewController creates a reading controller for the loaded account
func (a *App) NewController(t reading.Type, nav reading.Navigator, obs reading.Observer) (*reading.Controller, error) {
	return reading.NewController(a.Client, a.Account, reading.Options{
		Type:      t,
		UserID:    a.Account.UserID(),
		Deck:      a.Deck,
		Feedback:  a.Host.Feedback(),
		Navigator: nav,
		Observer:  obs,
		Denylist:  a.Denylist(),
	})
}
