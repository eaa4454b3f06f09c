package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/goblinsan/mixer/pkg/config"
	"github.com/goblinsan/mixer/pkg/engine"
	ghclient "github.com/goblinsan/mixer/pkg/github"
	"github.com/goblinsan/mixer/pkg/linear"
	"github.com/spf13/viper"
)

type service int

const (
	linearService service = 1 << iota
	githubService
	// optionalGitHub builds the backlog client only when GitHub is configured.
	optionalGitHub
)

// app holds the clients one command invocation needs.
type app struct {
	cfg     *config.Config
	tickets *linear.Repository
	backlog *ghclient.Client
}

func newApp(needs service) (*app, error) {
	cfg, err := config.Load(config.Options{File: cfgFile})
	if err != nil {
		return nil, err
	}
	if token := viper.GetString("token"); token != "" {
		cfg.GitHub.Token = token
	}

	if needs&linearService != 0 {
		if err := cfg.RequireLinear(); err != nil {
			return nil, err
		}
	}
	if needs&githubService != 0 {
		if err := cfg.RequireGitHub(); err != nil {
			return nil, err
		}
	}

	a := &app{cfg: cfg}
	if needs&linearService != 0 {
		exec := linear.NewExecutor(cfg.Linear.APIKey, logger)
		if cfg.Linear.APIEndpoint != "" {
			exec = exec.WithEndpoint(cfg.Linear.APIEndpoint)
		}
		a.tickets = linear.NewRepository(exec, cfg.Linear.TeamID, logger)
	}
	if needs&githubService != 0 || (needs&optionalGitHub != 0 && cfg.RequireGitHub() == nil) {
		if a.backlog, err = newBacklogClient(cfg); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func newBacklogClient(cfg *config.Config) (*ghclient.Client, error) {
	if cfg.GitHub.BaseURL != "" {
		return ghclient.NewEnterpriseClient(cfg.GitHub.Token, cfg.GitHub.Repo, cfg.GitHub.BaseURL, logger)
	}
	return ghclient.NewClient(cfg.GitHub.Token, cfg.GitHub.Repo, logger)
}

func (a *app) engine(dryRun bool) *engine.Engine {
	opts := engine.Options{DryRun: dryRun, Logger: logger, Confirm: engine.ConfirmFunc(promptConfirm)}
	if assume {
		opts.Confirm = engine.AlwaysConfirm
	}
	var (
		tickets engine.TicketRepository
		backlog engine.BacklogClient
	)
	if a.tickets != nil {
		tickets = a.tickets
	}
	if a.backlog != nil {
		backlog = a.backlog
	}
	return engine.New(tickets, backlog, opts)
}

func promptConfirm(ctx context.Context, prompt string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return ok, nil
}
