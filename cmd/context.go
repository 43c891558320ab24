package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/evanklingensmith/hungrymarmots/internal/data"
	"github.com/evanklingensmith/hungrymarmots/internal/docstore/sqlitedoc"
	"github.com/evanklingensmith/hungrymarmots/internal/localstate"
	"github.com/evanklingensmith/hungrymarmots/internal/syncconfig"
	"github.com/evanklingensmith/hungrymarmots/internal/syncer"
)

const docsFile = ".marmots/docs.db"

// appContext bundles everything an invocation needs: config, the
// document store, the sync coordinator, and the data layer.
type appContext struct {
	Config *syncconfig.Config
	Store  *data.Store

	docs  *sqlitedoc.Store
	state *localstate.DB
	coord *syncer.Coordinator
}

// openApp opens the app context for commands that require a configured
// profile. It fails with a hint when `marmots init` has not run.
func openApp() (*appContext, error) {
	cfg, err := syncconfig.Load(getBaseDir())
	if err != nil {
		return nil, err
	}
	if cfg.Profile.UID == "" {
		return nil, errors.New("no profile configured: run 'marmots init' first")
	}

	state, err := localstate.Open(getBaseDir())
	if err != nil {
		return nil, err
	}

	docs, err := sqlitedoc.Open(filepath.Join(getBaseDir(), docsFile))
	if err != nil {
		state.Close()
		return nil, err
	}

	coord, err := syncer.New(state, syncer.Options{
		WriteTimeout:     cfg.WriteTimeout(),
		DebounceInterval: cfg.DebounceInterval(),
		Docs:             docs,
	})
	if err != nil {
		docs.Close()
		state.Close()
		return nil, err
	}

	return &appContext{
		Config: cfg,
		Store:  data.NewStore(docs, coord, cfg.Profile),
		docs:   docs,
		state:  state,
		coord:  coord,
	}, nil
}

// Close releases the context's resources.
func (a *appContext) Close() {
	a.coord.Close()
	a.docs.Close()
	a.state.Close()
}

// householdID returns the selected household, preferring the --household
// flag when set on the invoked command.
func (a *appContext) householdID(flags *pflag.FlagSet) (string, error) {
	if flagValue, err := flags.GetString("household"); err == nil && flagValue != "" {
		return flagValue, nil
	}
	if a.Config.Household != "" {
		return a.Config.Household, nil
	}
	return "", fmt.Errorf("no household selected: run 'marmots household use <id>' or pass --household")
}
