package commands

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/packidx/internal/catalog"
	"github.com/thoreinstein/packidx/internal/config"
	pkerrors "github.com/thoreinstein/packidx/internal/errors"
	"github.com/thoreinstein/packidx/internal/filter"
	"github.com/thoreinstein/packidx/internal/logging"
	"github.com/thoreinstein/packidx/internal/registry"
)

// loadRegistry reads every configured snapshot and builds the registry with
// the configured filter and vendor aliases.
func loadRegistry(ctx context.Context, cfg *config.Config) (*registry.Registry, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	logger := logging.FromContext(ctx)

	f, err := filter.New(cfg.Filter, filter.WithLogger(logger))
	if err != nil {
		return nil, pkerrors.NewConfigError(err)
	}

	dirs, err := cfg.CatalogDirs()
	if err != nil {
		return nil, pkerrors.NewConfigError(err)
	}

	packs, err := catalog.Load(ctx, dirs, catalog.WithLogger(logger))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, pkerrors.NewUserError(err, "Fix or remove the snapshot files named above")
	}

	reg := registry.New(
		registry.WithLogger(logger),
		registry.WithVendors(cfg.Vendors()),
		registry.WithFilter(f),
	)
	reg.Refresh(packs)
	return reg, nil
}
