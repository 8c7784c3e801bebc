package cmd

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xkilldash9x/marketprobe/internal/config"
	"github.com/xkilldash9x/marketprobe/internal/store"
)

// newStore connects the optional run-history store. Returns a nil store (and
// no-op cleanup) when history is disabled; the front-ends treat nil as "no
// recording".
func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store.Store, func(), error) {
	if !cfg.Store.Enabled {
		return nil, func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Store.URL)
	if err != nil {
		return nil, nil, err
	}

	st, err := store.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return st, pool.Close, nil
}
