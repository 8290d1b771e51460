package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hotcache/cache"
	"hotcache/internal/api"
	"hotcache/internal/catalog"
	"hotcache/internal/config"
	"hotcache/internal/observability"
	"hotcache/internal/source"
	"hotcache/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// Run loads the cache, serves it over HTTP and blocks until ctx is
// cancelled or SIGINT/SIGTERM arrives.
func Run(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader, closeLoader, err := newLoader(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLoader()

	entries, err := cache.New(catalog.Producer(loader)).
		Name(cfg.Cache.Name).
		Frequency(cfg.Cache.Frequency).
		Timeout(cfg.Cache.Timeout).
		Observer(observability.CacheObserver{}).
		Load(ctx)
	if err != nil {
		return fmt.Errorf("load cache: %w", err)
	}
	defer entries.Close()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Router(api.NewEntriesHandler(entries)),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.Addr).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutdown...")
		shCtx, shCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shCancel()
		return srv.Shutdown(shCtx)
	})
	return g.Wait()
}

// newLoader builds the entry loader selected by source.kind.
func newLoader(ctx context.Context, cfg config.Config) (catalog.Loader, func(), error) {
	switch cfg.Source.Kind {
	case config.SourcePostgres:
		store, err := storage.New(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("init storage: %w", err)
		}
		log.Info().Str("source", config.SourcePostgres).Msg("loading entries from postgres")
		return store, store.Close, nil
	case config.SourceHTTP:
		src, err := source.NewHTTP(cfg.Source.URL, &http.Client{Timeout: 30 * time.Second})
		if err != nil {
			return nil, nil, fmt.Errorf("init http source: %w", err)
		}
		log.Info().Str("source", src.String()).Msg("loading entries over http")
		return src, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
}
