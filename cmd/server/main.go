package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"woodland/internal/config"
	"woodland/internal/dispatch"
	"woodland/internal/engine"
	"woodland/internal/faction"
	"woodland/internal/game"
	"woodland/internal/server"
	"woodland/internal/session"
	"woodland/internal/storage"
	"woodland/internal/storage/redisstore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	log, err := cfg.Logger()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	var games dispatch.Store = store
	if cfg.RedisURL != "" {
		live, err := redisstore.Dial(ctx, cfg.RedisURL, cfg.StateTTL)
		if err != nil {
			return err
		}
		defer live.Close()
		games = &storage.Layered{Live: live, Archive: store}
		log.WithField("ttl", cfg.StateTTL).Info("live state in redis, finished games archived to sqlite")
	}

	e := engine.New(faction.Default(), engine.SystemSource{}, engine.WithLogger(log))
	mgr := session.NewManager(e, session.WithLogger(log))
	d := dispatch.New(e, games, mgr,
		dispatch.WithLogger(log),
		dispatch.WithSaveRetries(cfg.SaveRetries, 50*time.Millisecond))
	mgr.SetSubmit(func(ctx context.Context, gameID, playerID string, a game.Action) error {
		_, err := d.Handle(ctx, gameID, playerID, a)
		return err
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.New(d, mgr, server.WithLogger(log)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		mgr.CleanupLoop(ctx, cfg.CleanupInterval, cfg.MaxGameAge, store)
		return nil
	})
	g.Go(func() error {
		log.WithFields(logrus.Fields{"addr": cfg.Addr, "db": cfg.DBPath}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	})
	return g.Wait()
}
