package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/macrat/statwatch/internal/endpoint"
	"github.com/macrat/statwatch/internal/store"
	"github.com/macrat/statwatch/internal/watcher"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

func (cmd *StatwatchCommand) RunServer(ctx context.Context, w *watcher.Watcher, s *store.Store) (exitCode int) {
	if err := s.Restore(); err != nil {
		cmd.Logger.Warn().Err(err).Str("path", s.Path()).Msg("starting without previous state")
	}

	scheduler := cron.New(cron.WithLogger(watcher.CronLogger(cmd.Logger)))

	job := w.Job(ctx, nil)
	scheduler.Schedule(cmd.Schedule, job)

	cmd.Logger.Info().
		Str("url", cmd.Config.URL).
		Str("schedule", cmd.Schedule.String()).
		Strs("components", cmd.Config.Components).
		Int("webhooks", len(cmd.Config.Webhooks)).
		Int("port", cmd.Config.Port).
		Msg("start statwatch")

	eg, ctx := errgroup.WithContext(ctx)

	if cmd.Schedule.NeedKickWhenStart() {
		eg.Go(func() error {
			job.Run()
			return nil
		})
	}

	scheduler.Start()
	eg.Go(func() error {
		<-ctx.Done()
		<-scheduler.Stop().Done()
		return nil
	})

	if cmd.Config.Port > 0 {
		handler := endpoint.New(s, endpoint.Options{
			Title:        cmd.Config.Title,
			RequestLimit: cmd.Config.RateLimit,
		})

		srv := &http.Server{
			Addr:              fmt.Sprintf("0.0.0.0:%d", cmd.Config.Port),
			Handler:           endpoint.WithBasicAuth(handler, cmd.Config.User),
			ReadHeaderTimeout: 10 * time.Second,
		}

		eg.Go(func() error {
			cmd.Logger.Info().Str("addr", srv.Addr).Msg("listening HTTP endpoint")
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		eg.Go(func() error {
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := eg.Wait(); err != nil {
		cmd.Logger.Error().Err(err).Msg("HTTP endpoint stopped")
		exitCode = 1
	}

	cmd.Logger.Info().Msg("stop statwatch")

	return exitCode
}
