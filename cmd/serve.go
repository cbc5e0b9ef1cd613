package main

import (
	"context"
	"os/signal"
	"syscall"

	"nexadomus/internal/handlers"
	"nexadomus/internal/server"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if st, err := a.services.Restore(ctx); err != nil {
		a.log.Errorw("timer_restore_failed", "err", err)
	} else if st.Active {
		a.log.Infow("timer_resumed", "remaining_s", st.RemainingSeconds)
	}

	srv := server.New(a.cfg.HTTP.Port, handlers.NewHandler(a.services, a.log).InitRoutes())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Infow("http_listening", "addr", srv.Addr())
		return srv.Run()
	})
	g.Go(func() error {
		a.services.Run(gctx, a.cfg.Status.PollInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Infow("shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
