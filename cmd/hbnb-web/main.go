// Command hbnb-web serves the hbnb web front end and its metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hbnb/internal/config"
	"hbnb/internal/logging"
	"hbnb/internal/metrics"
	"hbnb/internal/storage"
	"hbnb/internal/web"
	"hbnb/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli(ctx, os.Args[1:], os.Stderr)
	stop()
	exitFunc(code)
}

func cli(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("hbnb-web", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", "", "listen address (overrides HBNB_WEB_ADDR)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	if *addr != "" {
		cfg.Web.Addr = *addr
	}
	logging.Init("web", cfg.Log.Level)

	m := metrics.New()
	classes := domain.DefaultRegistry()
	store, err := storage.Open(ctx, cfg.Storage, classes, m)
	if err != nil {
		fmt.Fprintf(stderr, "storage: %v\n", err)
		return 1
	}
	defer store.Close()
	if err := m.RegisterObjects(store, classes.Classes()); err != nil {
		fmt.Fprintf(stderr, "metrics: %v\n", err)
		return 1
	}

	srv := &http.Server{
		Addr:              cfg.Web.Addr,
		Handler:           web.NewRouter(m),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		logging.WithFields(logging.Fields{"event": "listen", "addr": cfg.Web.Addr}).Info("serving")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(stderr, "listen: %v\n", err)
			return 1
		}
		return 0
	case <-ctx.Done():
	}
	logging.WithFields(logging.Fields{"event": "ctx_cancel"}).Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("server shutdown failed: ", err)
		return 1
	}
	return 0
}
