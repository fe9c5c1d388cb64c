// Command hbnb is the interactive console over the hbnb object store.
//
//	hbnb                  read commands from stdin, prompting on a terminal
//	hbnb create User      run a single command and exit
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
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"hbnb/internal/config"
	"hbnb/internal/console"
	"hbnb/internal/logging"
	"hbnb/internal/metrics"
	"hbnb/internal/storage"
	"hbnb/internal/web"
	"hbnb/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	code := cli(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("hbnb", flag.ContinueOnError)
	fs.SetOutput(stderr)
	driver := fs.String("storage", "", "storage driver override: memory|file|sqlite|postgres")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	if *driver != "" {
		cfg.Storage.Driver = *driver
	}
	logging.Init("console", cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	classes := domain.DefaultRegistry()
	store, err := storage.Open(ctx, cfg.Storage, classes, m)
	if err != nil {
		fmt.Fprintf(stderr, "storage: %v\n", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.WithFields(logging.Fields{"event": "storage_close_failed"}).Error(err)
		}
	}()

	if cfg.Metrics.Addr != "" {
		if err := m.RegisterObjects(store, classes.Classes()); err != nil {
			fmt.Fprintf(stderr, "metrics: %v\n", err)
			return 1
		}
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: web.NewRouter(m), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.WithFields(logging.Fields{"event": "metrics_listen_failed"}).Error(err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	c := console.New(store, classes,
		console.WithOutput(stdout),
		console.WithMetrics(m),
		console.WithPrompt(fs.NArg() == 0 && isTerminal(stdin)),
	)
	if fs.NArg() > 0 {
		c.Dispatch(ctx, strings.Join(fs.Args(), " "))
		return 0
	}
	if err := c.Run(ctx, stdin); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(stderr, "console: %v\n", err)
		return 1
	}
	return 0
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
