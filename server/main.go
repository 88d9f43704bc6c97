package main

import (
	"context"
	"errors"
	"fmt"
	nhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-currency-converter/config"
	"go-currency-converter/exchange"
	"go-currency-converter/http"
	"go-currency-converter/ratestore"
	"go-currency-converter/source"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var convertService exchange.Service
	convertService = exchange.NewService(ratestore.New(), log.With(logger, "component", "convert"))
	convertService = exchange.NewLoggingService(log.With(logger, "component", "convert"), convertService)
	convertService = exchange.NewInstrumentingService(exchange.NewMetrics(registry), convertService)

	var reloader http.Reloader
	if cfg.RatesFile != "" {
		ratesSource := source.NewFileSource(cfg.RatesFile)
		ratesSource = source.NewLoggingSource(log.With(logger, "component", "rates_file"), ratesSource)

		refresher := source.NewRefresher(ratesSource, convertService, cfg.RefreshInterval, log.With(logger, "component", "refresher"))
		if err := refresher.Refresh(ctx); err != nil {
			return fmt.Errorf("initial rates [%v]: %w", cfg.RatesFile, err)
		}
		go refresher.Run(ctx)
		reloader = refresher
	}

	mux := nhttp.NewServeMux()
	mux.Handle(cfg.MetricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle("/", http.NewServer(convertService, reloader, log.With(logger, "component", "http")))

	server := &nhttp.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	errc := make(chan error, 1)
	go func() {
		level.Info(logger).Log("msg", "listening", "addr", cfg.HTTPAddr)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, nhttp.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	level.Info(logger).Log("msg", "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
