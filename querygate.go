package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/maxpert/querygate/admin"
	"github.com/maxpert/querygate/cfg"
	"github.com/maxpert/querygate/classifier"
	_ "github.com/maxpert/querygate/grammar/sqlite"
	_ "github.com/maxpert/querygate/grammar/vitess"
	"github.com/maxpert/querygate/telemetry"
)

// poolCapacity is the number of idle admin sessions kept per warm session.
const poolCapacity = 4

func main() {
	flag.Parse()

	// Load configuration
	err := cfg.Load(*cfg.ConfigPathFlag)
	if err != nil {
		panic(err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	// Setup logging
	var writer io.Writer = zerolog.NewConsoleWriter()
	if cfg.Config.Logging.Format == "json" {
		writer = os.Stdout
	}
	gLog := zerolog.New(writer).
		With().
		Timestamp().
		Uint64("instance_id", cfg.Config.InstanceID).
		Logger()

	if cfg.Config.Logging.Verbose {
		log.Logger = gLog.Level(zerolog.DebugLevel)
	} else {
		log.Logger = gLog.Level(zerolog.InfoLevel)
	}

	log.Info().Strs("backends", classifier.Backends()).Msg("Querygate - SQL statement classifier")
	log.Debug().Msg("Initializing telemetry")
	telemetry.InitializeTelemetry()
	telemetry.InitMetrics()

	collector := telemetry.NewMetricsCollector(
		classifier.DefaultStats,
		time.Duration(cfg.Config.Prometheus.CollectIntervalSeconds)*time.Second,
	)
	collector.Start()
	defer collector.Stop()

	// Fail fast on a bad backend or cache pattern before serving anything
	first, err := newSession()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create classifier session")
		return
	}
	log.Info().
		Str("backend", first.Backend()).
		Str("sql_mode", first.SQLMode().String()).
		Uint32("server_version", first.ServerVersion()).
		Msg("Classifier ready")
	mode := first.SQLMode()
	first.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Config.Admin.Enabled {
		log.Info().Msg("Admin server disabled")
		<-ctx.Done()
		return
	}

	pool, err := admin.NewSessionPool(newSession, mode, poolCapacity*max(cfg.Config.Admin.PoolWarmup, 1), cfg.Config.Admin.PoolWarmup)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize session pool")
		return
	}
	defer pool.Close()

	if err := serveAdmin(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("Admin server failed")
	}
	log.Info().Msg("Querygate stopped")
}

// newSession builds an initialized session from the process configuration.
func newSession() (*classifier.Session, error) {
	sc, err := classifier.ConfigFromSettings(cfg.Config)
	if err != nil {
		return nil, err
	}
	s, err := classifier.NewSession(sc)
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func serveAdmin(ctx context.Context, pool *admin.SessionPool) error {
	mux := http.NewServeMux()
	admin.RegisterRoutes(mux, admin.NewAdminHandlers(pool, classifier.DefaultStats), cfg.Config.Admin.Secret)

	// Register pprof handlers for profiling
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	if h := telemetry.GetMetricsHandler(); h != nil {
		mux.Handle("/metrics", h)
		log.Info().Msg("Metrics endpoint enabled at /metrics")
	}

	addr := net.JoinHostPort(cfg.Config.Admin.BindAddress, strconv.Itoa(cfg.Config.Admin.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", addr).Msg("Admin server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
