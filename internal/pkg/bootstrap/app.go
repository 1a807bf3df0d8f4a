package bootstrap

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"printexpress/internal/pkg/nacos"
	"printexpress/internal/tracing"
)

// AppCtx is handed to each service's route registration hook.
type AppCtx struct {
	Mux   *http.ServeMux
	Nacos *nacos.Client
}

// AppInfo carries the service-specific pieces StartService needs.
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx)
	// OnShutdown runs after the HTTP server drains, last-in-first-out.
	OnShutdown []func(ctx context.Context)
}

// StartService wires tracing, metrics, optional nacos registration and
// graceful shutdown around a ServeMux, then blocks until SIGINT/SIGTERM.
func StartService(info AppInfo) {
	cfg := GetCurrentConfig()

	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	var registry *nacos.Client
	var ip string
	if cfg.Infra.Nacos.Enabled {
		registry, err = nacos.NewClient(cfg.Infra.Nacos.ServerAddrs, cfg.Infra.Nacos.Namespace, cfg.Infra.Nacos.Group)
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to initialize nacos client")
		}
		ip, err = outboundIP()
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to resolve outbound IP")
		}
		if err := registry.RegisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
			zlog.Fatal().Err(err).Msg("failed to register with nacos")
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Nacos: registry})
	}

	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}

	g, runCtx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		zlog.Info().Str("addr", server.Addr).Msgf("%s listening", info.ServiceName)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-runCtx.Done():
	}
	zlog.Info().Msgf("shutting down %s", info.ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if registry != nil {
		if err := registry.DeregisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
			zlog.Error().Err(err).Msg("nacos deregistration failed")
		}
	}
	if err := server.Shutdown(ctx); err != nil {
		zlog.Error().Err(err).Msg("http server shutdown failed")
	}
	for _, hook := range info.OnShutdown {
		hook(ctx)
	}
	if err := tp.Shutdown(ctx); err != nil {
		zlog.Error().Err(err).Msg("tracer provider shutdown failed")
	}
	if err := g.Wait(); err != nil {
		zlog.Error().Err(err).Msg("server exited with error")
	}
	zlog.Info().Msgf("%s stopped", info.ServiceName)
}

func outboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}
