package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/go-sod/b2t/internal/buildinfo"
	b2t "github.com/go-sod/b2t/internal/config"
	"github.com/go-sod/b2t/internal/featurize"
	"github.com/go-sod/b2t/internal/logging"
	"github.com/go-sod/b2t/internal/metrics"
	"github.com/go-sod/b2t/internal/predict"
	"github.com/go-sod/b2t/internal/predictor"
	"github.com/go-sod/b2t/internal/server"
	"github.com/go-sod/b2t/internal/setup"
	"github.com/go-sod/b2t/internal/shutdown"
)

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintf(
		os.Stdout,
		"%s: %s, %s\n",
		buildinfo.Info.Name(),
		buildinfo.Info.Time(),
		buildinfo.Info.Tag(),
	)

	ctx, done := shutdown.New()
	logger := logging.FromContext(ctx)
	if err := run(ctx, done); err != nil {
		logger.Fatal(err)
	}

	defer done()
}

func run(ctx context.Context, cancel func()) error {
	logger := logging.FromContext(ctx)
	config := b2t.Config{}
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}

	if err := metrics.Register(); err != nil {
		return fmt.Errorf("metrics.Register: %w", err)
	}
	exporter, err := metrics.NewExporter("b2t")
	if err != nil {
		return fmt.Errorf("metrics.NewExporter: %w", err)
	}

	dec, model, err := env.ProvideDecoder()(ctx)
	if err != nil {
		return fmt.Errorf("decoder provider function error: %w", err)
	}

	srv, err := server.New(config.SrvAddr, config.MaxConns)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}
	grpcSrv, err := server.New(config.GRPCAddr, config.MaxConns)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	predictHandler, err := predict.NewHandler(&config.Predict, dec, env.Params().TopK)
	if err != nil {
		return fmt.Errorf("predict.NewHandler: %w", err)
	}
	featurizeHandler, err := featurize.NewHandler(&config.Featurize, model.Window, model.Method)
	if err != nil {
		return fmt.Errorf("featurize.NewHandler: %w", err)
	}
	ready := func() error {
		if !dec.Fitted() {
			return predictor.ErrNotFitted
		}
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/predict", predictHandler)
	mux.Handle("/extract", featurizeHandler)
	mux.Handle("/health", server.HandleHealth(ctx, ready))
	mux.Handle("/metrics", exporter)

	grpcServer, health := server.NewHealthGRPC()
	health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	errCh := make(chan error, 3)
	go func() {
		if err := srv.ServeHTTPHandler(ctx, mux); err != nil {
			errCh <- err
			cancel()
		}
	}()
	go func() {
		if err := grpcSrv.ServeGRPC(ctx, grpcServer); err != nil {
			errCh <- err
			cancel()
		}
	}()
	go func() {
		if err := http.ListenAndServe(config.DebugAddr, nil); err != nil {
			logger.Warnf("debug server stopped: %v", err)
		}
	}()

	logger.Infof("Serving model %s on %s (grpc %s)", model.ID, srv.Addr(), grpcSrv.Addr())
	<-ctx.Done()
	health.Shutdown()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
