package runtime

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

type ServiceCtx struct {
	deps            *dependencies
	depOptions      []DependencyOption
	shutdownChannel chan os.Signal
	serverCtx       context.Context
	serverStopFunc  context.CancelFunc
	serverReady     chan struct{}
}

func New(opts ...ServiceOption) *ServiceCtx {
	ctx := &ServiceCtx{
		shutdownChannel: make(chan os.Signal, 1),
	}

	for _, opt := range opts {
		opt(ctx)
	}

	return ctx
}

func (c *ServiceCtx) Run() {
	if err := c.build(); err != nil {
		log.Fatalf("failed to build service: %v", err)
	}

	c.startService()
	c.shutdownHook()

	// Waits for one of the following shutdown conditions to happen.
	select {
	case <-c.serverCtx.Done():
	case <-c.shutdownChannel:
		defer close(c.shutdownChannel)
	}

	c.shutdown()
}

// Stop triggers the same graceful shutdown as SIGTERM.
func (c *ServiceCtx) Stop() {
	if c.serverStopFunc != nil {
		c.serverStopFunc()
	}
}

func (c *ServiceCtx) build() error {
	c.serverCtx, c.serverStopFunc = context.WithCancel(context.Background())

	var err error

	c.deps, err = initializeDependencies(c.serverCtx, c.depOptions...)
	if err != nil {
		return fmt.Errorf("initializing dependencies: %w", err)
	}

	return nil
}

func (c *ServiceCtx) startService() {
	httpListener := c.listen(c.deps.config.HTTPServer.Host, c.deps.config.HTTPServer.Port, "http")

	go func() {
		if err := c.deps.infra.httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	c.startHealthServer()

	if c.serverReady != nil {
		close(c.serverReady)
	}
}

func (c *ServiceCtx) startHealthServer() {
	if c.deps.infra.grpcServer == nil {
		return
	}

	cfg := c.deps.config.HealthServer
	listener := c.listen(cfg.Host, cfg.Port, "gRPC health")

	go c.deps.infra.healthHandler.Watch(c.serverCtx, cfg.PollInterval)

	go func() {
		if err := c.deps.infra.grpcServer.Serve(listener); err != nil {
			log.Fatalf("gRPC health server error: %v", err)
		}
	}()
}

func (c *ServiceCtx) listen(host string, port uint, name string) net.Listener {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("failed to listen on %s: %v", addr, err)
	}

	c.deps.infra.logger.Info().
		Str("address", listener.Addr().String()).
		Msgf("starting the %s server", name)

	return listener
}

func (c *ServiceCtx) shutdownHook() {
	signal.Notify(c.shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
}

func (c *ServiceCtx) shutdown() {
	c.deps.infra.logger.Info().Msg("shutting down service...")

	// Cancel context that underlying processes would start cleanup.
	c.serverStopFunc()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.deps.config.HTTPServer.ShutdownTimeout)
	defer cancel()

	go func() {
		<-shutdownCtx.Done()

		if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
			c.deps.infra.logger.Error().Msg("graceful shutdown timed out.. forcing exit.")
			os.Exit(1)
		}
	}()

	c.stopServers(shutdownCtx)
	c.cleanup(shutdownCtx)

	c.deps.infra.logger.Info().Msg("service shutdown complete")
}

// stopServers drains inbound traffic before storage and exporters go away.
func (c *ServiceCtx) stopServers(shutdownCtx context.Context) {
	if err := c.deps.infra.httpServer.Shutdown(shutdownCtx); err != nil {
		c.deps.infra.logger.Error().Err(err).Msg("failed to shutdown the http server gracefully")
	}

	if c.deps.infra.grpcServer != nil {
		c.deps.infra.grpcServer.GracefulStop()
	}
}

// WaitForServer blocks until the servers are listening.
// Only effective when the service was built WithWaitingForServer.
func (c *ServiceCtx) WaitForServer() {
	if c.serverReady != nil {
		<-c.serverReady
	}
}

func (c *ServiceCtx) cleanup(shutdownCtx context.Context) {
	c.deps.infra.logger.Info().Msg("cleaning up resources...")

	for resource, cleanupFn := range c.deps.cleanupFuncs {
		if err := cleanupFn(shutdownCtx); err != nil {
			c.deps.infra.logger.Error().
				Err(err).
				Str("resource", resource).
				Msg("failed to shutdown the resource gracefully")
		}
	}

	c.deps.infra.logger.Info().Msg("cleanup completed")
}
