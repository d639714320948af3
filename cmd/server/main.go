package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VoidMesh/voxelserver/internal/bridge"
	"github.com/VoidMesh/voxelserver/internal/config"
	"github.com/VoidMesh/voxelserver/internal/logging"
	"github.com/VoidMesh/voxelserver/internal/metrics"
	"github.com/VoidMesh/voxelserver/internal/registry"
	"github.com/VoidMesh/voxelserver/internal/scheduler"
	"github.com/VoidMesh/voxelserver/internal/session"
	"github.com/VoidMesh/voxelserver/internal/terrain"
	"github.com/VoidMesh/voxelserver/internal/world"
	clog "github.com/charmbracelet/log"
)

func main() {
	cfg := config.Load()

	logging.Init(cfg.Logging)
	log := logging.GetLogger()
	log.Debug("configuration loaded", "native_addr", cfg.Server.NativeAddr, "bridge_addr", cfg.Server.BridgeAddr, "metrics_addr", cfg.Server.MetricsAddr)

	gen := terrain.NewGenerator(cfg.World.Seed)
	w := world.New(gen)
	reg := registry.New()
	sinks := metrics.Default()

	spawn := w.Spawn()
	log.Info("world initialized", "spawn_x", spawn.X, "spawn_y", spawn.Y, "spawn_z", spawn.Z)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(reg, w, gen, sinks, cfg.World.SchedulerInterval)
	go sched.Run(ctx.Done())

	go metrics.SampleByteRates(ctx.Done())

	nativeListener, err := net.Listen("tcp", cfg.Server.NativeAddr)
	if err != nil {
		log.Fatal("failed to bind native listener", "err", err)
	}
	go acceptLoop(ctx, nativeListener, reg, w, sinks, cfg.World.DrainInterval, log)
	log.Info("native listener started", "addr", cfg.Server.NativeAddr)

	bridgeMux := http.NewServeMux()
	bridgeMux.Handle("/", bridge.New(cfg.Server.NativeAddr))
	bridgeServer := &http.Server{Addr: cfg.Server.BridgeAddr, Handler: bridgeMux}
	go func() {
		log.Info("websocket bridge started", "addr", cfg.Server.BridgeAddr)
		if err := bridgeServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("bridge server stopped", "err", err)
		}
	}()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsServer := &http.Server{Addr: cfg.Server.MetricsAddr, Handler: metricsMux}
	go func() {
		log.Info("metrics server started", "addr", cfg.Server.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig.String())

	cancel()
	_ = nativeListener.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := bridgeServer.Shutdown(shutdownCtx); err != nil {
		log.Error("bridge server forced to shutdown", "err", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server forced to shutdown", "err", err)
	}

	log.Info("server exited")
}

// acceptLoop runs the listener-accept task (spec §5): one task per
// listener, two tasks per connected client spawned via session.Run.
func acceptLoop(ctx context.Context, ln net.Listener, reg *registry.Registry, w *world.World, sinks *metrics.Sinks, drainInterval time.Duration, log *clog.Logger) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				log.Error("accept failed", "err", err)
				return
			}
		}

		id := reg.NextID()
		spawn := w.Spawn()
		client := registry.NewClient(id, float32(spawn.X), float32(spawn.Y), float32(spawn.Z))
		reg.Add(client)
		w.AddPlayer(&world.Player{ID: id, Position: [3]float32{float32(spawn.X), float32(spawn.Y), float32(spawn.Z)}})
		sinks.ClientCount.Inc()

		sess := session.New(conn, client, reg, w, sinks, drainInterval)
		go sess.Run()
	}
}
