// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	clientiot "github.com/luxfi/iot/client/iot"
	"github.com/luxfi/iot/comms"
	iotconfig "github.com/luxfi/iot/config/iot"
	"github.com/luxfi/iot/endpoint"
	engineiot "github.com/luxfi/iot/engine/iot"
	iotlog "github.com/luxfi/iot/log"
	iotmetrics "github.com/luxfi/iot/metrics/iot"
	"github.com/luxfi/iot/store"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Load the configured descriptor set and start serving",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath)
		},
	}
}

func run(ctx context.Context, cfgPath string) error {
	cfg, err := iotconfig.Load(cfgPath)
	if err != nil {
		return err
	}

	logger := iotlog.NewZapLogger(cfg.LogLevel)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	info, err := loadInfo(cfg)
	if err != nil {
		return err
	}

	udp, err := comms.Listen(cfg.ListenAddr)
	if err != nil {
		return err
	}
	defer udp.Close()

	reg := prometheus.NewRegistry()
	metrics := iotmetrics.New(reg)
	if cfg.MetricsAddr != "" {
		serveMetrics(cfg.MetricsAddr, reg, logger)
	}

	advertiser := maybeAdvertise(cfg, logger)
	if advertiser != nil {
		defer advertiser.Shutdown()
	}

	e, err := engineiot.New(engineiot.Config{
		Store:         st,
		Comms:         udp,
		Info:          info,
		LeaseInterval: time.Duration(cfg.LeaseInterval),
		BufferSize:    cfg.BufferSize,
		Log:           logger,
		Metrics:       metrics,
	})
	if err != nil {
		return err
	}

	logger.Info("iotd started", "id", e.Id(), "addr", cfg.ListenAddr)

	var admin *clientiot.Server
	if cfg.AdminSocket != "" {
		os.Remove(cfg.AdminSocket)
		admin, err = clientiot.Listen("unix", cfg.AdminSocket, logger)
		if err != nil {
			return err
		}
		defer admin.Close()
		go admin.Accept()
	}
	handler := &adminHandler{engine: e, store: st, listenPort: listenPort(cfg.ListenAddr, logger)}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("iotd shutting down")
		cancel()
	}()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-runCtx.Done():
			return nil
		case <-ticker.C:
			if admin != nil {
				admin.Drain(handler)
			}
			ev, err := e.Tick()
			if err != nil {
				logger.Warn("tick error", "err", err)
				continue
			}
			if ev.Kind != engineiot.EventNone {
				logger.Debug("event", "kind", ev.Kind, "peer", ev.PeerId)
			}
		}
	}
}

func listenPort(addr string, logger log.Logger) int {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		logger.Warn("cannot parse listen port", "port", portStr, "err", err)
		return 0
	}
	return port
}

func openStore(cfg iotconfig.Config) (store.Store, error) {
	if cfg.StoreBackend == iotconfig.StorePebble {
		return store.OpenPebble(cfg.StorePath)
	}
	return store.NewMemory(), nil
}

func loadInfo(cfg iotconfig.Config) (endpoint.Info, error) {
	if cfg.Descriptors == "" {
		return endpoint.Info{}, nil
	}
	descriptors, err := iotconfig.LoadDescriptors(cfg.Descriptors)
	if err != nil {
		return endpoint.Info{}, err
	}
	return endpoint.NewInfo(0, descriptors...)
}

func maybeAdvertise(cfg iotconfig.Config, logger log.Logger) *comms.Advertiser {
	if !cfg.EnableMDNS {
		return nil
	}
	adv, err := comms.Advertise("iotd", listenPort(cfg.ListenAddr, logger))
	if err != nil {
		logger.Warn("mdns advertise failed", "err", err)
		return nil
	}
	return adv
}

func serveMetrics(addr string, reg *prometheus.Registry, logger log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics server failed", "err", err)
		}
	}()
}
