// SPDX-License-Identifier: AGPL-3.0-or-later
// DMRHub - Run a DMR network server in a single binary
// Copyright (C) 2023-2026 Jacob McSwain
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/USA-RedDragon/DMRHub>

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/USA-RedDragon/configulator"
	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tetrarx/tetrarx/internal/calllog"
	"github.com/tetrarx/tetrarx/internal/config"
	"github.com/tetrarx/tetrarx/internal/eventsink"
	"github.com/tetrarx/tetrarx/internal/gsmtap"
	"github.com/tetrarx/tetrarx/internal/httpapi"
	"github.com/tetrarx/tetrarx/internal/httpapi/eventsocket"
	"github.com/tetrarx/tetrarx/internal/ingest"
	"github.com/tetrarx/tetrarx/internal/kv"
	"github.com/tetrarx/tetrarx/internal/logging"
	"github.com/tetrarx/tetrarx/internal/pipeline"
	"github.com/tetrarx/tetrarx/internal/tetra"
	"github.com/tetrarx/tetrarx/internal/tracing"
)

const fragmentGCThreshold = 4096
const fragmentGCInterval = 5 * time.Minute

func NewCommand(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tetrarx",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		RunE:              runRoot,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	return cmd
}

func runRoot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	fmt.Printf("tetrarx - %s (%s)\n", cmd.Annotations["version"], cmd.Annotations["commit"])

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	logging.SetDefault(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var cleanupTracing func(context.Context) error = func(context.Context) error { return nil }
	if cfg.Metrics.OTLPEndpoint != "" {
		cleanupTracing, err = tracing.Init(ctx, cfg.Metrics.OTLPEndpoint)
		if err != nil {
			return fmt.Errorf("failed to set up tracing: %w", err)
		}
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cleanupTracing(shutdownCtx); err != nil {
			slog.Error("failed to shut down tracer", "error", err)
		}
	}()

	kvStore, err := kv.MakeKV(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to key-value store: %w", err)
	}
	defer func() {
		if err := kvStore.Close(); err != nil {
			slog.Error("failed to close key-value store", "error", err)
		}
	}()

	sinkClient, err := eventsink.Dial(cfg.Sink.Addr)
	if err != nil {
		return fmt.Errorf("failed to connect to event sink: %w", err)
	}
	defer sinkClient.Close()

	events := eventsocket.New(sinkClient)

	var sink interface {
		WriteLine(line []byte) error
	} = events

	if cfg.CallLog.Enabled {
		db, err := calllog.Open(cfg.CallLog.Database)
		if err != nil {
			return fmt.Errorf("failed to open call log database: %w", err)
		}
		sink = calllog.New(db, sink)
	}

	p := pipeline.New(tetra.NewCellContext(), sink).WithKV(kvStore)

	if cfg.GSMTAP.Enabled {
		emitter, err := gsmtap.New(cfg.GSMTAP)
		if err != nil {
			return fmt.Errorf("failed to set up GSMTAP emission: %w", err)
		}
		defer emitter.Close()
		p = p.WithGSMTAP(emitter)
	}

	scheduler, err := setupScheduler(p)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			slog.Error("failed to stop scheduler", "error", err)
		}
	}()

	httpServer := httpapi.New(cfg.HTTP, cfg.LogLevel == config.LogLevelDebug, events)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return httpServer.Run(gCtx)
	})
	g.Go(func() error {
		ingestServer := ingest.New(cfg.Ingest, cfg.PackedInput, p)
		return ingestServer.Run(gCtx)
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
	g.Go(func() error {
		select {
		case sig := <-sigCh:
			slog.Info("shutting down due to signal", "signal", sig)
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	slog.Info("tetrarx ready", "ingest", fmt.Sprintf("%s:%d", cfg.Ingest.Bind, cfg.Ingest.Port), "sink", cfg.Sink.Addr)

	if err := g.Wait(); err != nil && gCtx.Err() == nil {
		return fmt.Errorf("receiver stopped: %w", err)
	}
	return nil
}

// loadConfig loads the configuration from context.
func loadConfig(ctx context.Context) (*config.Config, error) {
	c, err := configulator.FromContext[config.Config](ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get config from context: %w", err)
	}

	cfg, err := c.LoadWithoutValidation()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// setupScheduler creates the background maintenance job that bounds
// the upper MAC's fragment reassembly buffer: fragments whose MAC-END
// never arrives would otherwise accumulate for the life of the
// process.
func setupScheduler(p *pipeline.Pipeline) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(fragmentGCInterval),
		gocron.NewTask(func() {
			if cleared := p.PruneFragments(fragmentGCThreshold); cleared > 0 {
				slog.Warn("cleared stale fragment reassembly buffer", "count", cleared)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule fragment buffer maintenance: %w", err)
	}

	return scheduler, nil
}
