// Package app assembles the console runtime: the record store, the SSH
// command runner, the pager, the gateway, and the chat connectors.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/opsgate/opsgate/internal/config"
	"github.com/opsgate/opsgate/internal/connectors"
	"github.com/opsgate/opsgate/internal/connectors/telegram"
	"github.com/opsgate/opsgate/internal/gateway"
	"github.com/opsgate/opsgate/internal/pager"
	"github.com/opsgate/opsgate/internal/remote"
	"github.com/opsgate/opsgate/internal/store"
)

const sshDialTimeout = 15 * time.Second

type Runtime struct {
	cfg           config.Config
	logger        *slog.Logger
	store         *store.Store
	sshClient     *remote.Client
	pages         *pager.Service
	gateway       *gateway.Service
	connectors    []connectors.Connector
	sweepSchedule cron.Schedule
}

func New(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	sweepSchedule, err := cron.ParseStandard(cfg.PagerSweepSpec)
	if err != nil {
		return nil, fmt.Errorf("parse pager sweep spec: %w", err)
	}

	sqlStore, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := sqlStore.AutoMigrate(context.Background()); err != nil {
		sqlStore.Close()
		return nil, err
	}

	sshClient, err := remote.Dial(cfg.SSHHost, cfg.SSHPort, cfg.SSHUser, cfg.SSHPassword, sshDialTimeout)
	if err != nil {
		sqlStore.Close()
		return nil, err
	}
	logger.Info("ssh connection established", "address", sshClient.Address())

	runner := remote.NewRunner(
		sshClient,
		time.Duration(cfg.CommandTimeoutSec)*time.Second,
		logger.With("component", "runner"),
	)
	pages := pager.New(cfg.PageMaxChars, cfg.PageMaxLines, logger.With("component", "pager"))
	commandGateway := gateway.New(runner, pages, sqlStore, logger.With("component", "gateway"))

	connectorList := []connectors.Connector{
		telegram.New(cfg.TelegramToken, cfg.TelegramAPI, cfg.TelegramPoll, commandGateway, logger.With("connector", "telegram")),
	}

	return &Runtime{
		cfg:           cfg,
		logger:        logger,
		store:         sqlStore,
		sshClient:     sshClient,
		pages:         pages,
		gateway:       commandGateway,
		connectors:    connectorList,
		sweepSchedule: sweepSchedule,
	}, nil
}

// Gateway exposes the assembled command gateway for local frontends.
func (r *Runtime) Gateway() *gateway.Service {
	return r.gateway
}

func (r *Runtime) Close() error {
	if r.sshClient != nil {
		if err := r.sshClient.Close(); err != nil {
			r.logger.Warn("ssh close failed", "error", err)
		}
	}
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}
