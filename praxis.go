// Package praxis provides a small operations platform: a knowledge store
// with versioned ingestion and search, an ops controller for incidents and
// guarded runbooks, a quality gate for repository scans, and a catalog
// query service.
//
// Basic usage:
//
//	client, err := praxis.New(
//	    praxis.WithConfig(cfg),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	results, err := client.Knowledge.Ingest(ctx, runID, requests)
package praxis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	appcatalog "github.com/praxisops/praxis/application/catalog"
	appgate "github.com/praxisops/praxis/application/gate"
	appknowledge "github.com/praxisops/praxis/application/knowledge"
	appops "github.com/praxisops/praxis/application/ops"
	"github.com/praxisops/praxis/domain/catalog"
	"github.com/praxisops/praxis/domain/gate"
	"github.com/praxisops/praxis/domain/knowledge"
	"github.com/praxisops/praxis/domain/ops"
	"github.com/praxisops/praxis/infrastructure/blob"
	"github.com/praxisops/praxis/infrastructure/bus"
	"github.com/praxisops/praxis/infrastructure/detectors"
	"github.com/praxisops/praxis/infrastructure/index"
	"github.com/praxisops/praxis/infrastructure/memory"
	"github.com/praxisops/praxis/infrastructure/persistence"
	"github.com/praxisops/praxis/infrastructure/probe"
	"github.com/praxisops/praxis/internal/config"
	"github.com/praxisops/praxis/internal/database"
	"github.com/praxisops/praxis/internal/log"
)

// Client is the main entry point for the praxis library.
//
// Access services via struct fields:
//
//	client.Knowledge.Ingest(ctx, runID, requests)
//	client.Ops.ExecuteRunbook(ctx, req)
//	client.Gate.Scan(ctx, repoPath, commit)
//	client.Catalog.List(ctx, query)
type Client struct {
	Knowledge *appknowledge.Service
	Ops       *appops.Controller
	Gate      *appgate.Service
	Catalog   *appcatalog.Service

	cfg     config.AppConfig
	db      database.Database
	bus     ops.IntegrationBus
	logger  *log.Logger
	closers []io.Closer
	closed  atomic.Bool
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cc := newClientConfig()
	for _, opt := range opts {
		opt(cc)
	}
	cfg := cc.appConfig

	logger := cc.logger
	if logger == nil {
		logger = log.New(log.ParseFormat(cfg.LogFormat()), cfg.LogLevel())
	}

	client := &Client{cfg: cfg, logger: logger, closers: cc.closers}

	var (
		entries   knowledge.EntryStore
		runs      knowledge.RunStore
		services  ops.ServiceStore
		incidents ops.IncidentStore
		actions   ops.ActionStore
		jobs      ops.JobStore
		logs      ops.LogSink
		audit     ops.AuditLog
		scans     gate.ScanStore
		books     catalog.BookStore
	)

	switch cfg.Persistence() {
	case config.PersistenceDurable:
		db, err := database.New(context.Background(), cfg.DocumentStoreURI())
		if err != nil {
			return nil, fmt.Errorf("open document store: %w", err)
		}
		if err := persistence.AutoMigrate(db); err != nil {
			errClose := db.Close()
			return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
		}
		client.db = db
		entries = persistence.NewEntryStore(db)
		runs = persistence.NewRunStore(db)
		services = persistence.NewServiceStore(db)
		incidents = persistence.NewIncidentStore(db)
		actions = persistence.NewActionStore(db)
		jobs = persistence.NewJobStore(db)
		logs = persistence.NewLogSink(db)
		audit = persistence.NewAuditLog(db)
		scans = persistence.NewScanStore(db)
		books = persistence.NewBookStore(db)
	default:
		entries = memory.NewEntryStore()
		runs = memory.NewRunStore()
		services = memory.NewServiceStore()
		incidents = memory.NewIncidentStore()
		actions = memory.NewActionStore()
		jobs = memory.NewJobStore()
		logs = memory.NewLogSink()
		audit = memory.NewAuditLog()
		scans = memory.NewScanStore()
		books = memory.NewBookStore()
	}

	integrationBus := cc.bus
	if integrationBus == nil {
		if cfg.BusRedisURL() != "" {
			redisBus, err := bus.NewRedis(cfg.BusRedisURL())
			if err != nil {
				errClose := client.closeStores()
				return nil, errors.Join(fmt.Errorf("connect bus: %w", err), errClose)
			}
			client.closers = append(client.closers, redisBus)
			integrationBus = redisBus
		} else {
			integrationBus = bus.NewMemory()
		}
	}
	client.bus = integrationBus

	knowledgeOpts := []appknowledge.ServiceOption{}
	if cfg.BlobBucket() != "" {
		blobs, err := blob.NewStore(cfg.BlobBucket())
		if err != nil {
			errClose := client.closeStores()
			return nil, errors.Join(fmt.Errorf("open blob store: %w", err), errClose)
		}
		knowledgeOpts = append(knowledgeOpts, appknowledge.WithBlobStore(blobs))
	}
	client.Knowledge = appknowledge.NewService(entries, runs, index.New(), logger, knowledgeOpts...)

	opsOpts := []appops.ControllerOption{
		appops.WithProber(probe.NewHTTP(cfg.ProbeTimeout())),
	}
	if cc.runner != nil {
		opsOpts = append(opsOpts, appops.WithRunner(cc.runner))
	}
	client.Ops = appops.NewController(services, incidents, actions, jobs, logs, integrationBus, audit, logger, opsOpts...)

	gateDetectors := cc.detectors
	if gateDetectors == nil {
		gateDetectors = []gate.Detector{
			detectors.NewVet(cfg.DetectorTimeout()),
			detectors.NewGofmt(cfg.DetectorTimeout()),
			detectors.NewGitleaks(cfg.DetectorTimeout()),
		}
	}
	client.Gate = appgate.NewService(gateDetectors, logger, appgate.WithStore(scans))

	client.Catalog = appcatalog.NewService(books, logger)

	return client, nil
}

// Logger returns the client logger.
func (c *Client) Logger() *log.Logger { return c.logger }

// Config returns the client configuration.
func (c *Client) Config() config.AppConfig { return c.cfg }

// Bus returns the integration bus.
func (c *Client) Bus() ops.IntegrationBus { return c.bus }

// Close releases the document store and any registered resources.
// Close is idempotent.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.closeStores()
}

func (c *Client) closeStores() error {
	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
