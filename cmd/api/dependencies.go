package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgerline/statements/internal/domain/ingest"
	"github.com/ledgerline/statements/internal/domain/parser"
	"github.com/ledgerline/statements/internal/domain/rules"
	"github.com/ledgerline/statements/internal/domain/statement"
	statementhandler "github.com/ledgerline/statements/internal/domain/statement/handler"
	"github.com/ledgerline/statements/internal/jobs"
	"github.com/ledgerline/statements/pkg/config"
	"github.com/ledgerline/statements/pkg/cron"
	"github.com/ledgerline/statements/pkg/db"
	"github.com/ledgerline/statements/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	StatementRepo *statement.PostgresRepository
	RulesRepo     *rules.PostgresRepository

	// Services
	ParserService *parser.Service
	RulesService  *rules.Service
	IngestService *ingest.Service
	FileStorage   storage.Storage

	// Background work
	Queue     *jobs.Queue
	Worker    *jobs.Worker
	Scheduler *cron.Scheduler

	// Handlers
	StatementHandler *statementhandler.Handler
	RulesHandler     *rules.Handler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initServices initializes repositories, services and background workers
func (d *Dependencies) initServices() error {
	d.StatementRepo = statement.NewPostgresRepository(d.DB.Pool)
	d.RulesRepo = rules.NewPostgresRepository(d.DB.Pool)

	fileStorage, err := storage.NewLocalStorage(d.Config.Storage.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to init file storage: %w", err)
	}
	d.FileStorage = fileStorage

	keywords := parser.NewKeywordMapper(parser.DefaultKeywords())
	d.ParserService = parser.NewService(keywords, d.Logger)

	d.RulesService = rules.NewService(d.DB.Pool, d.RulesRepo, d.StatementRepo, d.Logger)
	d.IngestService = ingest.NewService(d.ParserService, d.StatementRepo, d.RulesService, d.Logger)

	d.Queue = jobs.NewQueue(d.Config.Worker.QueueSize)
	d.Worker = jobs.NewWorker(d.Queue, d.IngestService, d.FileStorage, d.StatementRepo, d.Logger)

	d.Scheduler = cron.NewScheduler(d.FileStorage, d.StatementRepo, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.StatementHandler = statementhandler.New(
		d.StatementRepo,
		d.FileStorage,
		d.Queue,
		d.Config.Upload.MaxSizeBytes,
		d.Logger,
	)
	d.RulesHandler = rules.NewHandler(d.RulesService, d.Logger)

	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
