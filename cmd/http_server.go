package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/expense-tracker/api"
	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/category"
	categoryPostgres "github.com/frahmantamala/expense-tracker/internal/category/postgres"
	"github.com/frahmantamala/expense-tracker/internal/core/events"
	"github.com/frahmantamala/expense-tracker/internal/database"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	expensePostgres "github.com/frahmantamala/expense-tracker/internal/expense/postgres"
	"github.com/frahmantamala/expense-tracker/internal/transport"
	"github.com/frahmantamala/expense-tracker/internal/transport/rest"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config     *internal.Config
	DB         *gorm.DB
	SQLX       *sqlx.DB
	Router     *chi.Mux
	EventBus   *events.EventBus
	Forwarder  *events.AMQPForwarder
	Categories *category.Service
	Expenses   *expense.Service
	Logger     *slog.Logger
}

func startHTTPServer() {
	cfg := mustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := initializeDependencies(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	doc, err := api.Load(ctx)
	if err != nil {
		deps.Logger.Error("invalid OpenAPI document", "error", err)
		deps.Close()
		os.Exit(1)
	}
	deps.Logger.Debug("OpenAPI document loaded", "title", doc.Info.Title, "version", doc.Info.Version)

	sqlDB, err := deps.DB.DB()
	if err != nil {
		deps.Logger.Error("failed to access database handle", "error", err)
		os.Exit(1)
	}

	base := transport.NewBaseHandler(deps.Logger)
	rest.RegisterAllRoutes(deps.Router, cfg, sqlDB, rest.Handlers{
		Category: category.NewHandler(base, deps.Categories),
		Expense:  expense.NewHandler(base, deps.Expenses),
	}, deps.Logger)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Logger.Info("Starting HTTP server", "address", addr, "driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		deps.Logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := internal.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		deps.Logger.Error("server stopped with error", "error", err)
		deps.Close()
		os.Exit(1)
	}
	deps.Logger.Info("Server stopped")
}

func initializeDependencies(ctx context.Context, cfg *internal.Config) (*Dependencies, error) {
	lg := logger.L()

	db, err := database.Open(cfg.Database, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, sqlDB, cfg.Database.Driver, false); err != nil {
			sqlDB.Close()
			return nil, err
		}
	}

	sqlxDB, err := database.SQLX(db, cfg.Database.Driver)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	deps := &Dependencies{
		Config:   cfg,
		DB:       db,
		SQLX:     sqlxDB,
		Router:   chi.NewRouter(),
		EventBus: newEventBus(lg),
		Logger:   lg,
	}

	if cfg.Events.AMQPURL != "" {
		forwarder, err := events.DialAMQP(cfg.Events.AMQPURL, cfg.Events.Exchange, lg)
		if err != nil {
			// the API keeps working without the broker
			lg.Warn("event forwarding disabled", "error", err)
		} else {
			forwarder.Register(deps.EventBus)
			deps.Forwarder = forwarder
		}
	}

	deps.Categories = category.NewService(categoryPostgres.NewCategoryRepository(db), deps.EventBus, lg)
	deps.Expenses = expense.NewService(
		expensePostgres.NewExpenseRepository(db),
		expensePostgres.NewReportRepository(sqlxDB),
		deps.Categories,
		deps.EventBus,
		lg,
	)

	return deps, nil
}

func newEventBus(lg *slog.Logger) *events.EventBus {
	bus := events.NewEventBus(lg)
	bus.SubscribeAll(events.AuditLogHandler(lg))
	return bus
}

// Close drains pending events and releases the connections. Safe to call twice.
func (d *Dependencies) Close() {
	if d.EventBus != nil {
		d.EventBus.Wait()
	}
	if d.Forwarder != nil {
		if err := d.Forwarder.Close(); err != nil {
			d.Logger.Warn("failed to close event forwarder", "error", err)
		}
		d.Forwarder = nil
	}
	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				d.Logger.Error("Database close error", "error", err)
			}
		}
		d.DB = nil
	}
}
