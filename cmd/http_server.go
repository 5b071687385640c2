package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/taskgraph/taskgraph/internal"
	"github.com/taskgraph/taskgraph/internal/auth"
	authPostgres "github.com/taskgraph/taskgraph/internal/auth/postgres"
	"github.com/taskgraph/taskgraph/internal/core/events"
	"github.com/taskgraph/taskgraph/internal/enforcement"
	"github.com/taskgraph/taskgraph/internal/fine"
	finePostgres "github.com/taskgraph/taskgraph/internal/fine/postgres"
	"github.com/taskgraph/taskgraph/internal/graph"
	graphPostgres "github.com/taskgraph/taskgraph/internal/graph/postgres"
	"github.com/taskgraph/taskgraph/internal/task"
	taskPostgres "github.com/taskgraph/taskgraph/internal/task/postgres"
	"github.com/taskgraph/taskgraph/internal/transport/rest"
	"github.com/taskgraph/taskgraph/internal/user"
	userPostgres "github.com/taskgraph/taskgraph/internal/user/postgres"
	"github.com/taskgraph/taskgraph/internal/workflow"
	workflowPostgres "github.com/taskgraph/taskgraph/internal/workflow/postgres"
	"github.com/taskgraph/taskgraph/pkg/logger"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server and the enforcement sweep`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	Handlers rest.Handlers
	Roles    *auth.RoleAuthorization
	Engine   *enforcement.Engine
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, deps.Roles, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// The sweep shares the process; cancelling sweepCtx stops it on shutdown.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go deps.Engine.Start(sweepCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down...", "signal", sig)
		stopSweep()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		stopSweep()
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	eventBus := events.NewEventBus(lg)

	// Repositories
	authRepo := authPostgres.NewRepository(gormDB)
	userRepo := userPostgres.NewUserRepository(gormDB)
	taskRepo := taskPostgres.NewTaskRepository(gormDB)
	graphRepo := graphPostgres.NewGraphRepository(gormDB)
	fineRepo := finePostgres.NewFineRepository(gormDB)
	workflowRepo := workflowPostgres.NewWorkflowRepository(gormDB)

	// Services
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen)
	userService := user.NewService(userRepo, lg)
	graphService := graph.NewService(graphRepo, lg)
	taskService := task.NewService(taskRepo, graphService, userService, eventBus, lg)
	fineService := fine.NewService(fineRepo, lg)
	workflowService := workflow.NewService(workflowRepo, taskService, lg)

	// Audit log subscriber for completions, sweep transitions and fines.
	task.NewEventHandler(taskRepo, lg).RegisterEventHandlers(eventBus)

	engine := enforcement.NewEngine(
		taskRepo,
		fineService,
		userRepo,
		eventBus,
		config.Sweep.Interval,
		config.Sweep.FineAmount,
		config.Sweep.ScorePenalty,
		lg,
	)

	return &Dependencies{
		Config: config,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
		Handlers: rest.Handlers{
			Auth:     auth.NewHandler(authService),
			User:     user.NewHandler(userService),
			Task:     task.NewHandler(taskService),
			Graph:    graph.NewHandler(graphService),
			Fine:     fine.NewHandler(fineService),
			Workflow: workflow.NewHandler(workflowService),
		},
		Roles:  auth.NewRoleAuthorization(lg),
		Engine: engine,
		Logger: lg,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm wraps the existing pool; TranslateError maps driver duplicate
// key failures onto gorm.ErrDuplicatedKey for the auth repository.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{
		Conn: db.DB,
	}), &gorm.Config{
		TranslateError: true,
	})
}
