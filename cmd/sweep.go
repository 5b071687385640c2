package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/taskgraph/taskgraph/internal/core/events"
	"github.com/taskgraph/taskgraph/internal/enforcement"
	"github.com/taskgraph/taskgraph/internal/fine"
	finePostgres "github.com/taskgraph/taskgraph/internal/fine/postgres"
	"github.com/taskgraph/taskgraph/internal/task"
	taskPostgres "github.com/taskgraph/taskgraph/internal/task/postgres"
	userPostgres "github.com/taskgraph/taskgraph/internal/user/postgres"
	"github.com/taskgraph/taskgraph/pkg/logger"
)

var sweepOnce bool

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the overdue enforcement sweep",
	Long:  `Run the deadline enforcement sweep standalone, either once or on the configured interval.`,
	Run: func(cmd *cobra.Command, args []string) {
		runSweep()
	},
}

func init() {
	sweepCmd.Flags().BoolVar(&sweepOnce, "once", false, "Run a single sweep and exit")
}

func runSweep() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	sqlxDB, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer sqlxDB.Close()

	gormDB, err := initGorm(sqlxDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize gorm: %v\n", err)
		os.Exit(1)
	}

	taskRepo := taskPostgres.NewTaskRepository(gormDB)
	userRepo := userPostgres.NewUserRepository(gormDB)
	fineService := fine.NewService(finePostgres.NewFineRepository(gormDB), lg)
	eventBus := events.NewEventBus(lg)
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sweepOnce {
		count, err := engine.RunOnce(ctx)
		if err != nil {
			lg.Error("sweep failed", "error", err)
			os.Exit(1)
		}
		lg.Info("sweep finished", "overdue_count", count)
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	engine.Start(ctx)
}
