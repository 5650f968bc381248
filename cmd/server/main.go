package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hireflowhq/hireflow/internal/application/service"
	"github.com/hireflowhq/hireflow/internal/config"
	"github.com/hireflowhq/hireflow/internal/infrastructure/external/lark"
	"github.com/hireflowhq/hireflow/internal/infrastructure/letter"
	"github.com/hireflowhq/hireflow/internal/infrastructure/persistence/repository"
	"github.com/hireflowhq/hireflow/internal/infrastructure/persistence/sqlite"
	"github.com/hireflowhq/hireflow/internal/infrastructure/worker"
	httpserver "github.com/hireflowhq/hireflow/internal/interfaces/http"
	"github.com/hireflowhq/hireflow/migrations"
	"github.com/hireflowhq/hireflow/pkg/database"
	"github.com/hireflowhq/hireflow/pkg/utils"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting HireFlow offer approval service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(migrations.FS); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories and transaction manager
	txManager := sqlite.NewDB(db.DB, logger)
	offerRepo := repository.NewOfferRepository(db.DB, logger)
	recordRepo := repository.NewApprovalRecordRepository(db.DB, logger)
	bandRepo := repository.NewSalaryBandRepository(db.DB, logger)
	reqRepo := repository.NewRequisitionRepository(db.DB, logger)
	activityRepo := repository.NewActivityLogRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)
	notifRepo := repository.NewNotificationRepository(db.DB, logger)

	// Notification dispatch over Lark
	var notifier *lark.RoleNotifier
	if cfg.Lark.Enabled {
		larkClient := lark.NewClient(lark.Config{
			AppID:     cfg.Lark.AppID,
			AppSecret: cfg.Lark.AppSecret,
		}, logger)
		notifier = lark.NewRoleNotifier(larkClient, userRepo, notifRepo, logger)
	} else {
		notifier = lark.NewRoleNotifier(noopSender{}, userRepo, notifRepo, logger)
	}

	serviceLogger := &zapLoggerAdapter{logger: logger}

	// The letter generator calls back into the offer service on completion,
	// so the completer is attached after both exist
	letterGen := letter.NewExcelGenerator(offerRepo, nil, cfg.Letter.OutputDir, cfg.Letter.CompanyName, logger)

	offerService := service.NewOfferService(
		offerRepo, recordRepo, bandRepo, txManager, notifier, letterGen,
		cfg.Offer.DefaultExpiryDays, serviceLogger)
	letterGen.SetCompleter(offerService)

	requisitionService := service.NewRequisitionService(
		reqRepo, activityRepo, userRepo, txManager, serviceLogger)

	// Background workers
	workerManager := worker.NewManager(logger)
	workerManager.Register(worker.NewExpirySweeper(worker.ExpirySweeperConfig{
		SweepInterval: cfg.Offer.SweepInterval,
		SweepTimeout:  cfg.Offer.SweepTimeout,
	}, offerService, logger))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.StartAll(ctx); err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, offerService, requisitionService, serviceLogger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Shutting down server...")
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", zap.Error(err))
		}
	}

	cancel()
	if err := workerManager.StopAll(); err != nil {
		logger.Error("Failed to stop workers", zap.Error(err))
	}
	if err := server.Stop(); err != nil {
		logger.Error("Failed to stop server", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// noopSender stands in for the Lark client when messaging is disabled
type noopSender struct{}

func (noopSender) SendText(ctx context.Context, openID, text string) error {
	return nil
}

// zapLoggerAdapter adapts zap.Logger to the service and http Logger interfaces
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
