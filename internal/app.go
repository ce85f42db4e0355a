package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"

	logger_adapter "github.com/James-Mirambel/Terratrade-sub001/internal/adapters/logger"
	postgres_adapter "github.com/James-Mirambel/Terratrade-sub001/internal/adapters/postgres"
	rabbitmq_adapter "github.com/James-Mirambel/Terratrade-sub001/internal/adapters/rabbitmq"
	"github.com/James-Mirambel/Terratrade-sub001/internal/adapters/rest"
	"github.com/James-Mirambel/Terratrade-sub001/internal/configs"
	"github.com/James-Mirambel/Terratrade-sub001/internal/constants"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/usecase"
	fluentlogger "github.com/James-Mirambel/Terratrade-sub001/pkg/fluent_logger"
	"github.com/James-Mirambel/Terratrade-sub001/pkg/postgres"
	"github.com/James-Mirambel/Terratrade-sub001/pkg/rabbitmq/rabbitmq_common"
	"github.com/James-Mirambel/Terratrade-sub001/pkg/rabbitmq/rabbitmq_producer"
)

type App struct {
	config    *configs.AppConfig
	dbPool    *pgxpool.Pool
	apiServer *rest.Server
	producer  *rabbitmq_producer.Publisher

	fluentClient *fluent.Fluent
	logger       port.LoggerPort
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false,
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{
		"service_name": appConfig.AppName,
	})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// --- 2. НИЗКОУРОВНЕВЫЕ ЗАВИСИМОСТИ ---
	dbPool, err := postgres.NewClient(context.Background(), postgres.Config{DatabaseURL: appConfig.Database.URL})
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", err, nil)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

	ledgerStore, err := postgres_adapter.NewPostgresLedgerStore(dbPool)
	if err != nil {
		appLogger.Error("Failed to create postgres ledger store", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to create postgres ledger store: %w", err)
	}

	pkgLogger := rabbitmq_adapter.NewPkgLoggerBridge(appLogger)
	connManager, err := rabbitmq_common.NewManager(appConfig.RabbitMQ.URL, pkgLogger)
	if err != nil {
		appLogger.Error("Failed to connect to RabbitMQ", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		Config:                   rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
		ExchangeName:             constants.MarketEventsExchange,
		ExchangeType:             constants.MarketEventsExchangeType,
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   pkgLogger,
	}, connManager)
	if err != nil {
		appLogger.Error("Failed to create RabbitMQ producer", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to create RabbitMQ producer: %w", err)
	}

	notifier, err := rabbitmq_adapter.NewNotificationPublisherAdapter(producer, constants.RoutingKeyNotifications)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification adapter: %w", err)
	}
	auditSink, err := rabbitmq_adapter.NewAuditSinkAdapter(producer, constants.RoutingKeyAuditLog)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit adapter: %w", err)
	}
	appLogger.Info("All persistence and messaging adapters initialized.", nil)

	// --- 3. USE CASES (ядро бизнес-логики) ---
	materializer := usecase.NewContractMaterializer()
	offerTTL := time.Duration(appConfig.Market.OfferExpiryDays) * 24 * time.Hour

	createOfferUC := usecase.NewCreateOfferUseCase(ledgerStore, notifier, auditSink, appConfig.Market.MinOfferFraction, offerTTL)
	respondToOfferUC := usecase.NewRespondToOfferUseCase(ledgerStore, notifier, auditSink, materializer)
	counterOfferUC := usecase.NewCreateCounterOfferUseCase(ledgerStore, notifier, auditSink)
	respondToCounterUC := usecase.NewRespondToCounterOfferUseCase(ledgerStore, notifier, auditSink, materializer)
	withdrawOfferUC := usecase.NewWithdrawOfferUseCase(ledgerStore, notifier, auditSink)
	getOfferUC := usecase.NewGetOfferUseCase(ledgerStore)
	listPropertyOffersUC := usecase.NewListPropertyOffersUseCase(ledgerStore)
	listBuyerOffersUC := usecase.NewListBuyerOffersUseCase(ledgerStore)

	submitPropertyUC := usecase.NewSubmitPropertyUseCase(ledgerStore, auditSink)
	moderatePropertyUC := usecase.NewModeratePropertyUseCase(ledgerStore, notifier, auditSink)
	deletePropertyUC := usecase.NewDeletePropertyUseCase(ledgerStore, auditSink)

	createEscrowAccountUC := usecase.NewCreateEscrowAccountUseCase(ledgerStore, auditSink)
	depositFundsUC := usecase.NewDepositFundsUseCase(ledgerStore, notifier, auditSink)
	releaseFundsUC := usecase.NewReleaseFundsUseCase(ledgerStore, notifier, auditSink, appConfig.Market.EscrowFeePercentage)
	disputeEscrowUC := usecase.NewDisputeEscrowUseCase(ledgerStore, notifier, auditSink)
	statementUC := usecase.NewGetEscrowStatementUseCase(ledgerStore)
	getContractUC := usecase.NewGetContractUseCase(ledgerStore)

	// --- 4. REST API SERVER ---
	propertyHandler := rest.NewPropertyHandler(submitPropertyUC, moderatePropertyUC, deletePropertyUC, listPropertyOffersUC)
	offerHandler := rest.NewOfferHandler(createOfferUC, respondToOfferUC, counterOfferUC, respondToCounterUC, withdrawOfferUC, getOfferUC, listBuyerOffersUC)
	escrowHandler := rest.NewEscrowHandler(createEscrowAccountUC, depositFundsUC, releaseFundsUC, disputeEscrowUC, statementUC, getContractUC)

	apiServer := rest.NewServer(appConfig.Rest.PORT, propertyHandler, offerHandler, escrowHandler, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	return &App{
		config:    appConfig,
		dbPool:    dbPool,
		apiServer: apiServer,
		producer:  producer,

		fluentClient: fluentClient,
		logger:       appLogger,
	}, nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		if a.apiServer != nil {
			if err := a.apiServer.Stop(context.Background()); err != nil {
				a.logger.Error("Error during API server shutdown", err, nil)
			}
		}

		if a.producer != nil {
			if err := a.producer.Close(); err != nil {
				a.logger.Error("Error closing RabbitMQ producer", err, nil)
			}
		}

		if a.dbPool != nil {
			a.dbPool.Close()
			a.logger.Info("PostgreSQL pool closed.", nil)
		}

		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				// Логируем в stdout: fluent к этому моменту может быть недоступен
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)

	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.config.Rest.PORT})
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case <-appCtx.Done():
		a.logger.Warn("Context was cancelled unexpectedly, shutting down...", nil)
	case err := <-serverErrors:
		a.logger.Error("Server failed to start, shutting down", err, nil)
	}

	cancelApp()
	return nil
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
