package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/application/accounts"
	authservice "github.com/Khin-96/pochi-sub000/internal/application/auth"
	"github.com/Khin-96/pochi-sub000/internal/application/ledger"
	"github.com/Khin-96/pochi-sub000/internal/application/recorder"
	"github.com/Khin-96/pochi-sub000/internal/application/resolver"
	"github.com/Khin-96/pochi-sub000/internal/application/transfer"
	"github.com/Khin-96/pochi-sub000/internal/domain/interfaces"
	"github.com/Khin-96/pochi-sub000/internal/infrastructure/database"
	"github.com/Khin-96/pochi-sub000/internal/infrastructure/events"
	"github.com/Khin-96/pochi-sub000/internal/repositories/memstore"
	"github.com/Khin-96/pochi-sub000/internal/repositories/store"
	"github.com/Khin-96/pochi-sub000/internal/server"
	"github.com/Khin-96/pochi-sub000/internal/server/middleware"
	"github.com/Khin-96/pochi-sub000/internal/server/websocket"
	"github.com/Khin-96/pochi-sub000/migrations"
	"github.com/Khin-96/pochi-sub000/pkg/config"
	"github.com/Khin-96/pochi-sub000/pkg/identifier"
)

type App struct {
	Config      *config.Config
	Logger      zerolog.Logger
	DB          *database.DBManager
	Store       store.Store
	AuthSvc     *authservice.AuthService
	TransferSvc *transfer.TransferService
	AccountSvc  *accounts.AccountService
	WsHub       *websocket.WsHub
}

// NewApp opens storage and wires the services. The returned cleanup
// releases everything NewApp opened.
func NewApp(cfg *config.Config, logger zerolog.Logger) (*App, func(), error) {
	var (
		dm      *database.DBManager
		st      store.Store
		closers []func()
		err     error
	)

	switch cfg.Database.Driver {
	case "memory":
		logger.Warn().Msg("Using in-memory storage; data is lost on exit")
		st = memstore.New()
	default:
		dm, err = database.New(&cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		closers = append(closers, dm.ShutDown)
		if cfg.Database.AutoMigrate {
			if err := dm.Migrate(migrations.FS, 0); err != nil {
				dm.ShutDown()
				return nil, nil, err
			}
		}
		st = store.NewPostgres(dm, logger)
	}

	normalizer := identifier.NewNormalizer(cfg.Identifier)
	ledgerSvc := ledger.New(logger)
	recorderSvc := recorder.New(cfg.Transfer.Currency, logger)
	hub := websocket.NewWsHub(logger)

	subscribers := []interfaces.TransferEventPublisher{hub}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
		subscribers = append(subscribers, kafkaPublisher)
		closers = append(closers, func() {
			if err := kafkaPublisher.Close(); err != nil {
				logger.Error().Err(err).Msg("Failed to close Kafka writer")
			}
		})
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka publishing enabled")
	}

	// Registered last so it drains before the Kafka writer closes.
	dispatcher := events.NewDispatcher(cfg.Events, logger, subscribers...)
	closers = append(closers, dispatcher.Close)

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	transferSvc := transfer.NewTransferService(
		st,
		ledgerSvc,
		recorderSvc,
		resolver.New(normalizer, logger),
		cfg.Transfer,
		logger,
		dispatcher,
	)

	return &App{
		Config:      cfg,
		Logger:      logger,
		DB:          dm,
		Store:       st,
		AuthSvc:     authservice.NewAuthService(cfg.JWT, logger, st.Accounts()),
		TransferSvc: transferSvc,
		AccountSvc:  accounts.NewAccountService(st, ledgerSvc, recorderSvc, normalizer, cfg.Transfer, logger),
		WsHub:       hub,
	}, cleanup, nil
}

func (a *App) Server() *server.Server {
	mw := middleware.NewMiddleware(a.AuthSvc, a.Store.Idempotency(), a.Config.Idempotency, a.Logger)
	return server.New(a.Config, a.TransferSvc, mw, a.Store, a.WsHub, a.Logger)
}
