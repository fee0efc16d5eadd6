// Package skillswap собирает основное HTTP-приложение сервиса: хранилище,
// миграции, кеш, брокер событий, бизнес-сервисы и маршруты.
package skillswap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/skillswap/internal/cache"
	"github.com/magabrotheeeer/skillswap/internal/config"
	"github.com/magabrotheeeer/skillswap/internal/lib/jwt"
	"github.com/magabrotheeeer/skillswap/internal/migrations"
	"github.com/magabrotheeeer/skillswap/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/skillswap/internal/services/auth"
	ledgerservice "github.com/magabrotheeeer/skillswap/internal/services/ledger"
	matchingservice "github.com/magabrotheeeer/skillswap/internal/services/matching"
	schedulerservice "github.com/magabrotheeeer/skillswap/internal/services/scheduler"
	"github.com/magabrotheeeer/skillswap/internal/storage"
)

// App инкапсулирует HTTP-сервер и внешние соединения приложения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New инициализирует приложение: подключает базу, прогоняет миграции,
// поднимает кеш и брокер, собирает сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(ch)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	ledgerService := ledgerservice.NewLedgerService(db, db, logger)
	authService := authservice.NewAuthService(db, ledgerService, db, jwtMaker, logger)
	schedulerService := schedulerservice.NewSchedulerService(db, db, ledgerService, db, publisher, logger)
	matchingService := matchingservice.NewMatchingService(db, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, db, authService, ledgerService, schedulerService, matchingService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if chErr := a.ch.Close(); chErr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", chErr))
		}
		if connErr := a.conn.Close(); connErr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", connErr))
		}
		a.db.DB.Close()
		return err
	}
}
