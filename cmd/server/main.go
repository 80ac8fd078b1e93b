package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notification-dispatch/internal/config"
	"notification-dispatch/internal/firebaseapp"
	"notification-dispatch/internal/handler"
	"notification-dispatch/internal/identity"
	"notification-dispatch/internal/mail"
	"notification-dispatch/internal/messaging"
	"notification-dispatch/internal/service"
	"notification-dispatch/pkg/logger"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	// --- Загрузка конфигурации ---
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// --- Инициализация логгера ---
	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: "json",
		Service:  "notification-dispatch",
	})
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)
	zapLogger.Info("Логгер инициализирован", zap.String("logLevel", cfg.LogLevel), zap.String("env", cfg.Env))

	ctx := context.Background()

	// --- Firebase: инициализируем один раз при старте ---
	firebase := firebaseapp.NewProvider(cfg.Firebase, zapLogger)
	if err := firebase.Init(ctx); err != nil {
		zapLogger.Fatal("Ошибка инициализации Firebase", zap.Error(err))
	}
	authClient, err := firebase.Auth(ctx)
	if err != nil {
		zapLogger.Fatal("Ошибка получения Firebase Auth client", zap.Error(err))
	}

	gateway, err := newPushGateway(ctx, cfg, firebase, zapLogger)
	if err != nil {
		zapLogger.Fatal("Ошибка инициализации push gateway", zap.Error(err))
	}

	mailSender, err := newMailSender(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Ошибка инициализации отправителя почты", zap.Error(err))
	}

	// --- RabbitMQ (опционально) ---
	var (
		rabbitConn *amqp.Connection
		stale      service.StaleTokenPublisher
	)
	if cfg.RabbitMQ.Enabled() {
		rabbitConn, err = connectRabbitMQ(cfg.RabbitMQ.URI, zapLogger)
		if err != nil {
			zapLogger.Fatal("Не удалось подключиться к RabbitMQ", zap.Error(err))
		}
		defer rabbitConn.Close()

		stale, err = messaging.NewRabbitStaleTokenPublisher(rabbitConn, cfg.RabbitMQ.StaleTokenQueueName, zapLogger)
		if err != nil {
			zapLogger.Fatal("Не удалось создать StaleTokenPublisher", zap.Error(err))
		}
	}

	// --- Сервисы ---
	resolver := identity.NewResolver(identity.NewFirebaseDirectory(authClient), zapLogger)
	pushService := service.NewPushService(gateway, stale, zapLogger)
	emailService := service.NewEmailService(resolver, mailSender, mail.Identity{
		Name:    cfg.Mail.FromName,
		Address: cfg.SenderEmail(),
	}, zapLogger)

	// --- HTTP ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	notificationHandler := handler.NewNotificationHandler(pushService, emailService, zapLogger)
	router := handler.NewRouter(notificationHandler, cfg.GetAllowedOrigins(), zapLogger)
	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	// --- Консьюмер очереди push-запросов ---
	var consumer *messaging.Consumer
	consumerErrChan := make(chan error, 1)
	if rabbitConn != nil {
		processor := messaging.NewProcessor(pushService, zapLogger)
		consumer = messaging.NewConsumer(rabbitConn, zapLogger, cfg.RabbitMQ.PushQueueName, cfg.RabbitMQ.WorkerConcurrency, processor)
		go func() {
			zapLogger.Info("Запуск консьюмера RabbitMQ...")
			consumerErrChan <- consumer.Start(ctx)
		}()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLogger.Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		zapLogger.Info("Получен сигнал завершения, начинаем остановку...")
	case err := <-consumerErrChan:
		zapLogger.Error("Консьюмер завершился, инициируем остановку", zap.Error(err))
		consumer = nil
	}

	if consumer != nil {
		consumer.Stop()
		if err := <-consumerErrChan; err != nil {
			zapLogger.Error("Консьюмер RabbitMQ остановлен с ошибкой", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}

func newPushGateway(ctx context.Context, cfg *config.Config, firebase *firebaseapp.Provider, logger *zap.Logger) (service.PushGateway, error) {
	switch cfg.Push.Gateway {
	case config.PushGatewayAPNS:
		return service.NewApnsSender(cfg.APNS, logger)
	case config.PushGatewayStub:
		logger.Warn("PUSH_GATEWAY=stub: push-уведомления только логируются")
		return service.NewStubFCMSender(logger), nil
	default:
		client, err := firebase.Messaging(ctx)
		if err != nil {
			return nil, err
		}
		return service.NewFCMSender(client, logger), nil
	}
}

func newMailSender(cfg *config.Config, logger *zap.Logger) (mail.Sender, error) {
	switch cfg.Mail.Provider {
	case config.MailProviderPostmark:
		return mail.NewPostmarkSender(cfg.Postmark.ServerToken, cfg.Postmark.AccountToken, logger)
	default:
		return mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Email,
			Password: cfg.SMTP.Password,
			SSL:      cfg.SMTP.SSL,
			Timeout:  cfg.SMTP.Timeout,
		}, logger)
	}
}

// connectRabbitMQ пытается подключиться к RabbitMQ с несколькими попытками
func connectRabbitMQ(uri string, logger *zap.Logger) (*amqp.Connection, error) {
	const (
		maxRetries = 10
		retryDelay = 3 * time.Second
	)

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		conn, err := amqp.Dial(uri)
		if err == nil {
			logger.Info("Подключение к RabbitMQ успешно установлено")
			go func() {
				closeErr := <-conn.NotifyClose(make(chan *amqp.Error, 1))
				if closeErr != nil {
					logger.Error("Соединение с RabbitMQ разорвано", zap.Error(closeErr))
				}
			}()
			return conn, nil
		}
		lastErr = err
		logger.Warn("Не удалось подключиться к RabbitMQ, попытка переподключения...",
			zap.Error(err),
			zap.Int("retry", i+1),
			zap.Duration("delay", retryDelay),
		)
		time.Sleep(retryDelay)
	}
	return nil, fmt.Errorf("не удалось подключиться к RabbitMQ после %d попыток: %w", maxRetries, lastErr)
}
