package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"quillpdf/internal/ai"
	appsvc "quillpdf/internal/app"
	"quillpdf/internal/cache"
	"quillpdf/internal/config"
	"quillpdf/internal/model"
	mysqlClient "quillpdf/internal/platform/mysql"
	rabbitmqClient "quillpdf/internal/platform/rabbitmq"
	redisClient "quillpdf/internal/platform/redis"
	"quillpdf/internal/platform/storage"
	stripeClient "quillpdf/internal/platform/stripe"
	"quillpdf/internal/repository"
	"quillpdf/internal/vector"
	"quillpdf/internal/worker"
)

type App struct {
	Config *config.Config
	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	Auth         *appsvc.AuthService
	Files        *appsvc.FileService
	Chat         *appsvc.ChatService
	Billing      *appsvc.BillingService
	IngestWorker *worker.IngestWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.User{},
		&model.File{},
		&model.Message{},
		&model.FileChunk{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(mysqlDB)
	fileRepo := repository.NewFileRepository(mysqlDB)
	messageRepo := repository.NewMessageRepository(mysqlDB)

	llmClient := ai.NewOpenAICompatibleClient()
	embedder := ai.NewEmbeddingProvider(llmClient, ai.EmbeddingConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.EmbeddingModel,
	})
	completions := ai.NewChatProvider(llmClient, ai.ChatConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
	})

	objects := storage.New(cfg.Storage.BaseURL, cfg.Storage.MaxObjectBytes)
	index := vector.NewMySQLIndex(mysqlDB)
	statusCache := cache.NewStatusCache(redisCli, time.Duration(cfg.Redis.StatusTTLSeconds)*time.Second)
	publisher := rabbitmqClient.NewIngestPublisher(mqConn, cfg.RabbitMQ.IngestQueue)
	billing := stripeClient.New(cfg.Stripe)

	authService := appsvc.NewAuthService(
		userRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)
	fileService := appsvc.NewFileService(fileRepo, messageRepo, index, objects, publisher, statusCache)
	chatService := appsvc.NewChatService(
		fileRepo,
		messageRepo,
		embedder,
		index,
		completions,
		cfg.RAG.TopK,
		cfg.RAG.HistoryLimit,
	)
	billingService := appsvc.NewBillingService(userRepo, billing)

	ingestService := appsvc.NewIngestService(fileRepo, objects, nil, embedder, index, statusCache)
	ingestWorker := worker.NewIngestWorker(mqConn, ingestService, cfg.RabbitMQ.IngestQueue)
	if err := ingestWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start ingest worker failed: %w", err)
	}

	return &App{
		Config:       cfg,
		MySQL:        mysqlDB,
		Redis:        redisCli,
		MQConn:       mqConn,
		Auth:         authService,
		Files:        fileService,
		Chat:         chatService,
		Billing:      billingService,
		IngestWorker: ingestWorker,
		StartedAt:    time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.IngestWorker != nil {
		a.IngestWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
