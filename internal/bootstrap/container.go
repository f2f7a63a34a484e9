package bootstrap

import (
	"context"
	"log"

	"sales-assistant-be/internal/config"
	"sales-assistant-be/internal/controller"
	"sales-assistant-be/internal/handler"
	"sales-assistant-be/internal/pkg/logger"
	"sales-assistant-be/internal/pkg/mailer"
	"sales-assistant-be/internal/repository/implementation"
	"sales-assistant-be/internal/repository/memory"
	"sales-assistant-be/internal/service"
	"sales-assistant-be/pkg/embedding"
	"sales-assistant-be/pkg/embedding/jina"
	"sales-assistant-be/pkg/llm/factory"
	"sales-assistant-be/pkg/retrieval"
	"sales-assistant-be/pkg/transcript"
	"sales-assistant-be/pkg/websearch"

	pktNats "sales-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	KnowledgeController controller.IKnowledgeController
	LeadController      controller.ILeadController

	// Background Services (Exposed for main.go to run)
	IndexerService  service.IIndexerService
	ActivityService service.IActivityService

	// WebSockets
	ChatHandler *handler.ChatHandler

	// Infrastructure handles kept for shutdown
	NatsPublisher *pktNats.Publisher
	Logger        logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	var recorder transcript.Recorder
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis, transcripts disabled: %v", err)
	} else {
		recorder = transcript.NewRedisStore(rdb, 0)
	}

	sessionRepo := memory.NewSessionRepository()

	// 5. Repositories
	documentRepo := implementation.NewKnowledgeDocumentRepository(db)
	chunkRepo := implementation.NewKnowledgeChunkRepository(db)
	leadRepo := implementation.NewLeadRepository(db)

	// 6. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Keys.EmbedTopic)
	indexerService := service.NewIndexerService(
		pubSub,
		cfg.Keys.EmbedTopic,
		documentRepo,
		chunkRepo,
		embeddingProvider,
		sysLogger,
	)

	knowledgeService := service.NewKnowledgeService(
		documentRepo,
		chunkRepo,
		publisherService,
		embeddingProvider,
		sysLogger,
	)

	activityService := service.NewActivityService(natsSub, sysLogger)

	leadService := service.NewLeadService(
		leadRepo,
		emailService,
		natsPub,
		cfg.SMTP.SalesInbox,
		sysLogger,
	)

	retriever := retrieval.NewRetriever(
		embeddingProvider,
		chunkRepo,
		cfg.Retrieval.TopK,
		cfg.Retrieval.ScoreThreshold,
		sysLogger,
	)

	searchClient := websearch.NewClient(cfg.Keys.Search, cfg.Keys.SearchEngineId)

	// Session relay keeps its own file log to leave the main log readable.
	chatLogger := logger.NewIsolatedLogger("logs/chat.log")
	chatHandler := handler.NewChatHandler(
		llmProvider,
		cfg.Ai.LLMModel,
		retriever,
		searchClient,
		leadService,
		sessionRepo,
		recorder,
		natsPub,
		cfg.App.WsTokenSecret,
		chatLogger,
	)

	// 7. Controllers
	knowledgeController := controller.NewKnowledgeController(knowledgeService)
	leadController := controller.NewLeadController(leadService)

	return &Container{
		KnowledgeController: knowledgeController,
		LeadController:      leadController,
		IndexerService:      indexerService,
		ActivityService:     activityService,
		ChatHandler:         chatHandler,
		NatsPublisher:       natsPub,
		Logger:              sysLogger,
	}
}
