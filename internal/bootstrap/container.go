package bootstrap

import (
	"context"
	"log"

	"ai-fitness-be/internal/config"
	"ai-fitness-be/internal/controller"
	"ai-fitness-be/internal/pkg/cache"
	"ai-fitness-be/internal/pkg/logger"
	"ai-fitness-be/internal/repository/memory"
	"ai-fitness-be/internal/repository/unitofwork"
	"ai-fitness-be/internal/service"
	"ai-fitness-be/pkg/embedding"
	"ai-fitness-be/pkg/llm/factory"
	pkgNats "ai-fitness-be/pkg/nats"
	"ai-fitness-be/pkg/papersearch"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const researchCompletedTopic = "RESEARCH_COMPLETED"

type Container struct {
	// Controllers
	RagController controller.IRagController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Core Facades
	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	// The chat agent needs native function calling; planning and synthesis
	// only need text generation, so they follow LLM_PROVIDER directly.
	toolProvider, err := factory.NewToolProvider(
		"gemini",
		cfg.Ai.LLMModel,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize tool-calling LLM Provider: %v", err)
	}
	textProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	paperClient := papersearch.NewClient(cfg.Keys.Exa)

	// In-memory profile cache
	profileRepo := memory.NewProfileRepository()

	// 4. Infrastructure
	// NATS
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	researchCache := cache.NewResearchCache(rdb)

	// 5. Services
	publisherService := service.NewPublisherService(researchCompletedTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		researchCompletedTopic,
		uowFactory,
		researchCache,
		natsPub,
	)

	ragService := service.NewRagService(
		uowFactory,
		toolProvider,
		textProvider,
		embeddingProvider,
		paperClient,
		profileRepo,
		researchCache,
		publisherService,
		cfg.Rag,
		cfg.App.RagLogFilePath,
	)

	// 6. Controllers
	return &Container{
		RagController:   controller.NewRagController(ragService),
		ConsumerService: consumerService,
		Logger:          sysLogger,
	}
}
