package bootstrap

import (
	"log"

	"sigment-be/internal/config"
	"sigment-be/internal/controller"
	"sigment-be/internal/pkg/logger"
	"sigment-be/internal/pkg/mailer"
	"sigment-be/internal/repository/unitofwork"
	"sigment-be/internal/service"
	"sigment-be/pkg/embedding"
	"sigment-be/pkg/llm/factory"

	pkgNats "sigment-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

// lifecycleTopic is the in-process fan-out topic for audit events.
const lifecycleTopic = "lifecycle-events"

type Container struct {
	// Controllers
	NoteController   controller.INoteController
	PillarController controller.IPillarController
	GalaxyController controller.IGalaxyController

	// Background services, exposed for main.go to run
	ProcessingService service.IProcessingService
	LifecycleConsumer service.ILifecycleConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// In-process event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Providers
	var embeddingProvider embedding.EmbeddingProvider
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

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// NATS
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("[FATAL] Failed to connect NATS publisher: %v", err)
	}
	natsSub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("[FATAL] Failed to connect NATS subscriber: %v", err)
	}

	// Services
	publisherService := service.NewPublisherService(pubSub, lifecycleTopic)
	lifecycleService := service.NewLifecycleService(publisherService, sysLogger)
	lifecycleConsumer := service.NewLifecycleConsumerService(pubSub, lifecycleTopic, uowFactory, natsPub, sysLogger)

	processingService := service.NewProcessingService(
		uowFactory,
		llmProvider,
		embeddingProvider,
		natsPub,
		natsSub,
		lifecycleService,
		emailService,
		cfg.Pipeline,
		cfg.SMTP.OperatorEmail,
		sysLogger,
	)

	noteService := service.NewNoteService(uowFactory, natsPub, lifecycleService)
	pillarService := service.NewPillarService(uowFactory)
	galaxyService := service.NewGalaxyService(uowFactory, pillarService)

	return &Container{
		NoteController:    controller.NewNoteController(noteService),
		PillarController:  controller.NewPillarController(pillarService),
		GalaxyController:  controller.NewGalaxyController(galaxyService),
		ProcessingService: processingService,
		LifecycleConsumer: lifecycleConsumer,
		Logger:            sysLogger,
	}
}
