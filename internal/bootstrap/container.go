package bootstrap

import (
	"context"
	"fmt"
	"log"

	"vibenotes-be/internal/config"
	"vibenotes-be/internal/controller"
	"vibenotes-be/internal/handler"
	"vibenotes-be/internal/pkg/logger"
	"vibenotes-be/internal/repository/document"
	"vibenotes-be/internal/repository/memory"
	"vibenotes-be/internal/repository/unitofwork"
	"vibenotes-be/internal/service"
	"vibenotes-be/internal/websocket"
	"vibenotes-be/pkg/emotion"
	pktNats "vibenotes-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	NoteController     controller.INoteController
	ResponseController controller.IResponseController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

// Close releases broker and store connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// newRepositoryFactory picks the note store. Users and notifications stay in
// Postgres unless everything runs in memory.
func newRepositoryFactory(ctx context.Context, db *gorm.DB, cfg *config.Config, c *Container) (unitofwork.RepositoryFactory, error) {
	switch cfg.App.NoteStore {
	case config.NoteStoreMemory:
		log.Println("[WARN] NOTE_STORE=memory: all data is lost on restart")
		return memory.NewRepositoryFactory(memory.NewStore()), nil

	case config.NoteStoreMongo:
		if db == nil {
			return nil, fmt.Errorf("NOTE_STORE=mongo still needs DB_CONNECTION_STRING for users and notifications")
		}
		client, err := document.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() { _ = client.Disconnect(context.Background()) })
		notes := document.NewNoteRepository(client.Database(cfg.Mongo.Database))
		log.Printf("[INFO] Using note store: MONGO (%s)", cfg.Mongo.Database)
		return unitofwork.NewRepositoryFactory(db, unitofwork.WithNoteRepository(notes)), nil

	case config.NoteStorePostgres, "":
		if db == nil {
			return nil, fmt.Errorf("NOTE_STORE=postgres requires DB_CONNECTION_STRING")
		}
		return unitofwork.NewRepositoryFactory(db), nil

	default:
		return nil, fmt.Errorf("unknown NOTE_STORE %q", cfg.App.NoteStore)
	}
}

func newClassifier(cfg *config.Config) emotion.Classifier {
	if cfg.Ai.EmotionProvider == "huggingface" && cfg.Ai.HuggingFaceKey != "" {
		log.Printf("[INFO] Using Emotion Provider: HUGGINGFACE")
		return emotion.NewHuggingFaceClassifier(
			cfg.Ai.HuggingFaceKey,
			cfg.Ai.HuggingFaceURL,
			cfg.Ai.EmotionModel,
			emotion.WithTopK(cfg.Ai.EmotionTopK),
		)
	}
	log.Printf("[INFO] Emotion analysis disabled")
	return emotion.Noop{}
}

func newRedis(ctx context.Context, url string) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	return rdb
}

// NewContainer wires every component. db may be nil when NOTE_STORE=memory.
// The websocket hub runs until ctx is cancelled.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	c := &Container{}

	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c.Logger = sysLogger
	c.closers = append(c.closers, func() { _ = sysLogger.Sync() })

	uowFactory, err := newRepositoryFactory(ctx, db, cfg, c)
	if err != nil {
		return nil, err
	}

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var natsPub *pktNats.Publisher
	var natsSub *pktNats.Subscriber
	if cfg.App.NatsURL != "" {
		if natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL); err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			c.closers = append(c.closers, natsPub.Close)
		}
		if natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL); err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	rdb := newRedis(ctx, cfg.App.RedisURL)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// 3. Notification System
	wsLogger := logger.NewIsolatedLogger(cfg.Notification.LogFilePath)
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run(ctx)

	notifOpts := []service.NotificationOption{service.WithDelivery(wsHub)}
	if rdb != nil {
		notifOpts = append(notifOpts, service.WithRedisDedupe(rdb))
	}
	if natsSub != nil {
		notifOpts = append(notifOpts, service.WithSubscriber(natsSub))
	}
	notifService := service.NewNotificationService(uowFactory, cfg.Notification.DedupeTTL, wsLogger, notifOpts...)
	if err := notifService.Start(); err != nil {
		log.Printf("[WARN] Notification worker not started: %v", err)
	}

	// With a bus, mutations only enqueue; the worker above persists and pushes.
	var notifier service.Notifier = notifService
	if natsPub != nil && natsSub != nil {
		notifier = service.NewEventNotifier(natsPub)
	}

	// 4. Services
	publisherService := service.NewPublisherService(pubSub, cfg.App.EmotionTopic)
	c.ConsumerService = service.NewEmotionConsumerService(pubSub, cfg.App.EmotionTopic, uowFactory, newClassifier(cfg), sysLogger)

	profiles := service.NewProfileService(uowFactory, cfg.Notification.ProfileTTL, sysLogger)
	noteService := service.NewNoteService(uowFactory, publisherService, profiles, notifier, sysLogger)
	responseService := service.NewResponseService(uowFactory, profiles, notifier, sysLogger)
	authService := service.NewAuthService(uowFactory, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost)

	// 5. Controllers
	c.AuthController = controller.NewAuthController(authService)
	c.NoteController = controller.NewNoteController(noteService, cfg.Auth.JWTSecret)
	c.ResponseController = controller.NewResponseController(responseService, cfg.Auth.JWTSecret)
	c.NotificationHandler = handler.NewNotificationHandler(notifService, wsHub, cfg.Auth.JWTSecret, wsLogger)
	c.WebSocketHub = wsHub

	return c, nil
}
