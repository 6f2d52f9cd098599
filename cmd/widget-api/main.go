package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/avatar"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/business"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/cache"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/calendar"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/chat"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/detector"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/email"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/kb"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/metrics"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/refresh"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/responder"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/modules/widget/handlers"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/modules/widget/repositories"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/modules/widget/services"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/shared/database"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/shared/utils"
)

const (
	sessionCleanupSchedule = "0 */5 * * * *"
	bookingWindowDays      = 60
)

// @title Business Chat Widget API
// @version 1.0
// @description Chat, knowledge base, scheduling and avatar endpoints behind the embeddable business widget
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.LogLevel)
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("🚀 Starting widget-api")

	ctx := context.Background()
	httpClient := &http.Client{Timeout: 15 * time.Second}

	// Load business profile; a broken profile is fatal
	loadBusiness := func(ctx context.Context) (*business.Config, error) {
		return business.Load(ctx, httpClient, cfg.BusinessAPIURL, cfg.BusinessFile)
	}
	biz, err := loadBusiness(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.BusinessFile).Msg("failed to load business profile")
	}
	log.Info().Str("business_id", biz.ID).Str("name", biz.Name).Int("knowledge_items", len(biz.KnowledgeBase)).Msg("🏢 Business profile loaded")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	chatMetrics := metrics.NewChat(registry)

	// Chat pipeline
	traders := newDetector(cfg)
	_, traderSearch := traders.(chat.ActionHandler)
	orchestrator := chat.NewOrchestrator(biz, chat.Deps{
		Knowledge: kb.NewStore(nil),
		Cache:     newResponseCache(ctx, cfg),
		Local:     responder.New(nil),
		Detector:  traders,
		Composer:  newComposer(cfg, traderSearch),
		Metrics:   chatMetrics,
	})
	sessions := chat.NewManager(cfg.HistoryLimit, chatMetrics)

	// Persistence: Postgres when configured, otherwise a local SQLite file
	var (
		convRepo repositories.ConversationRepo
		kbRepo   repositories.KBRepo
	)
	if cfg.DatabaseURL != "" {
		db, err := database.NewDB(cfg.DatabaseURL, cfg.Env == "development")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()
		convRepo = repositories.NewConversationRepo(db.GORM)
		kbRepo = repositories.NewKBRepo(db.GORM)
		log.Info().Msg("💾 Conversation log: postgres")
	} else {
		sqliteRepo, err := repositories.NewSQLiteConversationRepo(cfg.ConversationDB)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.ConversationDB).Msg("failed to open conversation log")
		}
		defer sqliteRepo.Close()
		convRepo = sqliteRepo

		sqliteKB, err := repositories.NewSQLiteKBRepo(cfg.ConversationDB)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.ConversationDB).Msg("failed to open knowledge store")
		}
		defer sqliteKB.Close()
		kbRepo = sqliteKB
		log.Info().Str("path", cfg.ConversationDB).Msg("💾 Conversation log and knowledge: sqlite")
	}

	// Init services
	chatService := services.NewChatService(orchestrator, sessions, convRepo)
	defer chatService.Wait()
	businessService := services.NewBusinessService(orchestrator, kbRepo)
	if _, err := businessService.LoadPersisted(ctx); err != nil {
		log.Error().Err(err).Msg("failed to load persisted knowledge entries")
	}

	// Background jobs
	scheduler := refresh.NewScheduler()
	refresher := refresh.NewRefresher(loadBusiness, businessService)
	if err := refresher.Register(scheduler, refreshSchedule(cfg, biz)); err != nil {
		log.Fatal().Err(err).Msg("invalid refresh schedule")
	}
	err = scheduler.Add(refresh.JobSessionCleanup, sessionCleanupSchedule, func() {
		if n := chatService.CleanupSessions(cfg.SessionTTL); n > 0 {
			log.Info().Int("removed", n).Msg("expired chat sessions removed")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to schedule session cleanup")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Scheduling + avatar
	calCfg := calendar.DefaultConfig(time.Now())
	calCfg.MinDate, calCfg.MaxDate = time.Time{}, time.Time{}
	calCfg.WindowDays = bookingWindowDays
	mailer := newMailer(cfg, biz)
	scheduling := services.NewSchedulingService(calendar.New(calCfg), mailer, businessService.Business)
	heygen := avatar.NewHeyGenClient(cfg.HeyGenAPIKey, cfg.HeyGenBaseURL)
	if !heygen.Enabled() {
		log.Warn().Msg("⚠️  HEYGEN_API_KEY not set, avatar routes disabled")
	}

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Business Chat Widget API",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New())

	handlers.RegisterRoutes(app, handlers.Handlers{
		Chat:     handlers.NewChatHandler(chatService),
		Business: handlers.NewBusinessHandler(businessService),
		Calendar: handlers.NewCalendarHandler(scheduling),
		Avatar:   handlers.NewAvatarHandler(heygen),
		Widget:   handlers.NewWidgetHandler(businessService, cfg.PublicURL),
		Health:   handlers.NewHealthHandler(chatService, registry),
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("🛑 Shutting down widget-api")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("failed to shut down server")
		}
	}()

	log.Info().Str("url", cfg.PublicURL).Msg("✅ widget-api running")
	log.Info().Str("url", cfg.PublicURL+"/widget-loader.js").Msg("🔗 Embed script")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
}

func newResponseCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if cfg.CacheBackend == "redis" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err == nil {
			log.Info().Str("addr", cfg.RedisAddr).Msg("⚡ Response cache: redis")
			return cache.NewRedisCache(client, cfg.CacheTTL, cfg.CacheCapacity)
		}
		log.Warn().Err(err).Msg("redis unavailable, using in-memory response cache")
	}
	return cache.NewMemoryCache(cfg.CacheTTL, cfg.CacheCapacity)
}

// newComposer returns a composer without provider when no API key is set; the
// pipeline then answers from local rules and the knowledge base only.
func newComposer(cfg *config.Config, traderSearch bool) *llm.Composer {
	composerCfg := llm.ComposerConfig{
		Temperature:  cfg.LLMTemperature,
		MaxTokens:    cfg.LLMMaxTokens,
		Timeout:      cfg.LLMTimeout,
		TraderSearch: traderSearch,
	}
	if !cfg.AIEnabled() {
		log.Warn().Str("provider", cfg.LLMProvider).Msg("⚠️  No LLM API key, AI route disabled")
		return llm.NewComposer(nil, composerCfg)
	}

	apiKey := cfg.OpenAIKey
	switch llm.ProviderType(cfg.LLMProvider) {
	case llm.ProviderGroq:
		apiKey = cfg.GroqKey
	case llm.ProviderDeepSeek:
		apiKey = cfg.DeepSeekKey
	}

	provider, err := llm.NewProvider(&llm.ProviderConfig{
		Type:    llm.ProviderType(cfg.LLMProvider),
		APIKey:  apiKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}
	log.Info().Str("provider", provider.GetProviderName()).Str("model", provider.Model()).Msg("🤖 LLM provider ready")
	return llm.NewComposer(provider, composerCfg)
}

// newMailer sends invitations from EMAIL_FROM, falling back to the profile's contact address.
func newMailer(cfg *config.Config, b *business.Config) *email.Service {
	from := email.Sender{Email: cfg.EmailFrom, Name: cfg.EmailFromName}
	if from.Email == "" {
		from.Email = b.ContactEmail()
	}
	if from.Name == "" {
		from.Name = b.Name
	}

	provider := email.NewProvider(cfg.EmailProvider, cfg.ResendAPIKey, cfg.BrevoAPIKey, from)
	if provider == nil || from.Email == "" {
		log.Warn().Str("provider", cfg.EmailProvider).Msg("⚠️  Email not configured, meeting invitations disabled")
		return email.NewService(nil)
	}
	log.Info().Str("provider", provider.GetProviderName()).Str("from", from.String()).Msg("📧 Meeting invitations enabled")
	return email.NewService(provider)
}

func newDetector(cfg *config.Config) detector.Detector {
	if cfg.TradersFile == "" {
		return nil
	}
	traders, err := detector.LoadTraders(cfg.TradersFile)
	if err != nil {
		log.Warn().Err(err).Str("file", cfg.TradersFile).Msg("trader directory unavailable, detector disabled")
		return nil
	}
	log.Info().Int("traders", len(traders)).Msg("🔎 Trader detector enabled")
	return detector.NewTraderDetector(traders)
}

// refreshSchedule prefers REFRESH_SCHEDULE over the profile's own update schedule.
func refreshSchedule(cfg *config.Config, b *business.Config) string {
	if cfg.RefreshSchedule != "" {
		return cfg.RefreshSchedule
	}
	if b.Scraping != nil && b.Scraping.Enabled && b.Scraping.UpdateSchedule != "manual" {
		return b.Scraping.UpdateSchedule
	}
	return ""
}
