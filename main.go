package main

import (
	"aibot-backend/config"
	"aibot-backend/internal/api"
	"aibot-backend/internal/database"
	"aibot-backend/internal/models"
	"aibot-backend/internal/providers"
	"aibot-backend/internal/services"
	"aibot-backend/pkg/logger"
	"log"

	"go.uber.org/zap"
)

// @title aibot-backend API
// @version 1.0
// @description AI generation backend with a model catalog and usage ledger.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	err = logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	if _, err := database.Connect(cfg.DSN(), cfg.DBHost); err != nil {
		zap.L().Fatal("failed to connect database", zap.Error(err))
	}

	err = database.DB.AutoMigrate(
		&models.User{},
		&models.ModelDescriptor{},
		&models.UsageRecord{},
		&models.Transaction{},
	)
	if err != nil {
		zap.L().Fatal("failed to migrate database", zap.Error(err))
	}

	if err := database.ConnectRedis(cfg); err != nil {
		zap.L().Fatal("failed to connect redis", zap.Error(err))
	}

	seedCatalog()

	descriptors, err := services.LoadOpenDescriptors()
	if err != nil {
		zap.L().Fatal("failed to load model catalog", zap.Error(err))
	}

	registry := providers.NewRegistry(providers.EnvCredentialStore{}, descriptors, cfg.MockFallback)
	services.InitDispatcher(registry)
	go services.DefaultDispatcher.StartWorker()

	router := api.NewRouter()
	if err := router.Run(":8080"); err != nil {
		zap.L().Fatal("failed to run server", zap.Error(err))
	}
}

// seedCatalog fills an empty catalog with a starter model set so a
// fresh deployment can serve requests immediately.
func seedCatalog() {
	var count int64
	database.DB.Model(&models.ModelDescriptor{}).Count(&count)
	if count > 0 {
		return
	}

	seed := []models.ModelDescriptor{
		{ModelID: "gpt-4", DisplayName: "GPT-4", ProviderKind: models.ProviderOpenAI, Category: models.CategoryText, TokenCost: 1000, Status: models.DescriptorStatusOpen},
		{ModelID: "gpt-4o-mini", DisplayName: "GPT-4o mini", ProviderKind: models.ProviderOpenAI, Category: models.CategoryText, TokenCost: 100, Status: models.DescriptorStatusOpen},
		{ModelID: "claude-sonnet", DisplayName: "Claude Sonnet", ProviderKind: models.ProviderAnthropic, Category: models.CategoryText, TokenCost: 800, Status: models.DescriptorStatusOpen},
		{ModelID: "gemini-flash", DisplayName: "Gemini Flash", ProviderKind: models.ProviderGoogle, Category: models.CategoryText, TokenCost: 150, Status: models.DescriptorStatusOpen},
		{ModelID: "deepseek-chat", DisplayName: "DeepSeek Chat", ProviderKind: models.ProviderDeepSeek, Category: models.CategoryText, TokenCost: 50, Status: models.DescriptorStatusOpen},
		{ModelID: "dall-e-3", DisplayName: "DALL-E 3", ProviderKind: models.ProviderOpenAI, Category: models.CategoryImageGen, TokenCost: 2500, Status: models.DescriptorStatusOpen},
		{ModelID: "tts-1", DisplayName: "TTS", ProviderKind: models.ProviderOpenAI, Category: models.CategoryTTS, TokenCost: 500, Status: models.DescriptorStatusOpen},
		{ModelID: "whisper-1", DisplayName: "Whisper", ProviderKind: models.ProviderOpenAI, Category: models.CategoryTranscription, TokenCost: 300, Status: models.DescriptorStatusOpen},
		{ModelID: "mock-video", DisplayName: "Video (preview)", ProviderKind: models.ProviderMock, Category: models.CategoryVideoGen, TokenCost: 10000, Status: models.DescriptorStatusOpen},
		{ModelID: "mock-audio", DisplayName: "Audio (preview)", ProviderKind: models.ProviderMock, Category: models.CategoryAudioGen, TokenCost: 4000, Status: models.DescriptorStatusOpen},
	}
	if err := database.DB.Create(&seed).Error; err != nil {
		zap.L().Warn("catalog seeding failed", zap.Error(err))
		return
	}
	zap.L().Info("catalog seeded", zap.Int("models", len(seed)))
}
