package services

import (
	"aibot-backend/internal/database"
	"aibot-backend/internal/models"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupCatalogTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.ModelDescriptor{})
	db.AutoMigrate(&models.ModelDescriptor{})

	database.DB = db
	database.RedisClient = nil
}

func setupCatalogTestRedis() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr
}

func TestCreateModelDescriptor_RejectsNonPositiveCost(t *testing.T) {
	setupCatalogTestDB()

	descriptor := models.ModelDescriptor{
		ModelID:      "free-model",
		ProviderKind: models.ProviderOpenAI,
		Category:     models.CategoryText,
		TokenCost:    0,
		Status:       models.DescriptorStatusOpen,
	}
	assert.ErrorIs(t, CreateModelDescriptor(&descriptor), ErrInvalidTokenCost)

	descriptor.TokenCost = -5
	assert.ErrorIs(t, CreateModelDescriptor(&descriptor), ErrInvalidTokenCost)

	descriptor.TokenCost = 100
	assert.NoError(t, CreateModelDescriptor(&descriptor))
}

func TestGetModelTokenCost(t *testing.T) {
	setupCatalogTestDB()

	descriptor := models.ModelDescriptor{
		ModelID:      "gpt-4",
		ProviderKind: models.ProviderOpenAI,
		Category:     models.CategoryText,
		TokenCost:    1000,
		Status:       models.DescriptorStatusOpen,
	}
	assert.NoError(t, CreateModelDescriptor(&descriptor))

	cost, err := GetModelTokenCost("gpt-4")
	assert.NoError(t, err)
	assert.Equal(t, int64(1000), cost)

	_, err = GetModelTokenCost("missing")
	assert.Error(t, err)
}

func TestLoadOpenDescriptors_FiltersStatus(t *testing.T) {
	setupCatalogTestDB()

	database.DB.Create(&models.ModelDescriptor{ModelID: "open-1", ProviderKind: models.ProviderOpenAI, Category: models.CategoryText, TokenCost: 10, Status: models.DescriptorStatusOpen})
	database.DB.Create(&models.ModelDescriptor{ModelID: "closed-1", ProviderKind: models.ProviderOpenAI, Category: models.CategoryText, TokenCost: 10, Status: models.DescriptorStatusClosed})
	database.DB.Create(&models.ModelDescriptor{ModelID: "draft-1", ProviderKind: models.ProviderOpenAI, Category: models.CategoryText, TokenCost: 10, Status: models.DescriptorStatusDraft})

	descriptors, err := LoadOpenDescriptors()
	assert.NoError(t, err)
	assert.Len(t, descriptors, 1)
	assert.Equal(t, "open-1", descriptors[0].ModelID)
}

func TestUpdateDescriptorStatus(t *testing.T) {
	setupCatalogTestDB()

	descriptor := models.ModelDescriptor{ModelID: "m1", ProviderKind: models.ProviderOpenAI, Category: models.CategoryText, TokenCost: 10, Status: models.DescriptorStatusDraft}
	database.DB.Create(&descriptor)

	assert.NoError(t, UpdateDescriptorStatus(descriptor.ID, models.DescriptorStatusOpen))

	var updated models.ModelDescriptor
	database.DB.First(&updated, descriptor.ID)
	assert.Equal(t, models.DescriptorStatusOpen, updated.Status)

	assert.Error(t, UpdateDescriptorStatus(99999, models.DescriptorStatusOpen))
}

func TestGetModelParameters_UsesRedisCache(t *testing.T) {
	setupCatalogTestDB()
	mr := setupCatalogTestRedis()
	defer mr.Close()

	descriptor := models.ModelDescriptor{
		ModelID:      "dall-e-3",
		ProviderKind: models.ProviderOpenAI,
		Category:     models.CategoryImageGen,
		TokenCost:    2500,
		Status:       models.DescriptorStatusOpen,
		Parameters:   models.JSON{"size": "1024x1024"},
	}
	database.DB.Create(&descriptor)

	params, err := GetModelParameters("dall-e-3")
	assert.NoError(t, err)
	assert.Equal(t, "1024x1024", params["size"])

	// Second read is served from cache even after the row disappears.
	database.DB.Delete(&models.ModelDescriptor{}, descriptor.ID)

	params, err = GetModelParameters("dall-e-3")
	assert.NoError(t, err)
	assert.Equal(t, "1024x1024", params["size"])
}

func TestUpdateModelDescriptor_InvalidatesCache(t *testing.T) {
	setupCatalogTestDB()
	mr := setupCatalogTestRedis()
	defer mr.Close()

	descriptor := models.ModelDescriptor{
		ModelID:      "dall-e-3",
		ProviderKind: models.ProviderOpenAI,
		Category:     models.CategoryImageGen,
		TokenCost:    2500,
		Status:       models.DescriptorStatusOpen,
		Parameters:   models.JSON{"size": "512x512"},
	}
	database.DB.Create(&descriptor)

	_, err := GetModelParameters("dall-e-3")
	assert.NoError(t, err)

	descriptor.Parameters = models.JSON{"size": "1024x1024"}
	assert.NoError(t, UpdateModelDescriptor(&descriptor))

	params, err := GetModelParameters("dall-e-3")
	assert.NoError(t, err)
	assert.Equal(t, "1024x1024", params["size"])
}

func TestFindModelDescriptors_Filters(t *testing.T) {
	setupCatalogTestDB()

	database.DB.Create(&models.ModelDescriptor{ModelID: "gpt-4", DisplayName: "GPT-4", ProviderKind: models.ProviderOpenAI, Category: models.CategoryText, TokenCost: 1000, Status: models.DescriptorStatusOpen})
	database.DB.Create(&models.ModelDescriptor{ModelID: "claude-sonnet", DisplayName: "Claude Sonnet", ProviderKind: models.ProviderAnthropic, Category: models.CategoryText, TokenCost: 800, Status: models.DescriptorStatusOpen})

	descriptors, total, err := FindModelDescriptors(DescriptorFilter{Provider: "openai", Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "gpt-4", descriptors[0].ModelID)

	descriptors, total, err = FindModelDescriptors(DescriptorFilter{Name: "claude", Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "claude-sonnet", descriptors[0].ModelID)
}
