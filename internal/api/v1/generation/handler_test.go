package generation_test

import (
	"aibot-backend/internal/api/v1/generation"
	"aibot-backend/internal/database"
	"aibot-backend/internal/models"
	"aibot-backend/internal/providers"
	"aibot-backend/internal/services"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupTestEnv(t *testing.T) models.User {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.Migrator().DropTable(&models.User{}, &models.ModelDescriptor{}, &models.UsageRecord{}, &models.Transaction{})
	db.AutoMigrate(&models.User{}, &models.ModelDescriptor{}, &models.UsageRecord{}, &models.Transaction{})
	database.DB = db

	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	t.Cleanup(mr.Close)
	database.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	user := models.User{Username: "caller", Password: "x", Role: "user", Balance: 50000, IsActive: true, Version: 1}
	database.DB.Create(&user)

	database.DB.Create(&models.ModelDescriptor{
		ModelID: "gpt-4", DisplayName: "GPT-4", ProviderKind: models.ProviderOpenAI,
		Category: models.CategoryText, TokenCost: 1000, Status: models.DescriptorStatusOpen,
	})
	database.DB.Create(&models.ModelDescriptor{
		ModelID: "mock-video", DisplayName: "Video", ProviderKind: models.ProviderMock,
		Category: models.CategoryVideoGen, TokenCost: 10000, Status: models.DescriptorStatusOpen,
	})

	descriptors, err := services.LoadOpenDescriptors()
	assert.NoError(t, err)
	services.InitDispatcher(providers.NewRegistry(providers.StaticCredentialStore{}, descriptors, true))

	return user
}

func postGenerate(t *testing.T, user models.User, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", "/generate", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set("user", user)

	generation.Generate(c)
	return w
}

func TestGenerate_SyncMockSuccess(t *testing.T) {
	user := setupTestEnv(t)

	w := postGenerate(t, user, map[string]interface{}{
		"model_id": "gpt-4",
		"prompt":   "hello",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status int                          `json:"status"`
		Data   providers.GenerationResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.True(t, resp.Data.Success)
	assert.NotEmpty(t, resp.Data.Content)
	assert.Equal(t, true, resp.Data.Metadata["mock"])
}

func TestGenerate_UnknownModel(t *testing.T) {
	user := setupTestEnv(t)

	w := postGenerate(t, user, map[string]interface{}{
		"model_id": "no-such-model",
		"prompt":   "hello",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerate_MissingPrompt(t *testing.T) {
	user := setupTestEnv(t)

	w := postGenerate(t, user, map[string]interface{}{
		"model_id": "gpt-4",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_AsyncCategoryQueues(t *testing.T) {
	user := setupTestEnv(t)

	w := postGenerate(t, user, map[string]interface{}{
		"model_id": "mock-video",
		"prompt":   "a cat surfing",
	})

	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp struct {
		Status int                       `json:"status"`
		Data   generation.QueuedResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NotZero(t, resp.Data.RecordID)
	assert.Equal(t, "pending", resp.Data.Status)

	var record models.UsageRecord
	assert.NoError(t, database.DB.First(&record, resp.Data.RecordID).Error)
	assert.Equal(t, models.UsageStatusPending, record.Status)

	queued, err := database.RedisClient.LLen(database.Ctx, services.GenerationQueueKey).Result()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), queued)
}

func TestGetGeneration_OwnershipEnforced(t *testing.T) {
	user := setupTestEnv(t)
	other := models.User{Username: "other", Password: "x", Role: "user", Balance: 1000, IsActive: true, Version: 1}
	database.DB.Create(&other)

	record := models.UsageRecord{
		UserID: user.ID, ModelID: "gpt-4", Category: models.CategoryText,
		TokensCost: 1000, Status: models.UsageStatusCompleted,
	}
	database.DB.Create(&record)

	gin.SetMode(gin.TestMode)

	get := func(as models.User) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		req, _ := http.NewRequest("GET", "/generations/1", nil)
		c.Request = req
		c.Params = gin.Params{{Key: "id", Value: "1"}}
		c.Set("user", as)
		generation.GetGeneration(c)
		return w
	}

	assert.Equal(t, http.StatusOK, get(user).Code)
	assert.Equal(t, http.StatusNotFound, get(other).Code)

	admin := models.User{Username: "root", Password: "x", Role: "admin", IsActive: true, Version: 1}
	database.DB.Create(&admin)
	assert.Equal(t, http.StatusOK, get(admin).Code)
}
