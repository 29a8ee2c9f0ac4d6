package services

import (
	"aibot-backend/internal/database"
	"aibot-backend/internal/models"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupLedgerTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.User{}, &models.ModelDescriptor{}, &models.UsageRecord{}, &models.Transaction{})
	db.AutoMigrate(&models.User{}, &models.ModelDescriptor{}, &models.UsageRecord{}, &models.Transaction{})

	database.DB = db
	database.RedisClient = nil
}

func seedLedgerUser(balance int64) models.User {
	user := models.User{
		Username: "spender",
		Password: "x",
		Role:     "user",
		Balance:  balance,
		IsActive: true,
		Version:  1,
	}
	database.DB.Create(&user)
	return user
}

func seedLedgerModel(modelID string, cost int64) models.ModelDescriptor {
	descriptor := models.ModelDescriptor{
		ModelID:      modelID,
		DisplayName:  modelID,
		ProviderKind: models.ProviderOpenAI,
		Category:     models.CategoryText,
		TokenCost:    cost,
		Status:       models.DescriptorStatusOpen,
	}
	database.DB.Create(&descriptor)
	return descriptor
}

func TestLogOperation_CompletedDebitsUser(t *testing.T) {
	setupLedgerTestDB()
	user := seedLedgerUser(5000)
	seedLedgerModel("gpt-4", 1000)

	id := LogOperation(LogParams{
		UserID:  user.ID,
		ModelID: "gpt-4",
		Category: models.CategoryText,
		Prompt:  "hello",
		Status:  models.UsageStatusCompleted,
	})
	assert.NotNil(t, id)

	var record models.UsageRecord
	assert.NoError(t, database.DB.First(&record, *id).Error)
	assert.Equal(t, int64(1000), record.TokensCost)
	assert.Equal(t, models.UsageStatusCompleted, record.Status)
	assert.Equal(t, "hello", record.PromptExcerpt)

	var updated models.User
	database.DB.First(&updated, user.ID)
	assert.Equal(t, int64(4000), updated.Balance)
	assert.Equal(t, int64(1000), updated.TotalConsumed)

	var trans models.Transaction
	assert.NoError(t, database.DB.Where("usage_record_id = ?", *id).First(&trans).Error)
	assert.Equal(t, models.TransactionTypeUserConsume, trans.Type)
	assert.Equal(t, int64(-1000), trans.Amount)
}

func TestLogOperation_PendingDoesNotDebit(t *testing.T) {
	setupLedgerTestDB()
	user := seedLedgerUser(5000)
	seedLedgerModel("gpt-4", 1000)

	id := LogOperation(LogParams{
		UserID:   user.ID,
		ModelID:  "gpt-4",
		Category: models.CategoryText,
		Status:   models.UsageStatusPending,
	})
	assert.NotNil(t, id)

	var updated models.User
	database.DB.First(&updated, user.ID)
	assert.Equal(t, int64(5000), updated.Balance)
}

func TestLogOperation_ResolvesCostAtWriteTime(t *testing.T) {
	setupLedgerTestDB()
	user := seedLedgerUser(10000)
	descriptor := seedLedgerModel("gpt-4", 1000)

	// Price change lands before the record is written.
	database.DB.Model(&descriptor).Update("token_cost", 1500)

	id := LogOperation(LogParams{
		UserID:   user.ID,
		ModelID:  "gpt-4",
		Category: models.CategoryText,
		Status:   models.UsageStatusCompleted,
	})
	assert.NotNil(t, id)

	var record models.UsageRecord
	database.DB.First(&record, *id)
	assert.Equal(t, int64(1500), record.TokensCost)

	var updated models.User
	database.DB.First(&updated, user.ID)
	assert.Equal(t, int64(8500), updated.Balance)
}

func TestLogOperation_UnknownModelReturnsNil(t *testing.T) {
	setupLedgerTestDB()
	user := seedLedgerUser(5000)

	id := LogOperation(LogParams{
		UserID:   user.ID,
		ModelID:  "no-such-model",
		Category: models.CategoryText,
		Status:   models.UsageStatusCompleted,
	})
	assert.Nil(t, id)

	var count int64
	database.DB.Model(&models.UsageRecord{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestLogOperation_InsufficientBalanceRollsBack(t *testing.T) {
	setupLedgerTestDB()
	user := seedLedgerUser(100)
	seedLedgerModel("gpt-4", 1000)

	id := LogOperation(LogParams{
		UserID:   user.ID,
		ModelID:  "gpt-4",
		Category: models.CategoryText,
		Status:   models.UsageStatusCompleted,
	})
	assert.Nil(t, id)

	// The record creation rolled back with the failed debit.
	var count int64
	database.DB.Model(&models.UsageRecord{}).Count(&count)
	assert.Equal(t, int64(0), count)

	var updated models.User
	database.DB.First(&updated, user.ID)
	assert.Equal(t, int64(100), updated.Balance)
}

func TestUpdateOperationStatus_CompletesOnce(t *testing.T) {
	setupLedgerTestDB()
	user := seedLedgerUser(5000)
	seedLedgerModel("gpt-4", 1000)

	id := LogOperation(LogParams{
		UserID:   user.ID,
		ModelID:  "gpt-4",
		Category: models.CategoryText,
		Status:   models.UsageStatusPending,
	})
	assert.NotNil(t, id)

	ok := UpdateOperationStatus(*id, models.UsageStatusCompleted, "https://files.example/out.png", 3.5)
	assert.True(t, ok)

	var record models.UsageRecord
	database.DB.First(&record, *id)
	assert.Equal(t, models.UsageStatusCompleted, record.Status)
	assert.Equal(t, "https://files.example/out.png", record.ResponseFilePath)
	assert.Equal(t, 3.5, record.ProcessingSeconds)

	var updated models.User
	database.DB.First(&updated, user.ID)
	assert.Equal(t, int64(4000), updated.Balance)

	// Repeating the transition is a no-op and must not debit again.
	ok = UpdateOperationStatus(*id, models.UsageStatusCompleted, "", 0)
	assert.False(t, ok)

	database.DB.First(&updated, user.ID)
	assert.Equal(t, int64(4000), updated.Balance)

	var transCount int64
	database.DB.Model(&models.Transaction{}).Where("usage_record_id = ?", *id).Count(&transCount)
	assert.Equal(t, int64(1), transCount)
}

func TestUpdateOperationStatus_FailedDoesNotDebit(t *testing.T) {
	setupLedgerTestDB()
	user := seedLedgerUser(5000)
	seedLedgerModel("gpt-4", 1000)

	id := LogOperation(LogParams{
		UserID:   user.ID,
		ModelID:  "gpt-4",
		Category: models.CategoryText,
		Status:   models.UsageStatusPending,
	})
	assert.NotNil(t, id)

	ok := UpdateOperationStatus(*id, models.UsageStatusFailed, "", 1.2)
	assert.True(t, ok)

	var updated models.User
	database.DB.First(&updated, user.ID)
	assert.Equal(t, int64(5000), updated.Balance)

	// A failed record cannot be completed later.
	ok = UpdateOperationStatus(*id, models.UsageStatusCompleted, "", 0)
	assert.False(t, ok)
}

func TestUpdateOperationStatus_RejectsInvalidTarget(t *testing.T) {
	setupLedgerTestDB()
	user := seedLedgerUser(5000)
	seedLedgerModel("gpt-4", 1000)

	id := LogOperation(LogParams{
		UserID:   user.ID,
		ModelID:  "gpt-4",
		Category: models.CategoryText,
		Status:   models.UsageStatusPending,
	})
	assert.NotNil(t, id)

	assert.False(t, UpdateOperationStatus(*id, models.UsageStatusPending, "", 0))
	assert.False(t, UpdateOperationStatus(99999, models.UsageStatusCompleted, "", 0))
}

func TestFindUsageRecords_FiltersByUserAndStatus(t *testing.T) {
	setupLedgerTestDB()
	alice := seedLedgerUser(10000)
	bob := models.User{Username: "bob", Password: "x", Role: "user", Balance: 10000, IsActive: true, Version: 1}
	database.DB.Create(&bob)
	seedLedgerModel("gpt-4", 1000)

	LogOperation(LogParams{UserID: alice.ID, ModelID: "gpt-4", Category: models.CategoryText, Status: models.UsageStatusCompleted})
	LogOperation(LogParams{UserID: alice.ID, ModelID: "gpt-4", Category: models.CategoryText, Status: models.UsageStatusPending})
	LogOperation(LogParams{UserID: bob.ID, ModelID: "gpt-4", Category: models.CategoryText, Status: models.UsageStatusCompleted})

	records, total, err := FindUsageRecords(UsageFilter{UserID: &alice.ID, Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, records, 2)

	pending := models.UsageStatusPending
	records, total, err = FindUsageRecords(UsageFilter{UserID: &alice.ID, Status: &pending, Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, models.UsageStatusPending, records[0].Status)
}
