package services

import (
	"aibot-backend/internal/database"
	"aibot-backend/internal/models"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupBalanceTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.User{}, &models.Transaction{})
	db.AutoMigrate(&models.User{}, &models.Transaction{})

	database.DB = db
	database.RedisClient = nil
}

func seedBalanceUser(balance, creditLimit int64) models.User {
	user := models.User{
		Username:    "holder",
		Password:    "x",
		Role:        "user",
		Balance:     balance,
		CreditLimit: creditLimit,
		IsActive:    true,
		Version:     1,
	}
	database.DB.Create(&user)
	return user
}

func TestAdjustBalance_CreditAndDebit(t *testing.T) {
	t.Setenv("LEDGER_SECRET", "test-ledger-secret")
	setupBalanceTestDB()
	user := seedBalanceUser(0, 0)

	trans, err := AdjustBalance(user.ID, 1000, "Top up", TransactionMetadata{
		Operator: "admin", OperatorID: 1, Type: models.TransactionTypeSystemAdmin,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), trans.BalanceBefore)
	assert.Equal(t, int64(1000), trans.BalanceAfter)
	assert.True(t, VerifyTransactionHash(trans, "test-ledger-secret"))

	trans, err = AdjustBalance(user.ID, -300, "Generation with gpt-4", TransactionMetadata{
		Type: models.TransactionTypeUserConsume,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(700), trans.BalanceAfter)
	assert.Equal(t, "system", trans.Operator)

	var updated models.User
	database.DB.First(&updated, user.ID)
	assert.Equal(t, int64(700), updated.Balance)
	assert.Equal(t, int64(300), updated.TotalConsumed)
}

func TestAdjustBalance_InsufficientBalance(t *testing.T) {
	setupBalanceTestDB()
	user := seedBalanceUser(100, 0)

	_, err := AdjustBalance(user.ID, -200, "Generation with gpt-4", TransactionMetadata{})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	var updated models.User
	database.DB.First(&updated, user.ID)
	assert.Equal(t, int64(100), updated.Balance)

	var count int64
	database.DB.Model(&models.Transaction{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestAdjustBalance_CreditLimitAllowsOverdraft(t *testing.T) {
	setupBalanceTestDB()
	user := seedBalanceUser(100, 500)

	_, err := AdjustBalance(user.ID, -400, "Generation with gpt-4", TransactionMetadata{})
	assert.NoError(t, err)

	var updated models.User
	database.DB.First(&updated, user.ID)
	assert.Equal(t, int64(-300), updated.Balance)

	// Only 200 of headroom is left.
	_, err = AdjustBalance(user.ID, -300, "Generation with gpt-4", TransactionMetadata{})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestAdjustBalance_RepeatedDebitsAreExact(t *testing.T) {
	setupBalanceTestDB()
	user := seedBalanceUser(1000, 0)

	for i := 0; i < 20; i++ {
		_, err := AdjustBalance(user.ID, -50, "Generation with gpt-4", TransactionMetadata{})
		assert.NoError(t, err)
	}

	var updated models.User
	database.DB.First(&updated, user.ID)
	assert.Equal(t, int64(0), updated.Balance)
	assert.Equal(t, int64(1000), updated.TotalConsumed)

	_, err := AdjustBalance(user.ID, -50, "Generation with gpt-4", TransactionMetadata{})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestAdjustBalance_UnknownUser(t *testing.T) {
	setupBalanceTestDB()

	_, err := AdjustBalance(4242, 100, "Top up", TransactionMetadata{})
	assert.Error(t, err)
}
