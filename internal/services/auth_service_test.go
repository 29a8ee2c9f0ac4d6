package services

import (
	"aibot-backend/internal/database"
	"aibot-backend/internal/models"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupAuthTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.User{}, &models.Transaction{})
	db.AutoMigrate(&models.User{}, &models.Transaction{})

	database.DB = db
	database.RedisClient = nil
}

func TestRegisterUser_FirstUserIsAdmin(t *testing.T) {
	setupAuthTestDB()

	first, err := RegisterUser("alice", "password1")
	assert.NoError(t, err)
	assert.Equal(t, "admin", first.Role)
	assert.Equal(t, SignupBonus, first.Balance)

	second, err := RegisterUser("bob", "password1")
	assert.NoError(t, err)
	assert.Equal(t, "user", second.Role)

	// The signup bonus leaves an audit row.
	var trans models.Transaction
	assert.NoError(t, database.DB.Where("user_id = ?", second.ID).First(&trans).Error)
	assert.Equal(t, SignupBonus, trans.Amount)
	assert.Equal(t, models.TransactionTypeSystemAuto, trans.Type)
}

func TestRegisterUser_DuplicateUsername(t *testing.T) {
	setupAuthTestDB()

	_, err := RegisterUser("alice", "password1")
	assert.NoError(t, err)

	_, err = RegisterUser("alice", "password2")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginUser(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-jwt-secret")
	setupAuthTestDB()

	_, err := RegisterUser("alice", "password1")
	assert.NoError(t, err)

	token, u, err := LoginUser("alice", "password1")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", u.Username)

	_, _, err = LoginUser("alice", "wrong")
	assert.Error(t, err)

	_, _, err = LoginUser("nobody", "password1")
	assert.Error(t, err)
}

func TestLoginUser_DisabledAccount(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-jwt-secret")
	setupAuthTestDB()

	u, err := RegisterUser("alice", "password1")
	assert.NoError(t, err)

	database.DB.Model(&models.User{}).Where("id = ?", u.ID).Update("is_active", false)

	_, _, err = LoginUser("alice", "password1")
	assert.ErrorIs(t, err, ErrUserDisabled)
}
