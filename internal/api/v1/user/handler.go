package user

import (
	"aibot-backend/internal/database"
	"aibot-backend/internal/models"
	"aibot-backend/internal/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CurrentUser godoc
// @Summary Get current user
// @Description Get current user's information and balance
// @Tags user
// @Produce  json
// @Security Bearer
// @Success 200 {object} utils.Response{data=user.UserResponse}
// @Failure 401 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /auth/user [get]
func CurrentUser(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	u := user.(models.User)

	// Force reload from DB so the balance reflects any debit that landed
	// after the middleware's cached read.
	var latestUser models.User
	if err := database.DB.First(&latestUser, u.ID).Error; err == nil {
		u = latestUser
	}

	token, err := utils.GenerateToken(u.ID, u.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Could not generate token"))
		return
	}

	// Total = Max(Balance, 0) + CreditLimit; Available = Balance + CreditLimit.
	// Supports both prepaid (Balance > 0) and overdraft (Balance < 0) accounts.
	available := u.Balance + u.CreditLimit
	total := u.CreditLimit
	if u.Balance > 0 {
		total = u.Balance + u.CreditLimit
	}
	used := total - available

	var usagePercentage float64
	if total > 0 {
		usagePercentage = float64(used) / float64(total) * 100
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User information retrieved successfully", UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Role:          u.Role,
		IsActive:      u.IsActive,
		Balance:       u.Balance,
		CreditLimit:   u.CreditLimit,
		TotalConsumed: u.TotalConsumed,
		Credit: &CreditInfo{
			Total:           total,
			Used:            used,
			Available:       available,
			UsagePercentage: usagePercentage,
		},
		Token: token,
	}))
}
