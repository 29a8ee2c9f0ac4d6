package generation

import (
	"aibot-backend/internal/models"
	"aibot-backend/internal/providers"
	"aibot-backend/internal/services"
	"aibot-backend/internal/utils"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Generate godoc
// @Summary Run a generation
// @Description Run a generation with the given model. Text and image
// @Description categories respond synchronously; video and audio
// @Description generation are queued and return a record ID to poll.
// @Tags generation
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body GenerateRequest true "Generation request"
// @Success 200 {object} utils.Response{data=providers.GenerationResponse}
// @Success 202 {object} utils.Response{data=QueuedResponse}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /generate [post]
func Generate(c *gin.Context) {
	var req GenerateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	u := c.MustGet("user").(models.User)

	genReq := providers.GenerationRequest{
		UserID:     u.ID,
		ModelID:    req.ModelID,
		Prompt:     req.Prompt,
		Parameters: req.Parameters,
		UseMock:    req.UseMock,
	}

	desc, ok := services.DefaultDispatcher.Registry().Descriptor(req.ModelID)
	if !ok {
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Unknown model: "+req.ModelID))
		return
	}

	if services.IsAsyncCategory(desc.Category) {
		recordID, err := services.DefaultDispatcher.Enqueue(genReq)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
			return
		}
		c.JSON(http.StatusAccepted, utils.NewSuccessResponse("Generation queued", QueuedResponse{
			RecordID: recordID,
			Status:   string(models.UsageStatusPending),
		}))
		return
	}

	resp, err := services.DefaultDispatcher.Dispatch(c.Request.Context(), genReq)
	if err != nil {
		if errors.Is(err, providers.ErrUnknownModel) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	// Vendor failures are a normal outcome, not an HTTP error.
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Generation finished", resp))
}

// ListGenerations godoc
// @Summary List own generations
// @Description List the caller's usage records with pagination
// @Tags generation
// @Produce json
// @Security Bearer
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Param model_id query string false "Filter by model"
// @Param status query string false "Filter by status (pending/completed/failed)"
// @Success 200 {object} utils.Response{data=UsageListResponse}
// @Failure 500 {object} utils.Response
// @Router /generations [get]
func ListGenerations(c *gin.Context) {
	u := c.MustGet("user").(models.User)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	filter := services.UsageFilter{
		UserID:  &u.ID,
		ModelID: c.Query("model_id"),
		Page:    page,
		Limit:   limit,
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.UsageStatus(statusStr)
		filter.Status = &status
	}

	records, total, err := services.FindUsageRecords(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Generations retrieved successfully", UsageListResponse{
		Total: total,
		Items: records,
	}))
}

// ListAllGenerations godoc
// @Summary List all generations
// @Description List usage records across users. Admin only.
// @Tags admin
// @Produce json
// @Security Bearer
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 20)"
// @Param user_id query int false "Filter by user"
// @Param model_id query string false "Filter by model"
// @Param status query string false "Filter by status"
// @Success 200 {object} utils.Response{data=UsageListResponse}
// @Failure 500 {object} utils.Response
// @Router /admin/generations [get]
func ListAllGenerations(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := services.UsageFilter{
		ModelID: c.Query("model_id"),
		Page:    page,
		Limit:   limit,
	}
	if userIDStr := c.Query("user_id"); userIDStr != "" {
		userID, err := strconv.Atoi(userIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid user_id"))
			return
		}
		uid := uint(userID)
		filter.UserID = &uid
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.UsageStatus(statusStr)
		filter.Status = &status
	}

	records, total, err := services.FindUsageRecords(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Generations retrieved successfully", UsageListResponse{
		Total: total,
		Items: records,
	}))
}

// GetGeneration godoc
// @Summary Get one generation
// @Description Poll a single usage record by ID. Users see only their own.
// @Tags generation
// @Produce json
// @Security Bearer
// @Param id path int true "Usage record ID"
// @Success 200 {object} utils.Response{data=models.UsageRecord}
// @Failure 404 {object} utils.Response
// @Router /generations/{id} [get]
func GetGeneration(c *gin.Context) {
	u := c.MustGet("user").(models.User)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid record ID"))
		return
	}

	record, err := services.GetUsageRecordByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Record not found"))
		return
	}

	if record.UserID != u.ID && u.Role != "admin" {
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Record not found"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Record retrieved successfully", record))
}
