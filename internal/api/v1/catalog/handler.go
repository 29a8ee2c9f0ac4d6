package catalog

import (
	"aibot-backend/internal/models"
	"aibot-backend/internal/services"
	"aibot-backend/internal/utils"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetModels godoc
// @Summary List models
// @Description List catalog entries with pagination and filtering.
// @Description Non-admin callers only see open models.
// @Tags catalog
// @Produce json
// @Security Bearer
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Param name query string false "Filter by model ID or display name"
// @Param provider query string false "Filter by provider"
// @Param status query string false "Filter by status (admin only)"
// @Success 200 {object} utils.Response{data=DescriptorListResponse}
// @Failure 500 {object} utils.Response
// @Router /models [get]
func GetModels(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	filter := services.DescriptorFilter{
		Name:     c.Query("name"),
		Provider: c.Query("provider"),
		Status:   c.Query("status"),
		Page:     page,
		Limit:    limit,
	}

	u := c.MustGet("user").(models.User)
	if u.Role != "admin" {
		if filter.Status != "" && filter.Status != string(models.DescriptorStatusOpen) {
			c.JSON(http.StatusOK, utils.NewSuccessResponse("Models retrieved successfully", DescriptorListResponse{
				Models: []DescriptorListItem{},
				Page:   page,
				Limit:  limit,
			}))
			return
		}
		filter.Status = string(models.DescriptorStatusOpen)
	}

	descriptors, total, err := services.FindModelDescriptors(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	items := make([]DescriptorListItem, 0, len(descriptors))
	for _, d := range descriptors {
		items = append(items, DescriptorListItem{
			ID:          d.ID,
			ModelID:     d.ModelID,
			DisplayName: d.DisplayName,
			Provider:    d.ProviderKind,
			Category:    d.Category,
			TokenCost:   d.TokenCost,
			Status:      d.Status,
			CreatedAt:   d.CreatedAt,
			UpdatedAt:   d.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Models retrieved successfully", DescriptorListResponse{
		Models: items,
		Total:  total,
		Page:   page,
		Limit:  limit,
	}))
}

// GetParameters godoc
// @Summary Get model parameters
// @Description Get a model's parameter schema
// @Tags catalog
// @Produce json
// @Security Bearer
// @Param model_id path string true "Model ID"
// @Success 200 {object} utils.Response{data=models.JSON}
// @Failure 404 {object} utils.Response
// @Router /models/{model_id}/parameters [get]
func GetParameters(c *gin.Context) {
	modelID := c.Param("model_id")

	params, err := services.GetModelParameters(modelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Model not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Parameters retrieved successfully", params))
}

// CreateModel godoc
// @Summary Create a model
// @Description Add a catalog entry (admin only)
// @Tags catalog
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body CreateDescriptorRequest true "Model creation request"
// @Success 201 {object} utils.Response{data=models.ModelDescriptor}
// @Failure 400 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /admin/models [post]
func CreateModel(c *gin.Context) {
	var req CreateDescriptorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	descriptor := models.ModelDescriptor{
		ModelID:      req.ModelID,
		DisplayName:  req.DisplayName,
		ProviderKind: req.Provider,
		Category:     req.Category,
		TokenCost:    req.TokenCost,
		Status:       req.Status,
		Parameters:   req.Parameters,
	}

	if err := services.CreateModelDescriptor(&descriptor); err != nil {
		if errors.Is(err, services.ErrInvalidTokenCost) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
			return
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, "Model ID already exists"))
			return
		}
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	reloadRegistry()

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Model created successfully", descriptor))
}

// UpdateModel godoc
// @Summary Update a model
// @Description Update a catalog entry (admin only). Price changes apply
// @Description to operations recorded after the change.
// @Tags catalog
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Descriptor ID"
// @Param request body UpdateDescriptorRequest true "Model update request"
// @Success 200 {object} utils.Response{data=models.ModelDescriptor}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /admin/models/{id} [put]
func UpdateModel(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid model ID"))
		return
	}

	var req UpdateDescriptorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var descriptor models.ModelDescriptor
	if err := services.FindDescriptorByID(uint(id), &descriptor); err != nil {
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Model not found"))
		return
	}

	if req.DisplayName != "" {
		descriptor.DisplayName = req.DisplayName
	}
	if req.Provider != "" {
		descriptor.ProviderKind = req.Provider
	}
	if req.Category != "" {
		descriptor.Category = req.Category
	}
	if req.TokenCost > 0 {
		descriptor.TokenCost = req.TokenCost
	}
	if req.Parameters != nil {
		descriptor.Parameters = req.Parameters
	}

	if err := services.UpdateModelDescriptor(&descriptor); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	reloadRegistry()

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Model updated successfully", descriptor))
}

// UpdateModelStatus godoc
// @Summary Update model status
// @Description Open, close or draft a catalog entry (admin only)
// @Tags catalog
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Descriptor ID"
// @Param request body UpdateStatusRequest true "Status update request"
// @Success 200 {object} utils.Response
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /admin/models/{id}/status [patch]
func UpdateModelStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid model ID"))
		return
	}

	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if err := services.UpdateDescriptorStatus(uint(id), req.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "Model not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	reloadRegistry()

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Model status updated successfully", nil))
}

// reloadRegistry refreshes the dispatcher's routing snapshot after a
// catalog change. A failed reload keeps the previous snapshot.
func reloadRegistry() {
	if services.DefaultDispatcher == nil {
		return
	}
	descriptors, err := services.LoadOpenDescriptors()
	if err != nil {
		zap.L().Warn("registry reload failed", zap.Error(err))
		return
	}
	services.DefaultDispatcher.Registry().Reload(descriptors)
}
