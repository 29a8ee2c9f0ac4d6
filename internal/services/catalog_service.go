package services

import (
	"aibot-backend/internal/database"
	"aibot-backend/internal/models"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTokenCost = errors.New("token cost must be positive")

type DescriptorFilter struct {
	Name     string
	Provider string
	Status   string
	Page     int
	Limit    int
}

// FindModelDescriptors retrieves a paginated list of catalog entries with filtering
func FindModelDescriptors(filter DescriptorFilter) ([]models.ModelDescriptor, int64, error) {
	var descriptors []models.ModelDescriptor
	var total int64

	query := database.DB.Model(&models.ModelDescriptor{})

	if filter.Name != "" {
		query = query.Where("model_id LIKE ? OR display_name LIKE ?", "%"+filter.Name+"%", "%"+filter.Name+"%")
	}
	if filter.Provider != "" {
		query = query.Where("provider_kind = ?", filter.Provider)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Limit(filter.Limit).Offset(offset).Find(&descriptors).Error; err != nil {
		return nil, 0, err
	}

	return descriptors, total, nil
}

// CreateModelDescriptor adds a catalog entry
func CreateModelDescriptor(descriptor *models.ModelDescriptor) error {
	if descriptor.TokenCost <= 0 {
		return ErrInvalidTokenCost
	}
	if len(descriptor.Parameters) > 0 {
		if err := models.ValidateDescriptorParameters(descriptor.Parameters); err != nil {
			return err
		}
	}
	if err := database.DB.Create(descriptor).Error; err != nil {
		return err
	}
	invalidateDescriptorCache(descriptor.ModelID)
	return nil
}

// UpdateModelDescriptor updates an existing catalog entry
func UpdateModelDescriptor(descriptor *models.ModelDescriptor) error {
	if descriptor.TokenCost <= 0 {
		return ErrInvalidTokenCost
	}
	if len(descriptor.Parameters) > 0 {
		if err := models.ValidateDescriptorParameters(descriptor.Parameters); err != nil {
			return err
		}
	}
	if err := database.DB.Save(descriptor).Error; err != nil {
		return err
	}
	invalidateDescriptorCache(descriptor.ModelID)
	return nil
}

// UpdateDescriptorStatus updates the status of a catalog entry
func UpdateDescriptorStatus(id uint, status models.DescriptorStatus) error {
	var descriptor models.ModelDescriptor
	if err := database.DB.First(&descriptor, id).Error; err != nil {
		return err
	}
	if err := database.DB.Model(&descriptor).Update("status", status).Error; err != nil {
		return err
	}
	invalidateDescriptorCache(descriptor.ModelID)
	return nil
}

// FindDescriptorByID retrieves a catalog entry by primary key
func FindDescriptorByID(id uint, descriptor *models.ModelDescriptor) error {
	return database.DB.First(descriptor, id).Error
}

// GetDescriptorByModelID retrieves a catalog entry by its model key
func GetDescriptorByModelID(modelID string) (*models.ModelDescriptor, error) {
	var descriptor models.ModelDescriptor
	if err := database.DB.Where("model_id = ?", modelID).First(&descriptor).Error; err != nil {
		return nil, err
	}
	return &descriptor, nil
}

// GetModelTokenCost resolves the current catalog price for a model.
// The ledger calls this at write time, never at dispatch time.
func GetModelTokenCost(modelID string) (int64, error) {
	var descriptor models.ModelDescriptor
	if err := database.DB.Select("token_cost").Where("model_id = ?", modelID).First(&descriptor).Error; err != nil {
		return 0, err
	}
	return descriptor.TokenCost, nil
}

// LoadOpenDescriptors returns the catalog snapshot the provider registry
// routes on.
func LoadOpenDescriptors() ([]models.ModelDescriptor, error) {
	var descriptors []models.ModelDescriptor
	if err := database.DB.Where("status = ?", models.DescriptorStatusOpen).Find(&descriptors).Error; err != nil {
		return nil, err
	}
	return descriptors, nil
}

// GetModelParameters returns a descriptor's parameter schema, cached in
// Redis for an hour.
func GetModelParameters(modelID string) (models.JSON, error) {
	cacheKey := descriptorCacheKey(modelID)
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var params models.JSON
			if err := json.Unmarshal([]byte(val), &params); err == nil {
				return params, nil
			}
		}
	}

	descriptor, err := GetDescriptorByModelID(modelID)
	if err != nil {
		return nil, err
	}

	if database.RedisClient != nil {
		if data, err := json.Marshal(descriptor.Parameters); err == nil {
			database.RedisClient.Set(database.Ctx, cacheKey, data, time.Hour)
		}
	}

	return descriptor.Parameters, nil
}

func descriptorCacheKey(modelID string) string {
	return fmt.Sprintf("descriptor_params:%s", modelID)
}

func invalidateDescriptorCache(modelID string) {
	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, descriptorCacheKey(modelID))
	}
}
