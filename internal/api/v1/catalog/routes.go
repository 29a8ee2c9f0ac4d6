package catalog

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the read-only catalog endpoints.
func RegisterRoutes(router *gin.RouterGroup) {
	modelGroup := router.Group("/models")
	{
		modelGroup.GET("", GetModels)
		modelGroup.GET("/:model_id/parameters", GetParameters)
	}
}

// RegisterAdminRoutes mounts the catalog management endpoints.
func RegisterAdminRoutes(router *gin.RouterGroup) {
	modelGroup := router.Group("/models")
	{
		modelGroup.POST("", CreateModel)
		modelGroup.PUT("/:id", UpdateModel)
		modelGroup.PATCH("/:id/status", UpdateModelStatus)
	}
}
