package generation

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/generate", Generate)
	router.GET("/generations", ListGenerations)
	router.GET("/generations/:id", GetGeneration)
}

// RegisterAdminRoutes mounts the cross-user usage listing.
func RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/generations", ListAllGenerations)
}
