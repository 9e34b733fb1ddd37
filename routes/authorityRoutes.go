package routes

import (
	"civic-tracker-be/controllers"
	"civic-tracker-be/middlewares"

	"github.com/gin-gonic/gin"
)

// AuthorityRoutes sets up the staff console routes
func AuthorityRoutes(r *gin.Engine, ac *controllers.AuthorityController, jwtSecret string) {
	authority := r.Group("/api/authority")
	{
		authority.POST("/login", ac.Login)
		authority.GET("/issues", middlewares.AuthorityProfile(jwtSecret), ac.Dashboard)
	}
}
