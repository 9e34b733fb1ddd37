package routes

import (
	"civic-tracker-be/controllers"
	"civic-tracker-be/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// IssueRoutes sets up the citizen-facing report routes and the status update command
func IssueRoutes(r *gin.Engine, ic *controllers.IssueController, limiter *redis.Client, reportLimit int) {
	api := r.Group("/api")
	{
		api.POST("/report", middlewares.ReportRateLimiter(limiter, reportLimit), ic.CreateReport)
		api.GET("/issues", ic.ListIssues)
		api.GET("/issues/:id", ic.GetIssue)
		api.PATCH("/issues/:id", ic.UpdateIssueStatus)
		api.POST("/issues/:id/feedback", ic.SubmitFeedback)
	}
}

// UploadRoutes serves stored report photos
func UploadRoutes(r *gin.Engine, uc *controllers.UploadController) {
	r.GET("/uploads/:filename", uc.ServeUpload)
}
