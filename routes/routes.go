package routes

import (
	"net/http"

	"civic-tracker-be/controllers"
	"civic-tracker-be/middlewares"
	"civic-tracker-be/services"
	"civic-tracker-be/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Issues          *services.IssueService
	Photos          storage.PhotoStore
	Limiter         *redis.Client
	ReportRateLimit int
	CORSOrigins     []string
	JWTSecret       string
	SecureCookies   bool
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.CORS(d.CORSOrigins))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Civic Issue Tracker Backend")
	})
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	IssueRoutes(r, controllers.NewIssueController(d.Issues, d.Photos), d.Limiter, d.ReportRateLimit)
	UploadRoutes(r, controllers.NewUploadController(d.Photos))
	AuthorityRoutes(r, controllers.NewAuthorityController(d.Issues, d.JWTSecret, d.SecureCookies), d.JWTSecret)

	return r
}
