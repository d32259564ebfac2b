package routes

import (
	"macrolog/controllers"
	"macrolog/middlewares"

	"github.com/gin-gonic/gin"
)

// SetupRouter mounts the local API the UI talks to. Offline mode has no
// accounts, so the auth routes and the token check are skipped there.
func SetupRouter(offline bool) *gin.Engine {
	r := gin.Default()

	if !offline {
		auth := r.Group("/auth")
		{
			auth.POST("/signup", controllers.Signup)
			auth.POST("/login", controllers.Login)
			auth.POST("/logout", controllers.Logout)
		}
	}

	r.GET("/session", controllers.GetSession)
	r.GET("/ws", controllers.NoticesWS)

	api := r.Group("/")
	if !offline {
		api.Use(middlewares.AuthMiddleware())
	}
	{
		api.GET("/goals", controllers.GetGoals)
		api.PUT("/goals", controllers.UpdateGoals)
		api.GET("/entries", controllers.ListEntries)
		api.GET("/entries/today", controllers.TodaySummary)
		api.POST("/entries", controllers.AddEntry)
		api.PATCH("/entries/:id", controllers.EditEntry)
		api.DELETE("/entries/:id", controllers.DeleteEntry)
		api.DELETE("/entries", controllers.ClearEntries)
	}

	return r
}
