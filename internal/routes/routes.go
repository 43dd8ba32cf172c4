package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notes-api/internal/auth"
	"notes-api/internal/handlers"
	"notes-api/internal/logging"
	"notes-api/internal/middleware"
	"notes-api/internal/render"
)

// SetupRoutes builds the router. renderer is owned by the caller, which starts and stops it.
func SetupRoutes(renderer *render.Cache, logger *zap.Logger) *gin.Engine {
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery(), logging.Middleware(logger))

	// CORS middleware for the admin frontend
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Notes API is running",
		})
	})

	notes := handlers.NewNoteHandler(renderer)

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/login", handlers.Login)
		api.GET("/notes", notes.ListPublished)
		api.GET("/notes/:id", notes.GetPublished)
		api.GET("/categories", handlers.ListCategories)
		api.GET("/carousels", handlers.ListActiveCarousels)
		api.GET("/search", handlers.SearchNotes)
		api.POST("/feedback", handlers.SubmitFeedback)
	}

	// Admin routes (authentication required, each gated by a permission)
	admin := api.Group("/admin")
	admin.Use(middleware.JWTAuthMiddleware())
	{
		can := middleware.RequirePermission

		admin.GET("/me", handlers.Me)
		admin.GET("/ws", handlers.WebSocketHandler)

		admin.GET("/notes", can(auth.PermNotesRead), notes.AdminList)
		admin.GET("/notes/:id", can(auth.PermNotesRead), notes.AdminGet)
		admin.POST("/notes", can(auth.PermNotesWrite), notes.Create)
		admin.PUT("/notes/:id", can(auth.PermNotesWrite), notes.Update)
		admin.PATCH("/notes/:id/status", can(auth.PermNotesWrite), notes.UpdateStatus)
		admin.DELETE("/notes/:id", can(auth.PermNotesWrite), notes.Delete)

		admin.POST("/categories", can(auth.PermCategoriesWrite), handlers.CreateCategory)
		admin.PUT("/categories/:id", can(auth.PermCategoriesWrite), handlers.UpdateCategory)
		admin.DELETE("/categories/:id", can(auth.PermCategoriesWrite), handlers.DeleteCategory)

		admin.GET("/carousels", can(auth.PermCarouselsWrite), handlers.ListCarousels)
		admin.POST("/carousels", can(auth.PermCarouselsWrite), handlers.CreateCarousel)
		admin.PUT("/carousels/:id", can(auth.PermCarouselsWrite), handlers.UpdateCarousel)
		admin.DELETE("/carousels/:id", can(auth.PermCarouselsWrite), handlers.DeleteCarousel)

		admin.GET("/feedback", can(auth.PermFeedbackRead), handlers.ListFeedback)
		admin.PATCH("/feedback/:id/status", can(auth.PermFeedbackWrite), handlers.UpdateFeedbackStatus)
		admin.DELETE("/feedback/:id", can(auth.PermFeedbackWrite), handlers.DeleteFeedback)

		admin.GET("/admins", can(auth.PermAdminsManage), handlers.ListAdmins)
		admin.POST("/admins", can(auth.PermAdminsManage), handlers.CreateAdmin)
		admin.PUT("/admins/:id", can(auth.PermAdminsManage), handlers.UpdateAdmin)
		admin.DELETE("/admins/:id", can(auth.PermAdminsManage), handlers.DeleteAdmin)

		admin.GET("/roles", can(auth.PermRolesManage), handlers.ListRoles)
		admin.POST("/roles", can(auth.PermRolesManage), handlers.CreateRole)
		admin.PUT("/roles/:id", can(auth.PermRolesManage), handlers.UpdateRole)
		admin.DELETE("/roles/:id", can(auth.PermRolesManage), handlers.DeleteRole)

		admin.POST("/render/preview", can(auth.PermNotesWrite), notes.Preview)
		admin.GET("/render/stats", can(auth.PermSystemRead), notes.Stats)
	}

	return ginRouter
}
