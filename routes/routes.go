package routes

import (
	"document-tracker-api/controllers"
	"document-tracker-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, h *controllers.Handlers) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", h.Login)

			// Lookup catalog for forms
			public.GET("/catalog", h.GetCatalog)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Document Tracker API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(h.JWTSecret))
		{
			// Department scope
			protected.GET("/scope", h.GetScope)

			// Tracked documents
			documents := protected.Group("/documents")
			{
				documents.GET("", h.ListDocuments)
				documents.POST("", h.CreateDocument)
				documents.GET("/:id", h.GetDocument)
				documents.PUT("/:id", h.UpdateDocument)
				documents.PATCH("/:id/status", h.UpdateDocumentStatus)
				documents.PATCH("/:id/location", h.UpdateDocumentLocation)
				documents.POST("/:id/archive", h.ArchiveDocument)
				documents.POST("/:id/unarchive", h.UnarchiveDocument)
				documents.GET("/:id/route-logs", h.GetRouteLogs)

				// Attachments
				documents.POST("/:id/attachments/presign", h.PresignAttachment)
				documents.POST("/:id/attachments", h.AttachFiles)

				// Remarks thread
				documents.GET("/:id/remarks", h.ListRemarks)
				documents.POST("/:id/remarks", h.AddRemark)
			}

			// Remark edits (author only)
			remarks := protected.Group("/remarks")
			{
				remarks.PUT("/:id", h.EditRemark)
				remarks.DELETE("/:id", h.DeleteRemark)
			}
		}
	}
}
