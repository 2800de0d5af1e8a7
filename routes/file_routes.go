package routes

import (
	"sharevault/controllers"
	"sharevault/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutesWithContainer registers the file API. Read paths take optional
// auth so anonymous users can reach public and password-gated files; every
// mutating path requires an authenticated caller.
func SetupRoutesWithContainer(api *gin.RouterGroup, container *ServiceContainer) {
	fileController := controllers.NewFileController(container.FileService, container.AccessGate, container.MaxFileSize)

	files := api.Group("/files")

	read := files.Group("")
	read.Use(middleware.OptionalAuthMiddleware(container.JWTSecret))
	{
		read.GET("/:id", fileController.GetFile)                // GET  /files/:id
		read.POST("/:id/access", fileController.AccessFile)     // POST /files/:id/access (password-gated read)
		read.POST("/:id/download", fileController.DownloadFile) // POST /files/:id/download
	}

	write := files.Group("")
	write.Use(middleware.AuthMiddleware(container.JWTSecret))
	{
		write.POST("", fileController.UploadFile)                 // POST   /files (new upload or new version)
		write.GET("", fileController.ListFiles)                   // GET    /files (own files)
		write.PUT("/:id", fileController.UpdateFile)              // PUT    /files/:id
		write.POST("/:id/restore", fileController.RestoreVersion) // POST   /files/:id/restore
		write.GET("/:id/versions", fileController.ListVersions)   // GET    /files/:id/versions
		write.DELETE("/:id", fileController.DeleteFile)           // DELETE /files/:id
	}
}
