package http

import (
	"github.com/gin-gonic/gin"

	"quillpdf/internal/bootstrap"
	"quillpdf/internal/transport/http/handler"
	"quillpdf/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	authJWT := middleware.AuthJWT(app.Config.Auth.JWTSecret)

	healthHandler := handler.NewHealthHandler(app)
	authHandler := handler.NewAuthHandler(app.Auth)
	fileHandler := handler.NewFileHandler(app.Files)
	chatHandler := handler.NewChatHandler(app.Chat)
	billingHandler := handler.NewBillingHandler(app.Billing)

	router.GET("/healthz", healthHandler.Check)

	// external contract paths
	router.POST("/api/message", authJWT, chatHandler.SendMessage)
	router.POST("/api/upload/complete", authJWT, fileHandler.CompleteUpload)
	router.POST("/api/webhooks/stripe", billingHandler.Webhook)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/callback", authJWT, authHandler.Callback)
	authGroup.GET("/me", authJWT, authHandler.Me)

	fileGroup := v1.Group("/files")
	fileGroup.Use(authJWT)
	fileGroup.GET("", fileHandler.ListFiles)
	fileGroup.GET("/key/:key", fileHandler.GetFileByKey)
	fileGroup.GET("/:id/status", fileHandler.GetUploadStatus)
	fileGroup.GET("/:id/messages", fileHandler.GetFileMessages)
	fileGroup.DELETE("/:id", fileHandler.DeleteFile)

	billingGroup := v1.Group("/billing")
	billingGroup.Use(authJWT)
	billingGroup.POST("/session", billingHandler.CreateSession)

	return router
}
