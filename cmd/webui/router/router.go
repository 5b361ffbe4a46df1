package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tanishgpt/backendclient"
	"tanishgpt/cmd/webui/handlers"
)

// New builds the gateway router: the embedded single-page UI at the
// root and a thin /api proxy in front of the TanishGPT backend.
func New(client *backendclient.Client, indexHTML []byte) *gin.Engine {
	r := gin.Default()

	// Health check: degraded when the backend is unreachable.
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := client.Health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "backend": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})

	api := r.Group("/api")
	{
		api.POST("/chat", handlers.ChatHandler(client))
		api.POST("/upload", handlers.UploadHandler(client))
		api.GET("/sessions", handlers.ListSessionsHandler(client))
		api.POST("/sessions/new", handlers.CreateSessionHandler(client))
		api.GET("/sessions/:id/messages", handlers.SessionMessagesHandler(client))
		api.DELETE("/sessions/:id", handlers.DeleteSessionHandler(client))
	}

	return r
}
