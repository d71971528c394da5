package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// setupStaticFiles serves the dashboard frontend from the local
// filesystem when the assets are present.
func setupStaticFiles(router *gin.Engine, logger *slog.Logger) {
	logger.Info("Serving frontend assets from ./web")

	router.Static("/static", "./web/static")
	router.StaticFile("/", "./web/index.html")
	router.StaticFile("/favicon.ico", "./web/static/favicon.ico")

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		// Client-side routing falls back to the shell page.
		c.File("./web/index.html")
	})
}
