package main

import (
	_ "embed"
	"log"
	"net/http"

	"github.com/rs/cors"

	"tanishgpt/backendclient"
	"tanishgpt/cmd/webui/router"
	"tanishgpt/config"
	"tanishgpt/internal/logger"
)

//go:embed static/index.html
var indexHTML []byte

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	client := backendclient.New()
	r := router.New(client, indexHTML)

	// Permissive CORS, matching what the backend itself ran; the
	// gateway exists so browsers on other ports can reach it in dev.
	handler := cors.AllowAll().Handler(r)

	logger.InfoWithFields("webui listening", logger.Fields{
		"addr":    cfg.WebUI.ListenAddr,
		"backend": cfg.Backend.BaseURL,
	})
	if err := http.ListenAndServe(cfg.WebUI.ListenAddr, handler); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
