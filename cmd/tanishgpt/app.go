package main

import (
	"tanishgpt/backendclient"
	"tanishgpt/config"
	"tanishgpt/internal/logger"
	"tanishgpt/services"
	"tanishgpt/store"
	"tanishgpt/ui"
)

// app wires the client stack for one CLI invocation: config, backend
// client, the two state stores and the services the views consume.
// Built lazily inside RunE so --help never needs a config file.
type app struct {
	cfg config.AppConfig

	client   *backendclient.Client
	sessions *store.SessionStore
	panel    *store.PanelStore

	chatSvc    *services.ChatService
	docSvc     *services.DocumentService
	sessionSvc *services.SessionService
}

func newApp() *app {
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	client := backendclient.New()
	sessions := store.NewSessionStore()
	panel := store.NewPanelStore()

	return &app{
		cfg:        cfg,
		client:     client,
		sessions:   sessions,
		panel:      panel,
		chatSvc:    services.NewChatService(client, sessions, cfg.Chat),
		docSvc:     services.NewDocumentService(client, cfg.Upload.AllowedExtensions),
		sessionSvc: services.NewSessionService(client, sessions),
	}
}

func (a *app) newChatView() *ui.ChatView {
	return ui.NewChatView(a.chatSvc, a.docSvc, a.sessionSvc, a.sessions)
}

func (a *app) newSidebar() *ui.Sidebar {
	return ui.NewSidebar(a.sessionSvc, a.sessions, a.panel)
}
