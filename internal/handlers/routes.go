package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Register mounts every endpoint on app
func Register(app *fiber.App, api *APIHandler, sess *SessionHandler, ws *SyncHandler, sys *SystemHandler) {
	app.Get("/", api.Root)
	app.Get("/health", sys.Health)
	app.Get("/logs", sys.Logs)

	r := app.Group("/api")
	r.Post("/transcript", api.Transcript)
	r.Post("/summary", api.Summary)
	r.Post("/analyze", api.Analyze)
	r.Post("/translate", api.Translate)
	r.Get("/languages", api.Languages)
	r.Get("/video/:id", sys.Video)
	r.Get("/history", sys.History)

	r.Post("/session", sess.Start)
	r.Get("/session", sess.Get)
	r.Delete("/session", sess.Close)
	r.Post("/session/analysis/retry", sess.RetryAnalysis)
	r.Post("/session/translate", sess.Translate)
	r.Post("/session/export", sess.Export)

	app.Use("/ws", ws.Upgrade)
	app.Get("/ws/sync", websocket.New(ws.Handle))
}
