package handlers

import "github.com/gofiber/fiber/v2"

// Handlers groups every HTTP handler of the widget API.
type Handlers struct {
	Chat     *ChatHandler
	Business *BusinessHandler
	Calendar *CalendarHandler
	Avatar   *AvatarHandler
	Widget   *WidgetHandler
	Health   *HealthHandler
}

func RegisterRoutes(app *fiber.App, h Handlers) {
	// Health check
	app.Get("/health", h.Health.GetHealth)
	app.Get("/stats", h.Health.GetStats)
	app.Get("/stats/intents", h.Health.GetIntentStats)
	app.Get("/metrics", h.Health.Metrics())

	// Chat routes
	app.Post("/chat/sessions", h.Chat.StartSession)
	app.Post("/chat/sessions/:id/messages", h.Chat.SendMessage)
	app.Get("/chat/sessions/:id/messages", h.Chat.GetMessages)
	app.Delete("/chat/sessions/:id/messages", h.Chat.ClearMessages)
	app.Get("/chat/sessions/:id/history", h.Chat.GetHistory)

	// Business routes
	app.Get("/business", h.Business.GetBusiness)
	app.Get("/business/insights", h.Business.GetInsights)

	// Knowledge Base routes
	app.Get("/knowledge-base", h.Business.GetKnowledgeBase)
	app.Post("/knowledge-base", h.Business.AddKnowledgeItem)
	app.Get("/knowledge-base/search", h.Business.SearchKnowledgeBase)

	// Calendar routes
	app.Get("/calendar/slots", h.Calendar.GetSlots)
	app.Post("/calendar/ics", h.Calendar.CreateICS)

	// Avatar routes
	avatarGroup := app.Group("/avatar", h.Avatar.requireAvatar)
	avatarGroup.Post("/token", h.Avatar.CreateToken)
	avatarGroup.Post("/sessions", h.Avatar.StartSession)
	avatarGroup.Post("/speak", h.Avatar.Speak)
	avatarGroup.Post("/interrupt", h.Avatar.Interrupt)
	avatarGroup.Post("/stop", h.Avatar.StopSession)

	// Widget embedding
	app.Get("/widget-loader.js", h.Widget.GetLoaderScript)
	app.Get("/widget/qr", h.Widget.GetQRCode)
}
