package api

import (
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/feed"
	"github.com/rpupo63/portfolio-backend/services"
)

type routeHandlers struct {
	projectHandler projectHandler
	authHandler    authHandler
	contactHandler contactHandler
	chatHandler    chatHandler
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, hub *feed.Hub, deps Dependencies) *routeHandlers {
	roles := services.NewRoleResolver(db.RoleRepo())

	return &routeHandlers{
		projectHandler: newProjectHandler(db.ProjectRepo(), roles, hub, deps.Covers),
		authHandler:    newAuthHandler(deps.Auth, roles),
		contactHandler: newContactHandler(deps.Contact),
		chatHandler:    newChatHandler(deps.Chat),
	}
}
