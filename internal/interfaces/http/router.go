package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/procurement-pipeline/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Pipeline  pipelineRunner
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Pipeline de reposición
	pipeline := protected.Group("/pipeline")
	h := NewPipelineHandler(deps.Pipeline)
	operate := RequireRole(jwt.RoleAdmin, jwt.RolePlanner)
	read := RequireRole(jwt.RoleAdmin, jwt.RolePlanner, jwt.RoleViewer)

	pipeline.Post("/runs", operate, h.Run)
	pipeline.Get("/runs/:date", read, h.GetRun)
	pipeline.Post("/preflight", operate, h.Preflight)
	pipeline.Post("/replay", operate, h.Replay)
}
