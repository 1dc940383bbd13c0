package router

import (
	"mindmeld/config"
	"mindmeld/controllers"
	"mindmeld/db"
	"mindmeld/logger"
	"mindmeld/middleware"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Initialize wires all routes and middlewares. Game routes live under /api
// and also at the root, where the old function URLs pointed.
func Initialize(r *gin.Engine, cfg config.Configuration, log *logger.Logger, store *db.RoundStore, svc *controllers.Services) {
	r.Use(gin.Recovery())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.CORSMiddleware(cfg))
	r.Use(Logger(log))
	r.Use(db.SetStoreToContext(store))
	r.Use(controllers.SetServicesToContext(svc))

	r.GET("/health", controllers.Health)

	registerGameRoutes(r.Group("/api"))
	registerGameRoutes(r.Group(""))
}

func registerGameRoutes(g *gin.RouterGroup) {
	// Histórico de rodadas
	g.GET("/get-rounds", controllers.GetRounds)
	g.GET("/get-all-words", controllers.GetAllWords)
	g.POST("/record-round", controllers.RecordRound)

	// IA
	g.POST("/generate-guess", controllers.GenerateGuess)
	g.POST("/check-match", controllers.CheckMatch)
	g.POST("/validate-word", controllers.ValidateWord)

	// Partidas
	g.POST("/games", controllers.StartGame)
	g.GET("/games/:id", controllers.GetGame)
	g.POST("/games/:id/guesses", controllers.SubmitGuess)
}
