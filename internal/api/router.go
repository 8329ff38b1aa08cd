package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"clt400tt-terminal/config"
	"clt400tt-terminal/internal/evento"
	"clt400tt-terminal/internal/mw"
	"clt400tt-terminal/internal/session"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, deps evento.Deps, sessions *session.Manager) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.Metrics())

	handler := NewHandler(deps, sessions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst, cfg.Server.RequestIPHeader)

	r.GET("/healthz", handler.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/eventos", handler.GetEventos)

		api.GET("/parametros", handler.GetParametros)
		api.POST("/parametros/refresh", handler.RefreshParametros)
		api.DELETE("/parametros", handler.DeleteParametros)

		api.GET("/ordens", handler.GetOrdem)

		api.POST("/sessoes", handler.CreateSession)
		api.GET("/sessoes/:id", handler.GetSession)
		api.DELETE("/sessoes/:id", handler.DeleteSession)
		api.PUT("/sessoes/:id/campos", handler.SetField)
		api.POST("/sessoes/:id/busca", handler.Search)
		api.POST("/sessoes/:id/conflito", handler.ResolveConflict)
		api.PUT("/sessoes/:id/linhas", handler.SetRowQuantity)
		api.POST("/sessoes/:id/horario", handler.SetDateTime)
		api.POST("/sessoes/:id/salvar", handler.Submit)
		api.POST("/sessoes/:id/cancelar", handler.Cancel)
	}

	return r
}

// Healthz reports process liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessoes": h.sessions.Count()})
}
