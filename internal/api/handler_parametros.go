package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clt400tt-terminal/internal/lookup"
)

// GetParametros handles GET /api/parametros.
func (h *Handler) GetParametros(c *gin.Context) {
	p, err := h.deps.Settings.Get(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load company settings")
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"erro": lookup.ErrorMessage(err, "Não foi possível carregar os parâmetros da empresa."),
		})
		return
	}
	c.JSON(http.StatusOK, p)
}

// RefreshParametros handles POST /api/parametros/refresh, forcing a backend
// fetch.
func (h *Handler) RefreshParametros(c *gin.Context) {
	p, err := h.deps.Settings.Refresh(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("settings refresh failed")
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"erro": lookup.ErrorMessage(err, "Não foi possível atualizar os parâmetros da empresa."),
		})
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteParametros handles DELETE /api/parametros, clearing both cache tiers.
func (h *Handler) DeleteParametros(c *gin.Context) {
	if err := h.deps.Settings.Invalidate(c.Request.Context()); err != nil {
		h.log.Error().Err(err).Msg("settings invalidation failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"erro": "Não foi possível limpar o cache de parâmetros."})
		return
	}
	c.Status(http.StatusNoContent)
}
