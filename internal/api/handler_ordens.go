package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"clt400tt-terminal/internal/lookup"
)

// GetOrdem handles GET /api/ordens: the full work-order consultation used by
// the pre-selection dialog, proxied as-is from the backend.
func (h *Handler) GetOrdem(c *gin.Context) {
	numero := c.Query("numero_os")
	if numero == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"erro": "Informe o número da OS para pesquisar."})
		return
	}

	evento := 0
	if v := c.Query("evento"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"erro": "Código de evento inválido."})
			return
		}
		evento = parsed
	}

	raw, err := h.deps.Lookups.Ordem.Detalhada(c.Request.Context(), numero, evento)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"erro": lookup.ErrorMessage(err, "Não foi possível consultar a OS."),
		})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
