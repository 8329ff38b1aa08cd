package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clt400tt-terminal/internal/evento"
)

// eventoResponse is one selectable event, flagged when a form exists for it.
type eventoResponse struct {
	Valor        string `json:"valor"`
	Label        string `json:"label"`
	Implementado bool   `json:"implementado"`
}

// GetEventos handles GET /api/eventos: the event selection list.
func (h *Handler) GetEventos(c *gin.Context) {
	opcoes := evento.Opcoes()
	out := make([]eventoResponse, 0, len(opcoes))
	for _, o := range opcoes {
		code, ok := evento.ParseEventCode(o.Valor)
		out = append(out, eventoResponse{
			Valor:        o.Valor,
			Label:        o.Label,
			Implementado: ok && evento.Supported(code),
		})
	}
	c.JSON(http.StatusOK, out)
}
