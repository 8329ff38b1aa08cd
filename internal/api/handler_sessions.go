package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clt400tt-terminal/internal/evento"
	"clt400tt-terminal/internal/notify"
	"clt400tt-terminal/internal/session"
)

// sessionResponse is the uniform body of every form operation: the controller
// state to render, plus the notices the operation produced.
type sessionResponse struct {
	ID           string          `json:"id"`
	Estado       evento.Snapshot `json:"estado"`
	Notificacoes []notify.Notice `json:"notificacoes"`
}

func (h *Handler) respond(c *gin.Context, status int, s *session.Session) {
	c.JSON(status, sessionResponse{
		ID:           s.ID,
		Estado:       s.Controller.Snapshot(),
		Notificacoes: s.Notices.Drain(),
	})
}

// withSession resolves the session from the path and runs fn holding its lock.
func (h *Handler) withSession(c *gin.Context, fn func(s *session.Session)) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"erro": "Sessão não encontrada ou expirada."})
		return
	}
	s.Lock()
	defer s.Unlock()
	fn(s)
}

// CreateSession handles POST /api/sessoes: routes the event code and opens a
// fresh form.
func (h *Handler) CreateSession(c *gin.Context) {
	var req struct {
		Evento   string `json:"evento"`
		NumeroOS string `json:"numero_os"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"erro": "Corpo da requisição inválido."})
		return
	}
	if req.Evento == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"erro": "Informe o código do evento"})
		return
	}

	code, ok := evento.ParseEventCode(req.Evento)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"erro": "Evento não encontrado"})
		return
	}

	notices := notify.NewCollector()
	ctrl, ok := evento.New(code, h.deps, notices)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"erro": "Evento não encontrado"})
		return
	}

	if req.NumeroOS != "" {
		ctrl.Prefill(c.Request.Context(), req.NumeroOS)
	}

	s := h.sessions.Create(ctrl, notices)
	h.log.Info().Int("evento", code).Str("sessao", s.ID).Msg("session created")

	s.Lock()
	defer s.Unlock()
	h.respond(c, http.StatusCreated, s)
}

// GetSession handles GET /api/sessoes/:id.
func (h *Handler) GetSession(c *gin.Context) {
	h.withSession(c, func(s *session.Session) {
		h.respond(c, http.StatusOK, s)
	})
}

// DeleteSession handles DELETE /api/sessoes/:id.
func (h *Handler) DeleteSession(c *gin.Context) {
	h.sessions.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// SetField handles PUT /api/sessoes/:id/campos. Cross-field invariants are
// enforced here: a rejected value leaves the form untouched.
func (h *Handler) SetField(c *gin.Context) {
	var req struct {
		Campo string `json:"campo"`
		Valor string `json:"valor"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"erro": "Corpo da requisição inválido."})
		return
	}

	h.withSession(c, func(s *session.Session) {
		if err := s.Controller.SetField(req.Campo, req.Valor); err != nil {
			s.Notices.Error(err.Error())
			h.respond(c, http.StatusUnprocessableEntity, s)
			return
		}
		h.respond(c, http.StatusOK, s)
	})
}

// Search handles POST /api/sessoes/:id/busca.
func (h *Handler) Search(c *gin.Context) {
	var req struct {
		Campo string `json:"campo"`
		Valor string `json:"valor"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"erro": "Corpo da requisição inválido."})
		return
	}

	h.withSession(c, func(s *session.Session) {
		s.Controller.Search(c.Request.Context(), req.Campo, req.Valor)
		h.respond(c, http.StatusOK, s)
	})
}

// ResolveConflict handles POST /api/sessoes/:id/conflito.
func (h *Handler) ResolveConflict(c *gin.Context) {
	var req struct {
		Confirmar bool `json:"confirmar"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"erro": "Corpo da requisição inválido."})
		return
	}

	h.withSession(c, func(s *session.Session) {
		if err := s.Controller.ResolveConflict(req.Confirmar); err != nil {
			s.Notices.Error(err.Error())
			h.respond(c, http.StatusUnprocessableEntity, s)
			return
		}
		h.respond(c, http.StatusOK, s)
	})
}

// SetRowQuantity handles PUT /api/sessoes/:id/linhas.
func (h *Handler) SetRowQuantity(c *gin.Context) {
	var req struct {
		NumeroOS   int    `json:"numero_os"`
		Divisao    int    `json:"divisao"`
		Quantidade string `json:"quantidade"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"erro": "Corpo da requisição inválido."})
		return
	}

	h.withSession(c, func(s *session.Session) {
		if err := s.Controller.SetRowQuantity(req.NumeroOS, req.Divisao, req.Quantidade); err != nil {
			s.Notices.Error(err.Error())
			h.respond(c, http.StatusUnprocessableEntity, s)
			return
		}
		h.respond(c, http.StatusOK, s)
	})
}

// SetDateTime handles POST /api/sessoes/:id/horario.
func (h *Handler) SetDateTime(c *gin.Context) {
	var req struct {
		DataHora string `json:"data_hora"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"erro": "Corpo da requisição inválido."})
		return
	}

	h.withSession(c, func(s *session.Session) {
		if err := s.Controller.SetCustomDateTime(c.Request.Context(), req.DataHora); err != nil {
			s.Notices.Error(err.Error())
			h.respond(c, http.StatusUnprocessableEntity, s)
			return
		}
		h.respond(c, http.StatusOK, s)
	})
}

// Submit handles POST /api/sessoes/:id/salvar.
func (h *Handler) Submit(c *gin.Context) {
	h.withSession(c, func(s *session.Session) {
		salvo := s.Controller.Submit(c.Request.Context())
		status := http.StatusOK
		if !salvo {
			status = http.StatusUnprocessableEntity
		}
		h.respond(c, status, s)
	})
}

// Cancel handles POST /api/sessoes/:id/cancelar.
func (h *Handler) Cancel(c *gin.Context) {
	h.withSession(c, func(s *session.Session) {
		s.Controller.Cancel()
		h.respond(c, http.StatusOK, s)
	})
}
