package lookup

import (
	"context"
	"net/url"
	"strings"

	"clt400tt-terminal/internal/colet"
	"clt400tt-terminal/internal/notify"
)

// Posto is a workstation as returned by the backend.
type Posto struct {
	CodigoPosto       string `json:"codigo_posto"`
	Descricao         string `json:"descricao"`
	Situacao          string `json:"situacao"`
	SituacaoDescricao string `json:"situacao_descricao"`
}

// PostoPossivel is one candidate workstation offered when the backend cannot
// resolve a single workstation for a work order.
type PostoPossivel struct {
	Codigo    string `json:"codigo"`
	Descricao string `json:"descricao"`
}

// PostoService looks workstations up by code.
type PostoService struct {
	c *colet.Client
}

// Search resolves a workstation code to its description. The /postos endpoint
// always answers with an array; the first element wins.
func (s *PostoService) Search(ctx context.Context, codigo string, n notify.Notifier) (*Posto, Result) {
	codigo = strings.TrimSpace(codigo)
	if codigo == "" {
		return nil, notFound("Informe o código do posto.")
	}

	var postos []Posto
	err := s.c.Get(ctx, "/postos?codigo_posto="+url.QueryEscape(codigo), &postos)
	if err != nil {
		countLookup("posto", "error")
		mensagem := ErrorMessage(err, "Não foi possível consultar o posto.")
		n.Error(mensagem)
		return nil, notFound(mensagem)
	}
	if len(postos) == 0 {
		countLookup("posto", "not_found")
		return nil, notFound("Posto não encontrado.")
	}

	countLookup("posto", "found")
	return &postos[0], found(postos[0].Descricao)
}
