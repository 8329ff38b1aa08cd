package lookup

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"clt400tt-terminal/internal/colet"
	"clt400tt-terminal/internal/notify"
)

// Servico is a service as returned by the backend.
type Servico struct {
	CodigoServico string `json:"codigo_servico"`
	Descricao     string `json:"descricao"`
	Situacao      string `json:"situacao"`
}

// ServicoService looks services up by code.
type ServicoService struct {
	c *colet.Client
}

// Search resolves a service code to its description.
func (s *ServicoService) Search(ctx context.Context, codigo string, n notify.Notifier) (*Servico, Result) {
	codigo = strings.TrimSpace(codigo)
	if codigo == "" {
		return nil, notFound("Informe o código do serviço.")
	}

	var raw json.RawMessage
	err := s.c.Get(ctx, "/servicos?codigo_servico="+url.QueryEscape(codigo), &raw)
	if err != nil {
		countLookup("servico", "error")
		mensagem := ErrorMessage(err, "Não foi possível consultar o serviço.")
		n.Error(mensagem)
		return nil, notFound(mensagem)
	}

	servico, err := firstOf[Servico](raw)
	if err != nil {
		countLookup("servico", "error")
		n.Error("Não foi possível consultar o serviço.")
		return nil, notFound("Não foi possível consultar o serviço.")
	}
	if servico == nil || (servico.Descricao == "" && servico.CodigoServico == "") {
		countLookup("servico", "not_found")
		return nil, notFound("Serviço não encontrado.")
	}

	countLookup("servico", "found")
	descricao := servico.Descricao
	if descricao == "" {
		descricao = "Serviço encontrado"
	}
	return servico, found(descricao)
}
