package lookup

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"clt400tt-terminal/internal/colet"
	"clt400tt-terminal/internal/notify"
)

// Operador is an operator as returned by the backend.
type Operador struct {
	CodigoPessoa string `json:"codigo_pessoa"`
	Nome         string `json:"nome"`
	Situacao     string `json:"situacao"`
}

// OperadorService looks operators up by personal code.
type OperadorService struct {
	c *colet.Client
}

// Search resolves an operator code to the operator's name. Transport failures
// are notified through n as well as reported in the Result.
func (s *OperadorService) Search(ctx context.Context, codigo string, n notify.Notifier) (*Operador, Result) {
	codigo = strings.TrimSpace(codigo)
	if codigo == "" {
		return nil, notFound("Informe o código do operador.")
	}

	var raw json.RawMessage
	err := s.c.Get(ctx, "/operadores?codigo_pessoa="+url.QueryEscape(codigo), &raw)
	if err != nil {
		countLookup("operador", "error")
		mensagem := ErrorMessage(err, "Não foi possível consultar o operador.")
		n.Error(mensagem)
		return nil, notFound(mensagem)
	}

	operador, err := firstOf[Operador](raw)
	if err != nil {
		countLookup("operador", "error")
		n.Error("Não foi possível consultar o operador.")
		return nil, notFound("Não foi possível consultar o operador.")
	}
	if operador == nil || (operador.Nome == "" && operador.CodigoPessoa == "") {
		countLookup("operador", "not_found")
		return nil, notFound("Operador não encontrado.")
	}

	countLookup("operador", "found")
	nome := operador.Nome
	if nome == "" {
		nome = "Operador encontrado"
	}
	return operador, found(nome)
}
