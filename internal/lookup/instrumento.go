package lookup

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"clt400tt-terminal/internal/colet"
	"clt400tt-terminal/internal/notify"
)

// Instrumento is a measurement instrument as returned by the backend.
type Instrumento struct {
	CodigoInstrumento string `json:"codigo_instrumento"`
	Descricao         string `json:"descricao"`
	Situacao          string `json:"situacao"`
}

// InstrumentoService looks instruments up by code.
type InstrumentoService struct {
	c *colet.Client
}

// Search resolves an instrument code to its description.
func (s *InstrumentoService) Search(ctx context.Context, codigo string, n notify.Notifier) (*Instrumento, Result) {
	codigo = strings.TrimSpace(codigo)
	if codigo == "" {
		return nil, notFound("Informe o código do instrumento.")
	}

	var raw json.RawMessage
	err := s.c.Get(ctx, "/instrumentos?codigo_instrumento="+url.QueryEscape(codigo), &raw)
	if err != nil {
		countLookup("instrumento", "error")
		mensagem := ErrorMessage(err, "Não foi possível consultar o instrumento.")
		n.Error(mensagem)
		return nil, notFound(mensagem)
	}

	instrumento, err := firstOf[Instrumento](raw)
	if err != nil {
		countLookup("instrumento", "error")
		n.Error("Não foi possível consultar o instrumento.")
		return nil, notFound("Não foi possível consultar o instrumento.")
	}
	if instrumento == nil || (instrumento.Descricao == "" && instrumento.CodigoInstrumento == "") {
		countLookup("instrumento", "not_found")
		return nil, notFound("Instrumento não encontrado.")
	}

	countLookup("instrumento", "found")
	descricao := instrumento.Descricao
	if descricao == "" {
		descricao = "Instrumento encontrado"
	}
	return instrumento, found(descricao)
}
