package lookup

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"clt400tt-terminal/internal/colet"
	"clt400tt-terminal/internal/notify"
)

// ServicoInspecao is one inspection service programmed for a work order.
type ServicoInspecao struct {
	SequencialServico int    `json:"sequencial_servico"`
	TipoServico       string `json:"tipo_servico"`
	DescricaoServico  string `json:"descricao_servico"`
	CodigoProcesso    int    `json:"codigo_processo"`
	DescricaoProcesso string `json:"descricao_processo"`
	UnidadeMedida     string `json:"unidade_medida"`
	Programar         string `json:"programar"`
}

// Rotulo is the display label the selection control shows for the service.
func (s ServicoInspecao) Rotulo() string {
	return fmt.Sprintf("%d - %s", s.SequencialServico, s.DescricaoServico)
}

// InspecaoService lists the inspection services of a work order.
type InspecaoService struct {
	c *colet.Client
}

// Search fetches the inspection services for the given work order.
func (s *InspecaoService) Search(ctx context.Context, numeroOS string, n notify.Notifier) ([]ServicoInspecao, Result) {
	numeroOS = strings.TrimSpace(numeroOS)
	if numeroOS == "" {
		return nil, notFound("Número da OS é obrigatório")
	}

	var servicos []ServicoInspecao
	err := s.c.Get(ctx, "/servicos_inspecao?numero_os="+url.QueryEscape(numeroOS), &servicos)
	if err != nil {
		countLookup("servico_inspecao", "error")
		mensagem := ErrorMessage(err, "Erro ao buscar serviços de inspeção")
		n.Error("Erro ao buscar:\n" + mensagem)
		return nil, notFound(mensagem)
	}
	if len(servicos) == 0 {
		countLookup("servico_inspecao", "not_found")
		return nil, notFound("Nenhum serviço de inspeção encontrado para esta OS")
	}

	countLookup("servico_inspecao", "found")
	referencia := fmt.Sprintf("OS %s - %d serviço(s) encontrado(s)", numeroOS, len(servicos))
	return servicos, found(referencia)
}
