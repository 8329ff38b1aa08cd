package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"clt400tt-terminal/internal/colet"
	"clt400tt-terminal/internal/notify"
)

// OrdemResumo is the lightweight work-order summary.
type OrdemResumo struct {
	NumeroOS  json.Number `json:"numero_os"`
	Cliente   string      `json:"cliente"`
	Descricao string      `json:"descricao"`
	Status    string      `json:"status"`
}

// OrdemCompleta is the detailed division breakdown for a work order, including
// the workstation resolution and priority-conflict annotations.
type OrdemCompleta struct {
	NumeroOS           int             `json:"numero_os"`
	QuantidadeOS       decimal.Decimal `json:"quantidade_os"`
	NumeroCarga        int             `json:"numero_carga,omitempty"`
	Posto              string          `json:"posto,omitempty"`
	DescricaoPosto     string          `json:"descricao_posto,omitempty"`
	PostosPossiveis    []PostoPossivel `json:"postos_possiveis,omitempty"`
	CargasPrioritarias string          `json:"cargas_prioritarias,omitempty"`
	Divisoes           []Linha         `json:"divisoes"`
}

// SaldoOS is the division-balance view of a work order used by the OS
// division event.
type SaldoOS struct {
	NumeroOS      int             `json:"numero_os"`
	QuantidadeOS  decimal.Decimal `json:"quantidade_os"`
	UltimaDivisao int             `json:"ultima_divisao"`
	SaldoDivisoes decimal.Decimal `json:"saldo_divisoes"`
}

// OrdemService looks work orders up in their several shapes.
type OrdemService struct {
	c *colet.Client
}

// Search is the lightweight variant: first match from /ordens, summary fields
// only.
func (s *OrdemService) Search(ctx context.Context, numero string, n notify.Notifier) (*OrdemResumo, Result) {
	numero = strings.TrimSpace(numero)
	if numero == "" {
		return nil, notFound("Informe o número da OS para pesquisar.")
	}

	var raw json.RawMessage
	err := s.c.Get(ctx, "/ordens?numero_os="+url.QueryEscape(numero), &raw)
	if err != nil {
		countLookup("ordem", "error")
		mensagem := ErrorMessage(err, "Não foi possível consultar a OS.")
		n.Error(mensagem)
		return nil, notFound(mensagem)
	}

	ordem, err := firstOf[OrdemResumo](raw)
	if err != nil {
		countLookup("ordem", "error")
		n.Error("Não foi possível consultar a OS.")
		return nil, notFound("Não foi possível consultar a OS.")
	}
	if ordem == nil {
		countLookup("ordem", "not_found")
		return nil, notFound("Nenhuma informação encontrada para a OS informada.")
	}

	countLookup("ordem", "found")
	referencia := fmt.Sprintf("OS %s", ordem.NumeroOS)
	if ordem.NumeroOS == "" {
		referencia = "OS " + numero
	}
	return ordem, found(referencia)
}

// SearchCompleta is the complete variant: the OS-centric division listing with
// workstation resolution, candidate list and priority-conflict text. The
// division lines come back stamped with the parent work-order number.
func (s *OrdemService) SearchCompleta(ctx context.Context, numero string, n notify.Notifier) (*OrdemCompleta, Result) {
	numero = strings.TrimSpace(numero)
	if numero == "" {
		return nil, notFound("Informe o número da OS para pesquisar.")
	}

	var resposta OrdemCompleta
	err := s.c.Get(ctx, "/cargas?numero_os="+url.QueryEscape(numero), &resposta)
	if err != nil {
		countLookup("ordem_completa", "error")
		mensagem := ErrorMessage(err, "Não foi possível consultar a OS.")
		n.Error(mensagem)
		return nil, notFound(mensagem)
	}

	for i := range resposta.Divisoes {
		resposta.Divisoes[i].NumeroOS = resposta.NumeroOS
	}

	referencia := fmt.Sprintf("OS %d", resposta.NumeroOS)
	if len(resposta.Divisoes) == 0 {
		countLookup("ordem_completa", "not_found")
		return &resposta, notFound("Nenhuma divisão encontrada para a OS informada.")
	}

	countLookup("ordem_completa", "found")
	return &resposta, found(referencia)
}

// SearchSaldo is the division-balance variant. A zero balance is treated as
// not found: the event that consumes it cannot proceed without balance.
func (s *OrdemService) SearchSaldo(ctx context.Context, numero string, n notify.Notifier) (*SaldoOS, Result) {
	numero = strings.TrimSpace(numero)
	if numero == "" {
		return nil, notFound("Informe o número da OS para pesquisar.")
	}

	var saldo *SaldoOS
	err := s.c.Get(ctx, "/ordens?numero_os="+url.QueryEscape(numero), &saldo)
	if err != nil {
		countLookup("ordem_saldo", "error")
		mensagem := ErrorMessage(err, "Não foi possível consultar a OS.")
		n.Error(mensagem)
		return nil, notFound(mensagem)
	}
	if saldo == nil {
		countLookup("ordem_saldo", "not_found")
		return nil, notFound("Nenhuma informação encontrada para a OS informada.")
	}
	if saldo.SaldoDivisoes.IsZero() {
		countLookup("ordem_saldo", "not_found")
		n.Error("OS não possui saldo disponível")
		return nil, notFound("OS não possui saldo disponível")
	}

	countLookup("ordem_saldo", "found")
	return saldo, found(fmt.Sprintf("OS %d", saldo.NumeroOS))
}

// Detalhada fetches the full work-order consultation (completo=S), optionally
// scoped to one event code. Used by the pre-selection modal, not by the forms.
func (s *OrdemService) Detalhada(ctx context.Context, numero string, evento int) (json.RawMessage, error) {
	path := "/ordens?numero_os=" + url.QueryEscape(strings.TrimSpace(numero)) + "&completo=S"
	if evento > 0 {
		path += fmt.Sprintf("&evento=%d", evento)
	}
	var raw json.RawMessage
	if err := s.c.Get(ctx, path, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
