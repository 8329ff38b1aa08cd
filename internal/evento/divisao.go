package evento

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"clt400tt-terminal/internal/lookup"
	"clt400tt-terminal/internal/notify"
)

// DivisaoController drives the OS division event (13): a work order with
// available division balance is split, the quantity field only opening up once
// the balance lookup succeeded.
type DivisaoController struct {
	base

	numOS      string
	quantidade string

	saldo  *lookup.SaldoOS
	osRes  lookup.Result
	osBusy bool
}

// NewDivisao builds the controller for event 13.
func NewDivisao(deps Deps, n notify.Notifier) Controller {
	return &DivisaoController{base: newBase(deps, n, 13, "Divisão de OS")}
}

// Prefill seeds the work order and immediately resolves its balance, so a
// pre-selected OS lands on a ready form.
func (c *DivisaoController) Prefill(ctx context.Context, numeroOS string) {
	if strings.TrimSpace(numeroOS) == "" {
		return
	}
	c.Search(ctx, "num_os", numeroOS)
}

func (c *DivisaoController) SetField(campo, valor string) error {
	switch campo {
	case "num_os":
		if valor != c.numOS {
			c.saldo = nil
			c.osRes = lookup.Result{}
			c.quantidade = ""
		}
		c.numOS = valor
	case "quantidade":
		if c.saldo == nil {
			return errors.New("Pesquise a OS antes de informar a quantidade.")
		}
		c.quantidade = valor
	default:
		return errors.New("Campo inválido.")
	}
	return nil
}

func (c *DivisaoController) Search(ctx context.Context, campo, valor string) {
	if campo != "num_os" {
		c.n.Error("Campo inválido para pesquisa.")
		return
	}
	c.numOS = valor
	c.saldo = nil
	c.quantidade = ""
	c.osBusy = true
	c.osRes = lookup.Result{Pending: true}

	saldo, res := c.deps.Lookups.Ordem.SearchSaldo(ctx, valor, c.n)
	c.osBusy = false
	c.osRes = res
	if !res.Found() {
		// The operator retypes from scratch after a miss.
		c.numOS = ""
		return
	}
	c.saldo = saldo
}

func (c *DivisaoController) validate() []string {
	var erros []string

	if strings.TrimSpace(c.numOS) == "" {
		erros = append(erros, "O número da OS é obrigatório.")
	} else if c.saldo == nil {
		erros = append(erros, "É necessário pesquisar e encontrar dados válidos para a OS.")
	}

	if strings.TrimSpace(c.quantidade) == "" {
		erros = append(erros, "A quantidade é obrigatória.")
	} else {
		q, err := decimal.NewFromString(strings.TrimSpace(c.quantidade))
		switch {
		case err != nil || q.LessThanOrEqual(decimal.Zero):
			erros = append(erros, "A quantidade deve ser um número maior que zero.")
		case c.saldo != nil && q.GreaterThan(c.saldo.SaldoDivisoes):
			erros = append(erros, fmt.Sprintf("A quantidade não pode ser maior que o saldo disponível (%s).", c.saldo.SaldoDivisoes))
		}
	}

	return erros
}

func (c *DivisaoController) Submit(ctx context.Context) bool {
	if erros := c.validate(); len(erros) > 0 {
		c.notifyValidation(erros)
		return false
	}

	c.salvando = true
	defer func() { c.salvando = false }()

	payload := map[string]any{
		"evento":    "13",
		"numero_os": strings.TrimSpace(c.numOS),
		"divisao":   strconv.Itoa(c.saldo.UltimaDivisao),
	}
	mensagem, err := c.postLancamento(ctx, payload)
	if err != nil {
		c.n.Error(lookup.ErrorMessage(err, "Não foi possível salvar a divisão da OS."))
		return false
	}

	c.notifySaved(mensagem)
	return true
}

func (c *DivisaoController) Cancel() {
	c.numOS, c.quantidade = "", ""
	c.saldo = nil
	c.osRes = lookup.Result{}
	c.osBusy = false
	c.dataHora = ""
	c.salvando = false
}

func (c *DivisaoController) Snapshot() Snapshot {
	fase := PhaseIdle
	switch {
	case c.osBusy:
		fase = PhaseSearching
	case c.saldo != nil:
		fase = PhaseFound
	case c.osRes.Err != "":
		fase = PhaseNotFound
	}

	s := Snapshot{
		Evento: c.evento,
		Titulo: c.titulo,
		Fase:   fase.String(),
		Campos: map[string]string{
			"num_os":     c.numOS,
			"quantidade": c.quantidade,
		},
		Habilitados: map[string]bool{
			"quantidade": c.saldo != nil,
		},
		Consultas: map[string]lookup.Result{
			"num_os": c.osRes,
		},
		SaldoOS:  c.saldo,
		Salvando: c.salvando,
		DataHora: c.dataHora,
	}
	if c.saldo != nil {
		s.Referencia = c.osRes.Description
	} else if c.osRes.Err != "" {
		s.Erro = c.osRes.Err
	}
	return s
}
