package evento

import (
	"context"
	"errors"
	"strings"

	"clt400tt-terminal/internal/lookup"
	"clt400tt-terminal/internal/notify"
)

// EtapaController drives the step-result event (19): work order, service,
// operator and instrument are looked up independently, then a free-text result
// is recorded for the step.
type EtapaController struct {
	base

	numOS       string
	servico     string
	operador    string
	instrumento string
	resultado   string

	osRes          lookup.Result
	servicoRes     lookup.Result
	operadorRes    lookup.Result
	instrumentoRes lookup.Result
}

// NewEtapa builds the controller for event 19.
func NewEtapa(deps Deps, n notify.Notifier) Controller {
	return &EtapaController{base: newBase(deps, n, 19, "Resultado de Etapa")}
}

// Prefill only seeds the work-order field; the operator still triggers the
// lookup explicitly.
func (c *EtapaController) Prefill(_ context.Context, numeroOS string) {
	if strings.TrimSpace(numeroOS) == "" {
		return
	}
	c.numOS = strings.TrimSpace(numeroOS)
}

func (c *EtapaController) SetField(campo, valor string) error {
	switch campo {
	case "num_os":
		c.numOS = valor
		c.osRes = lookup.Result{}
	case "servico":
		c.servico = valor
		c.servicoRes = lookup.Result{}
	case "operador":
		c.operador = valor
		c.operadorRes = lookup.Result{}
	case "instrumento":
		c.instrumento = valor
		c.instrumentoRes = lookup.Result{}
	case "resultado":
		c.resultado = valor
	default:
		return errors.New("Campo inválido.")
	}
	return nil
}

func (c *EtapaController) Search(ctx context.Context, campo, valor string) {
	if err := c.SetField(campo, valor); err != nil {
		c.n.Error(err.Error())
		return
	}

	switch campo {
	case "num_os":
		c.osRes.Pending = true
		_, res := c.deps.Lookups.Ordem.Search(ctx, valor, c.n)
		c.osRes = res
	case "servico":
		c.servicoRes.Pending = true
		_, res := c.deps.Lookups.Servico.Search(ctx, valor, c.n)
		c.servicoRes = res
	case "operador":
		c.operadorRes.Pending = true
		_, res := c.deps.Lookups.Operador.Search(ctx, valor, c.n)
		c.operadorRes = res
	case "instrumento":
		c.instrumentoRes.Pending = true
		_, res := c.deps.Lookups.Instrumento.Search(ctx, valor, c.n)
		c.instrumentoRes = res
	default:
		c.n.Error("Campo inválido para pesquisa.")
	}
}

func (c *EtapaController) validate() []string {
	var erros []string

	if strings.TrimSpace(c.numOS) == "" {
		erros = append(erros, "O número da OS é obrigatório.")
	} else if !c.osRes.Found() {
		erros = append(erros, "É necessário pesquisar e encontrar uma OS válida.")
	}

	if strings.TrimSpace(c.servico) == "" {
		erros = append(erros, "O código do serviço é obrigatório.")
	} else if !c.servicoRes.Found() {
		erros = append(erros, "É necessário pesquisar e encontrar um serviço válido.")
	}

	if strings.TrimSpace(c.operador) == "" {
		erros = append(erros, "O código do operador é obrigatório.")
	} else if !c.operadorRes.Found() {
		erros = append(erros, "É necessário pesquisar e encontrar um operador válido.")
	}

	if strings.TrimSpace(c.instrumento) == "" {
		erros = append(erros, "O código do instrumento é obrigatório.")
	} else if !c.instrumentoRes.Found() {
		erros = append(erros, "É necessário pesquisar e encontrar um instrumento válido.")
	}

	if strings.TrimSpace(c.resultado) == "" {
		erros = append(erros, "Informe o resultado do serviço.")
	}

	return erros
}

func (c *EtapaController) Submit(ctx context.Context) bool {
	if erros := c.validate(); len(erros) > 0 {
		c.notifyValidation(erros)
		return false
	}

	c.salvando = true
	defer func() { c.salvando = false }()

	payload := map[string]any{
		"numero_os":          strings.TrimSpace(c.numOS),
		"codigo_servico":     strings.TrimSpace(c.servico),
		"codigo_pessoa":      strings.TrimSpace(c.operador),
		"codigo_instrumento": strings.TrimSpace(c.instrumento),
		"resultado":          strings.TrimSpace(c.resultado),
		"tipo_lcto":          "19",
	}
	mensagem, err := c.postLancamento(ctx, payload)
	if err != nil {
		c.n.Error(lookup.ErrorMessage(err, "Não foi possível salvar o resultado da etapa."))
		return false
	}

	c.notifySaved(mensagem)
	return true
}

func (c *EtapaController) Cancel() {
	c.numOS, c.servico, c.operador, c.instrumento, c.resultado = "", "", "", "", ""
	c.osRes, c.servicoRes, c.operadorRes, c.instrumentoRes = lookup.Result{}, lookup.Result{}, lookup.Result{}, lookup.Result{}
	c.dataHora = ""
	c.salvando = false
}

func (c *EtapaController) Snapshot() Snapshot {
	fase := PhaseIdle
	if c.osRes.Found() {
		fase = PhaseFound
	} else if c.osRes.Err != "" {
		fase = PhaseNotFound
	}

	return Snapshot{
		Evento: c.evento,
		Titulo: c.titulo,
		Fase:   fase.String(),
		Campos: map[string]string{
			"num_os":      c.numOS,
			"servico":     c.servico,
			"operador":    c.operador,
			"instrumento": c.instrumento,
			"resultado":   c.resultado,
		},
		Consultas: map[string]lookup.Result{
			"num_os":      c.osRes,
			"servico":     c.servicoRes,
			"operador":    c.operadorRes,
			"instrumento": c.instrumentoRes,
		},
		Referencia: c.osRes.Description,
		Erro:       c.osRes.Err,
		Salvando:   c.salvando,
		DataHora:   c.dataHora,
	}
}
