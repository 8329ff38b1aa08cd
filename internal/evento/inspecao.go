package evento

import (
	"context"
	"errors"
	"strings"

	"clt400tt-terminal/internal/lookup"
	"clt400tt-terminal/internal/notify"
)

// InspecaoController drives the inspection start event (18): the work order
// resolves to a list of programmed inspection services, one of which must be
// picked before the operator field opens up.
type InspecaoController struct {
	base

	numOS    string
	servico  string
	operador string

	servicos []lookup.ServicoInspecao
	osRes    lookup.Result
	osBusy   bool

	operadorRes lookup.Result
}

// NewInspecao builds the controller for event 18.
func NewInspecao(deps Deps, n notify.Notifier) Controller {
	return &InspecaoController{base: newBase(deps, n, 18, "Início de Inspeção")}
}

// Prefill seeds the work order and loads its inspection services right away.
func (c *InspecaoController) Prefill(ctx context.Context, numeroOS string) {
	if strings.TrimSpace(numeroOS) == "" {
		return
	}
	c.Search(ctx, "num_os", numeroOS)
}

func (c *InspecaoController) SetField(campo, valor string) error {
	switch campo {
	case "num_os":
		if valor != c.numOS {
			c.servicos = nil
			c.osRes = lookup.Result{}
			c.servico = ""
			c.operador = ""
			c.operadorRes = lookup.Result{}
		}
		c.numOS = valor
	case "servico":
		if len(c.servicos) == 0 {
			return errors.New("Pesquise a OS antes de selecionar o serviço.")
		}
		c.servico = valor
	case "operador":
		if c.selected() == nil {
			return errors.New("Selecione um serviço antes de informar o operador.")
		}
		c.operador = valor
		c.operadorRes = lookup.Result{}
	default:
		return errors.New("Campo inválido.")
	}
	return nil
}

func (c *InspecaoController) Search(ctx context.Context, campo, valor string) {
	switch campo {
	case "num_os":
		c.numOS = valor
		c.servicos = nil
		c.servico = ""
		c.operador = ""
		c.operadorRes = lookup.Result{}
		c.osBusy = true
		c.osRes = lookup.Result{Pending: true}

		servicos, res := c.deps.Lookups.Inspecao.Search(ctx, valor, c.n)
		c.osBusy = false
		c.osRes = res
		if !res.Found() {
			return
		}
		c.servicos = servicos

	case "operador":
		if err := c.SetField("operador", valor); err != nil {
			c.n.Error(err.Error())
			return
		}
		c.operadorRes.Pending = true
		_, res := c.deps.Lookups.Operador.Search(ctx, valor, c.n)
		c.operadorRes = res

	default:
		c.n.Error("Campo inválido para pesquisa.")
	}
}

// selected resolves the chosen label back to its inspection service.
func (c *InspecaoController) selected() *lookup.ServicoInspecao {
	for i := range c.servicos {
		if c.servicos[i].Rotulo() == c.servico {
			return &c.servicos[i]
		}
	}
	return nil
}

func (c *InspecaoController) validate() []string {
	var erros []string

	if strings.TrimSpace(c.numOS) == "" {
		erros = append(erros, "O número da OS é obrigatório.")
	} else if len(c.servicos) == 0 {
		erros = append(erros, "É necessário pesquisar e encontrar serviços válidos para a OS.")
	}

	if strings.TrimSpace(c.servico) == "" {
		erros = append(erros, "O serviço é obrigatório.")
	} else if len(c.servicos) > 0 && c.selected() == nil {
		erros = append(erros, "É necessário selecionar um serviço válido da lista.")
	}

	if strings.TrimSpace(c.operador) == "" {
		erros = append(erros, "O código do operador é obrigatório.")
	} else if !c.operadorRes.Found() {
		erros = append(erros, "É necessário pesquisar e encontrar dados válidos para o operador.")
	}

	return erros
}

func (c *InspecaoController) Submit(ctx context.Context) bool {
	if erros := c.validate(); len(erros) > 0 {
		c.notifyValidation(erros)
		return false
	}

	c.salvando = true
	defer func() { c.salvando = false }()

	servico := c.selected()
	payload := map[string]any{
		"evento":             "18",
		"numero_os":          strings.TrimSpace(c.numOS),
		"sequencial_servico": servico.SequencialServico,
		"codigo_operador":    strings.TrimSpace(c.operador),
	}
	mensagem, err := c.postLancamento(ctx, payload)
	if err != nil {
		c.n.Error(lookup.ErrorMessage(err, "Não foi possível salvar o início de inspeção."))
		return false
	}

	c.notifySaved(mensagem)
	return true
}

func (c *InspecaoController) Cancel() {
	c.numOS, c.servico, c.operador = "", "", ""
	c.servicos = nil
	c.osRes, c.operadorRes = lookup.Result{}, lookup.Result{}
	c.osBusy = false
	c.dataHora = ""
	c.salvando = false
}

func (c *InspecaoController) Snapshot() Snapshot {
	fase := PhaseIdle
	switch {
	case c.osBusy:
		fase = PhaseSearching
	case len(c.servicos) > 0:
		fase = PhaseFound
	case c.osRes.Err != "":
		fase = PhaseNotFound
	}

	s := Snapshot{
		Evento: c.evento,
		Titulo: c.titulo,
		Fase:   fase.String(),
		Campos: map[string]string{
			"num_os":   c.numOS,
			"servico":  c.servico,
			"operador": c.operador,
		},
		Habilitados: map[string]bool{
			"servico":  len(c.servicos) > 0,
			"operador": c.selected() != nil,
		},
		Consultas: map[string]lookup.Result{
			"num_os":   c.osRes,
			"operador": c.operadorRes,
		},
		ServicosInspecao: c.servicos,
		Salvando:         c.salvando,
		DataHora:         c.dataHora,
	}
	if len(c.servicos) > 0 {
		s.Referencia = c.osRes.Description
	} else if c.osRes.Err != "" {
		s.Erro = c.osRes.Err
	}
	return s
}
