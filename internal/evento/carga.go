package evento

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"clt400tt-terminal/internal/lookup"
	"clt400tt-terminal/internal/notify"
)

// CargaController drives the load start/end events (10 and 15). The form has
// two mutually exclusive primary search keys (load number and work-order
// number), operator and workstation fields, and a result table whose
// quantities can be adjusted in place before submission.
type CargaController struct {
	base

	numCarga string
	numOS    string
	operador string
	posto    string

	operadorRes lookup.Result
	postoRes    lookup.Result

	// Workstation resolution coming from an OS search: either auto-resolved,
	// or a candidate list the operator must pick from.
	postoAuto       bool
	postosPossiveis []lookup.PostoPossivel

	numeroCarga int // backend-resolved load number for an OS search

	search searchState

	// Quantity overrides, keyed by (work order, division). The fetched values
	// stay untouched; a row without an entry uses its original quantity.
	overrides map[RowKey]decimal.Decimal
}

// NewCarga builds the controller for event 10 (load start) or 15 (load end).
func NewCarga(deps Deps, n notify.Notifier, ev int) Controller {
	titulo := "Início de Carga"
	if ev == 15 {
		titulo = "Término de Carga"
	}
	return &CargaController{
		base:      newBase(deps, n, ev, titulo),
		search:    idleState(),
		overrides: make(map[RowKey]decimal.Decimal),
	}
}

func (c *CargaController) Prefill(_ context.Context, numeroOS string) {
	if strings.TrimSpace(numeroOS) == "" {
		return
	}
	c.numOS = strings.TrimSpace(numeroOS)
	c.search = idleState()
}

func (c *CargaController) SetField(campo, valor string) error {
	switch campo {
	case "num_carga":
		if strings.TrimSpace(valor) != "" && strings.TrimSpace(c.numOS) != "" {
			return errors.New("Informe apenas um dos campos: número da carga ou número da OS.")
		}
		if valor != c.numCarga {
			c.resetSearch()
		}
		c.numCarga = valor
	case "num_os":
		if strings.TrimSpace(valor) != "" && strings.TrimSpace(c.numCarga) != "" {
			return errors.New("Informe apenas um dos campos: número da carga ou número da OS.")
		}
		if valor != c.numOS {
			c.resetSearch()
		}
		c.numOS = valor
	case "operador":
		c.operador = valor
		c.operadorRes = lookup.Result{}
	case "posto":
		c.posto = valor
		c.postoAuto = false
		c.postoRes = lookup.Result{}
		// A value picked from the candidate list is already resolved.
		for _, p := range c.postosPossiveis {
			if p.Codigo == valor {
				c.postoRes = lookup.Result{Description: p.Descricao}
				break
			}
		}
	default:
		return errors.New("Campo inválido.")
	}
	return nil
}

func (c *CargaController) Search(ctx context.Context, campo, valor string) {
	if err := c.SetField(campo, valor); err != nil {
		c.n.Error(err.Error())
		return
	}

	switch campo {
	case "num_carga":
		c.search = searchingState()
		carga, res := c.deps.Lookups.Carga.Search(ctx, valor, c.n)
		if !res.Found() {
			c.search = notFoundState(res.Err)
			return
		}
		c.search = foundState(carga.OSs, res.Description)
		c.numeroCarga = carga.NumeroCarga
		c.overrides = make(map[RowKey]decimal.Decimal)

	case "num_os":
		c.search = searchingState()
		ordem, res := c.deps.Lookups.Ordem.SearchCompleta(ctx, valor, c.n)
		if !res.Found() {
			c.search = notFoundState(res.Err)
			return
		}
		if ordem.CargasPrioritarias != "" {
			// Other loads should be produced first. The result is held back
			// until the operator decides.
			c.search = conflictState(&conflito{
				cargasPrioritarias: ordem.CargasPrioritarias,
				pend: pendingResult{
					linhas:          ordem.Divisoes,
					referencia:      res.Description,
					posto:           ordem.Posto,
					descricaoPosto:  ordem.DescricaoPosto,
					postosPossiveis: ordem.PostosPossiveis,
					numeroCarga:     ordem.NumeroCarga,
				},
			})
			return
		}
		c.apply(pendingResult{
			linhas:          ordem.Divisoes,
			referencia:      res.Description,
			posto:           ordem.Posto,
			descricaoPosto:  ordem.DescricaoPosto,
			postosPossiveis: ordem.PostosPossiveis,
			numeroCarga:     ordem.NumeroCarga,
		})

	case "operador":
		c.operadorRes.Pending = true
		_, res := c.deps.Lookups.Operador.Search(ctx, valor, c.n)
		c.operadorRes = res

	case "posto":
		if len(c.postosPossiveis) > 0 {
			c.n.Error("Selecione um posto de trabalho da lista de postos possíveis.")
			return
		}
		c.postoRes.Pending = true
		_, res := c.deps.Lookups.Posto.Search(ctx, valor, c.n)
		c.postoRes = res

	default:
		c.n.Error("Campo inválido para pesquisa.")
	}
}

// apply commits a search outcome into the form, including the workstation
// resolution side effect.
func (c *CargaController) apply(r pendingResult) {
	c.search = foundState(r.linhas, r.referencia)
	c.numeroCarga = r.numeroCarga
	c.overrides = make(map[RowKey]decimal.Decimal)

	if r.posto != "" {
		c.posto = r.posto
		c.postoRes = lookup.Result{Description: r.descricaoPosto}
		c.postoAuto = true
		c.postosPossiveis = nil
		return
	}
	c.postoAuto = false
	c.postosPossiveis = r.postosPossiveis
	if len(r.postosPossiveis) > 0 {
		// Free text is no longer acceptable; the operator must pick.
		c.posto = ""
		c.postoRes = lookup.Result{}
	}
}

func (c *CargaController) ResolveConflict(confirmar bool) error {
	if c.search.phase != PhaseConflict {
		return errors.New("Não há conflito de prioridade pendente.")
	}
	if confirmar {
		c.apply(c.search.conflito.pend)
		return nil
	}
	// Declined: discard all search state, keep the typed fields.
	c.resetSearch()
	return nil
}

func (c *CargaController) SetRowQuantity(numeroOS, divisao int, quantidade string) error {
	if c.search.phase != PhaseFound {
		return errors.New("Pesquise uma carga ou OS antes de ajustar quantidades.")
	}
	key := RowKey{NumeroOS: numeroOS, Divisao: divisao}
	var original *decimal.Decimal
	for i := range c.search.linhas {
		l := &c.search.linhas[i]
		if l.NumeroOS == numeroOS && l.Divisao == divisao {
			original = &l.Quantidade
			break
		}
	}
	if original == nil {
		return errors.New("Divisão não encontrada.")
	}

	q, err := decimal.NewFromString(strings.TrimSpace(quantidade))
	if err != nil || q.LessThanOrEqual(decimal.Zero) {
		return errors.New("A quantidade deve ser um número maior que zero.")
	}

	if q.Equal(*original) {
		// Back to the fetched value: drop the override.
		delete(c.overrides, key)
		return nil
	}
	c.overrides[key] = q
	return nil
}

// quantity returns the effective quantity for a line.
func (c *CargaController) quantity(l lookup.Linha) decimal.Decimal {
	if q, ok := c.overrides[RowKey{NumeroOS: l.NumeroOS, Divisao: l.Divisao}]; ok {
		return q
	}
	return l.Quantidade
}

// validate evaluates every rule; all violations are reported together.
func (c *CargaController) validate() []string {
	var erros []string

	temCarga := strings.TrimSpace(c.numCarga) != ""
	temOS := strings.TrimSpace(c.numOS) != ""

	if !temCarga && !temOS {
		erros = append(erros, "Informe o número da carga ou da OS.")
	} else if c.search.phase != PhaseFound || len(c.search.linhas) == 0 {
		if temCarga {
			erros = append(erros, "É necessário pesquisar e encontrar dados válidos para a carga.")
		} else {
			erros = append(erros, "É necessário pesquisar e encontrar dados válidos para a OS.")
		}
	}

	if strings.TrimSpace(c.operador) == "" {
		erros = append(erros, "O código do operador é obrigatório.")
	} else if !c.operadorRes.Found() {
		erros = append(erros, "É necessário pesquisar e encontrar dados válidos para o operador.")
	}

	switch {
	case c.postoAuto:
		// Auto-resolved by the backend; nothing to check.
	case len(c.postosPossiveis) > 0:
		if !c.postoFromCandidates() {
			erros = append(erros, "Selecione um posto de trabalho válido da lista.")
		}
	case strings.TrimSpace(c.posto) == "":
		erros = append(erros, "O código do posto de trabalho é obrigatório.")
	case !c.postoRes.Found():
		erros = append(erros, "É necessário pesquisar e encontrar dados válidos para o posto.")
	}

	return erros
}

func (c *CargaController) postoFromCandidates() bool {
	for _, p := range c.postosPossiveis {
		if p.Codigo == c.posto {
			return true
		}
	}
	return false
}

func (c *CargaController) Submit(ctx context.Context) bool {
	if erros := c.validate(); len(erros) > 0 {
		c.notifyValidation(erros)
		return false
	}

	c.salvando = true
	defer func() { c.salvando = false }()

	// Quantity adjustments go first; the transactions are only posted once
	// the backend accepted them.
	if len(c.overrides) > 0 {
		if err := c.deps.Client.Patch(ctx, "/divisao", c.ajustes(), nil); err != nil {
			c.n.Error(lookup.ErrorMessage(err, "Não foi possível ajustar as quantidades das divisões."))
			return false
		}
	}

	evento := strconv.Itoa(c.evento)
	var mensagem string
	if len(c.search.linhas) > 0 {
		for _, linha := range c.search.linhas {
			payload := map[string]any{
				"evento":    evento,
				"numero_os": linha.NumeroOS,
				"divisao":   linha.Divisao,
				"posto":     strings.TrimSpace(c.posto),
				"operador":  strings.TrimSpace(c.operador),
			}
			if c.numeroCarga != 0 {
				payload["numero_carga"] = c.numeroCarga
			}
			m, err := c.postLancamento(ctx, payload)
			if err != nil {
				c.n.Error(lookup.ErrorMessage(err, "Não foi possível salvar o evento."))
				return false
			}
			mensagem = m
		}
	} else {
		payload := map[string]any{
			"evento":   evento,
			"posto":    strings.TrimSpace(c.posto),
			"operador": strings.TrimSpace(c.operador),
		}
		if c.numeroCarga != 0 {
			payload["numero_carga"] = c.numeroCarga
		}
		m, err := c.postLancamento(ctx, payload)
		if err != nil {
			c.n.Error(lookup.ErrorMessage(err, "Não foi possível salvar o evento."))
			return false
		}
		mensagem = m
	}

	// Only a fully successful sequence clears the overrides.
	c.overrides = make(map[RowKey]decimal.Decimal)
	c.notifySaved(mensagem)
	return true
}

// ajustes builds the bulk quantity-override payload in a stable order.
func (c *CargaController) ajustes() []map[string]any {
	keys := make([]RowKey, 0, len(c.overrides))
	for k := range c.overrides {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].NumeroOS != keys[j].NumeroOS {
			return keys[i].NumeroOS < keys[j].NumeroOS
		}
		return keys[i].Divisao < keys[j].Divisao
	})

	out := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, map[string]any{
			"numero_os":  k.NumeroOS,
			"divisao":    k.Divisao,
			"quantidade": c.overrides[k],
		})
	}
	return out
}

func (c *CargaController) Cancel() {
	c.numCarga, c.numOS, c.operador, c.posto = "", "", "", ""
	c.operadorRes, c.postoRes = lookup.Result{}, lookup.Result{}
	c.resetSearch()
	c.dataHora = ""
	c.salvando = false
}

// resetSearch discards everything a search produced.
func (c *CargaController) resetSearch() {
	c.search = idleState()
	c.numeroCarga = 0
	c.overrides = make(map[RowKey]decimal.Decimal)
	c.postosPossiveis = nil
	if c.postoAuto {
		c.posto = ""
		c.postoRes = lookup.Result{}
		c.postoAuto = false
	}
}

func (c *CargaController) Snapshot() Snapshot {
	s := Snapshot{
		Evento: c.evento,
		Titulo: c.titulo,
		Fase:   c.search.phase.String(),
		Campos: map[string]string{
			"num_carga": c.numCarga,
			"num_os":    c.numOS,
			"operador":  c.operador,
			"posto":     c.posto,
		},
		Habilitados: map[string]bool{
			"num_carga": strings.TrimSpace(c.numOS) == "",
			"num_os":    strings.TrimSpace(c.numCarga) == "",
		},
		Consultas: map[string]lookup.Result{
			"operador": c.operadorRes,
			"posto":    c.postoRes,
		},
		PostosPossiveis: c.postosPossiveis,
		Salvando:        c.salvando,
		DataHora:        c.dataHora,
	}

	switch c.search.phase {
	case PhaseFound:
		s.Referencia = c.search.referencia
		s.Linhas = make([]LinhaView, 0, len(c.search.linhas))
		for _, l := range c.search.linhas {
			key := RowKey{NumeroOS: l.NumeroOS, Divisao: l.Divisao}
			_, ajustada := c.overrides[key]
			s.Linhas = append(s.Linhas, LinhaView{
				NumeroOS:           l.NumeroOS,
				Divisao:            l.Divisao,
				Quantidade:         c.quantity(l),
				QuantidadeOriginal: l.Quantidade,
				Ajustada:           ajustada,
			})
		}
	case PhaseNotFound:
		s.Erro = c.search.erro
	case PhaseConflict:
		s.CargasPrioritarias = c.search.conflito.cargasPrioritarias
	}
	return s
}
