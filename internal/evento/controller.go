// Package evento implements one form controller per transaction type. A
// controller owns the form's fields, runs the lookups the operator triggers,
// validates the aggregate state in full, and drives the submission sequence
// against the backend. Controllers are not safe for concurrent use; the
// session layer serializes access.
package evento

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"clt400tt-terminal/internal/colet"
	"clt400tt-terminal/internal/lookup"
	"clt400tt-terminal/internal/metrics"
	"clt400tt-terminal/internal/notify"
	"clt400tt-terminal/internal/settings"
)

// Deps are the collaborators every controller receives.
type Deps struct {
	Client   *colet.Client
	Lookups  *lookup.Services
	Settings *settings.Cache
	Log      zerolog.Logger
}

// ErrUnsupported is returned by operations a given event form does not have.
var ErrUnsupported = errors.New("operação não suportada para este evento")

// Controller is the uniform surface of every event form.
type Controller interface {
	Evento() int
	Titulo() string

	// Prefill seeds the form from a pre-selected work order.
	Prefill(ctx context.Context, numeroOS string)

	// SetField stores one field value, enforcing cross-field invariants.
	SetField(campo, valor string) error

	// Search sets the field and runs its lookup.
	Search(ctx context.Context, campo, valor string)

	// SetRowQuantity overrides one division line's quantity in place.
	SetRowQuantity(numeroOS, divisao int, quantidade string) error

	// ResolveConflict settles a pending priority conflict.
	ResolveConflict(confirmar bool) error

	// SetCustomDateTime records a manual timestamp override. Only accepted
	// when the company settings enable it.
	SetCustomDateTime(ctx context.Context, dataHora string) error

	// Submit validates the whole form and, when clean, posts the
	// transaction(s). Reports whether the submission went through.
	Submit(ctx context.Context) bool

	// Cancel resets all local state to initial values.
	Cancel()

	Snapshot() Snapshot
}

// Snapshot is the controller state as rendered by the terminal page.
type Snapshot struct {
	Evento             int                      `json:"evento"`
	Titulo             string                   `json:"titulo"`
	Fase               string                   `json:"fase"`
	Campos             map[string]string        `json:"campos"`
	Habilitados        map[string]bool          `json:"habilitados,omitempty"`
	Consultas          map[string]lookup.Result `json:"consultas,omitempty"`
	Linhas             []LinhaView              `json:"linhas,omitempty"`
	Referencia         string                   `json:"referencia,omitempty"`
	Erro               string                   `json:"erro,omitempty"`
	PostosPossiveis    []lookup.PostoPossivel   `json:"postos_possiveis,omitempty"`
	CargasPrioritarias string                   `json:"cargas_prioritarias,omitempty"`
	SaldoOS            *lookup.SaldoOS          `json:"saldo_os,omitempty"`
	ServicosInspecao   []lookup.ServicoInspecao `json:"servicos_inspecao,omitempty"`
	Salvando           bool                     `json:"salvando"`
	DataHora           string                   `json:"data_hora,omitempty"`
}

// base carries what all controllers share.
type base struct {
	deps   Deps
	n      notify.Notifier
	evento int
	titulo string

	salvando bool
	dataHora string
}

func newBase(deps Deps, n notify.Notifier, evento int, titulo string) base {
	return base{deps: deps, n: n, evento: evento, titulo: titulo}
}

func (b *base) Evento() int    { return b.evento }
func (b *base) Titulo() string { return b.titulo }

// Default implementations for operations most forms do not have.
func (b *base) SetRowQuantity(int, int, string) error { return ErrUnsupported }
func (b *base) ResolveConflict(bool) error            { return ErrUnsupported }

// SetCustomDateTime accepts a manual timestamp when the company settings allow
// overriding it.
func (b *base) SetCustomDateTime(ctx context.Context, dataHora string) error {
	parametros, err := b.deps.Settings.Get(ctx)
	if err != nil {
		return errors.New("Não foi possível carregar os parâmetros da empresa.")
	}
	if !parametros.AlteraData {
		return errors.New("Ajuste de horário não habilitado para a empresa.")
	}
	if dataHora == "" {
		b.dataHora = ""
		return nil
	}
	if _, err := time.Parse(time.RFC3339, dataHora); err != nil {
		if _, err := time.Parse("2006-01-02T15:04", dataHora); err != nil {
			return errors.New("Data/hora inválida.")
		}
	}
	b.dataHora = dataHora
	return nil
}

// postLancamento posts one transaction record, injecting the manual timestamp
// when one is set. The backend's mensagem, when present, is returned for the
// success notification.
func (b *base) postLancamento(ctx context.Context, payload map[string]any) (string, error) {
	if b.dataHora != "" {
		payload["data_hora"] = b.dataHora
	}

	var resp struct {
		Sucesso  bool   `json:"sucesso"`
		Mensagem string `json:"mensagem"`
	}
	evento := strconv.Itoa(b.evento)
	if err := b.deps.Client.Post(ctx, "/lancamentos", payload, &resp); err != nil {
		metrics.Lancamentos.WithLabelValues(evento, "error").Inc()
		return "", err
	}
	metrics.Lancamentos.WithLabelValues(evento, "ok").Inc()
	return resp.Mensagem, nil
}

// notifySaved emits the success toast, preferring the backend's message.
func (b *base) notifySaved(mensagem string) {
	if mensagem == "" {
		mensagem = b.titulo + " salvo!"
	}
	b.n.Success(mensagem)
}

// notifyValidation joins every violation into one aggregated notification.
func (b *base) notifyValidation(erros []string) {
	mensagem := "Erro(s) de validação:\n"
	for i, e := range erros {
		if i > 0 {
			mensagem += "\n"
		}
		mensagem += e
	}
	b.n.Error(mensagem)
}
