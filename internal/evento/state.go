package evento

import (
	"github.com/shopspring/decimal"

	"clt400tt-terminal/internal/lookup"
)

// Phase is the tag of the search state machine every form controller runs:
//
//	idle → searching → (found | not_found | pending_conflict)
//
// The variants carry their own data so invalid combinations ("found" while
// "searching") are unrepresentable.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSearching
	PhaseFound
	PhaseNotFound
	PhaseConflict
)

func (p Phase) String() string {
	switch p {
	case PhaseSearching:
		return "searching"
	case PhaseFound:
		return "found"
	case PhaseNotFound:
		return "not_found"
	case PhaseConflict:
		return "pending_conflict"
	default:
		return "idle"
	}
}

// RowKey identifies one division line by its composite key.
type RowKey struct {
	NumeroOS int
	Divisao  int
}

// pendingResult is a search outcome held back by a priority conflict; it is
// only committed into the form when the operator confirms.
type pendingResult struct {
	linhas          []lookup.Linha
	referencia      string
	posto           string
	descricaoPosto  string
	postosPossiveis []lookup.PostoPossivel
	numeroCarga     int
}

// conflito is the priority-conflict gate state.
type conflito struct {
	cargasPrioritarias string
	pend               pendingResult
}

// searchState is the tagged union. Exactly the fields of the active phase are
// meaningful; the constructors below are the only way states are built.
type searchState struct {
	phase      Phase
	linhas     []lookup.Linha
	referencia string
	erro       string
	conflito   *conflito
}

func idleState() searchState      { return searchState{phase: PhaseIdle} }
func searchingState() searchState { return searchState{phase: PhaseSearching} }

func foundState(linhas []lookup.Linha, referencia string) searchState {
	return searchState{phase: PhaseFound, linhas: linhas, referencia: referencia}
}

func notFoundState(erro string) searchState {
	return searchState{phase: PhaseNotFound, erro: erro}
}

func conflictState(c *conflito) searchState {
	return searchState{phase: PhaseConflict, conflito: c}
}

// LinhaView is a division line as rendered by the terminal: the effective
// quantity (override when present, fetched value otherwise) alongside the
// original one.
type LinhaView struct {
	NumeroOS           int             `json:"numero_os"`
	Divisao            int             `json:"divisao"`
	Quantidade         decimal.Decimal `json:"quantidade"`
	QuantidadeOriginal decimal.Decimal `json:"quantidade_original"`
	Ajustada           bool            `json:"ajustada"`
}
