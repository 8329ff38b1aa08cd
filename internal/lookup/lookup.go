// Package lookup implements the reference-data searches the event forms
// depend on: operators, workstations, services, instruments, work orders,
// loads and inspection services. Every service follows the same contract: a
// blank code fails locally without a network call, array responses resolve to
// their first element, and transport failures are translated to user-facing
// messages and pushed through the notification side channel.
package lookup

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"clt400tt-terminal/internal/colet"
	"clt400tt-terminal/internal/metrics"
)

func init() {
	// The backend expects plain JSON numbers for quantities.
	decimal.MarshalJSONWithoutQuotes = true
}

// Result is the uniform outcome every lookup produces. At most one of
// Description and Err is non-empty; Pending is true only while a request is in
// flight.
type Result struct {
	Description string `json:"descricao"`
	Err         string `json:"erro,omitempty"`
	Pending     bool   `json:"pendente"`
}

// Found reports whether the lookup succeeded.
func (r Result) Found() bool {
	return r.Description != "" && r.Err == ""
}

// found and notFound keep the Description/Err exclusivity in one place.
func found(description string) Result { return Result{Description: description} }
func notFound(message string) Result  { return Result{Err: message} }

// Linha is one work-order division line, the unit of display and submission.
type Linha struct {
	NumeroOS   int             `json:"numero_os,omitempty"`
	Divisao    int             `json:"divisao"`
	Quantidade decimal.Decimal `json:"quantidade"`
}

// httpPrefix strips a redundant "HTTP <code>:" prefix some backend messages
// carry.
var httpPrefix = regexp.MustCompile(`(?i)^HTTP\s*\d+:\s*`)

// statusAllowList are the statuses whose server-supplied message is shown to
// the operator verbatim. Anything else gets the caller's generic fallback.
var statusAllowList = map[int]bool{400: true, 402: true, 404: true}

// ErrorMessage maps a transport error to a user-facing message. Server-supplied
// messages are surfaced only for the allow-listed statuses; everything else
// falls back to the caller's generic text.
func ErrorMessage(err error, fallback string) string {
	var apiErr *colet.APIError
	if errors.As(err, &apiErr) && statusAllowList[apiErr.Status] && apiErr.ServerMessage != "" {
		if cleaned := strings.TrimSpace(httpPrefix.ReplaceAllString(apiErr.ServerMessage, "")); cleaned != "" {
			return cleaned
		}
	}
	return fallback
}

// firstOf decodes a response that may be either a single object or an array of
// objects; for arrays the first element wins (server ordering). A nil return
// with nil error means "no match".
func firstOf[T any](raw json.RawMessage) (*T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, nil
		}
		return &list[0], nil
	}
	var single T
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, err
	}
	return &single, nil
}

func countLookup(entity, outcome string) {
	metrics.Lookups.WithLabelValues(entity, outcome).Inc()
}

// Services bundles one instance of every lookup service.
type Services struct {
	Operador    *OperadorService
	Posto       *PostoService
	Servico     *ServicoService
	Instrumento *InstrumentoService
	Ordem       *OrdemService
	Carga       *CargaService
	Inspecao    *InspecaoService
}

// NewServices wires all lookup services onto one backend client.
func NewServices(c *colet.Client) *Services {
	return &Services{
		Operador:    &OperadorService{c: c},
		Posto:       &PostoService{c: c},
		Servico:     &ServicoService{c: c},
		Instrumento: &InstrumentoService{c: c},
		Ordem:       &OrdemService{c: c},
		Carga:       &CargaService{c: c},
		Inspecao:    &InspecaoService{c: c},
	}
}
