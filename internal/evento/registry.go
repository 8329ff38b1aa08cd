package evento

import (
	"regexp"
	"strconv"

	"clt400tt-terminal/internal/notify"
)

// Opcao is one entry of the event selection list. Every event the plant
// recognizes is listed; only the codes present in the registry have a form
// behind them.
type Opcao struct {
	Valor string `json:"valor"`
	Label string `json:"label"`
}

// Opcoes returns the full event selection list in display order.
func Opcoes() []Opcao {
	return []Opcao{
		{Valor: "10", Label: "10 - Início de Produção"},
		{Valor: "15", Label: "15 - Fim de Produção"},
		{Valor: "13", Label: "13 - Divisão de OS"},
		{Valor: "19", Label: "19 - Resultado de Etapa"},
		{Valor: "80", Label: "80 - Resultado de Inspeção"},
		{Valor: "85", Label: "85 - Resultado de Inspeção de Carga"},
		{Valor: "50", Label: "50 - Situação de Postos"},
		{Valor: "51", Label: "51 - Situação de Postos"},
		{Valor: "52", Label: "52 - Situação de Postos"},
		{Valor: "53", Label: "53 - Situação de Postos"},
		{Valor: "54", Label: "54 - Situação de Postos"},
		{Valor: "59", Label: "59 - Patamares de Postos de Trabalho"},
		{Valor: "32", Label: "32 - Entrada de Operador"},
		{Valor: "38", Label: "38 - Saída de Operador"},
		{Valor: "25", Label: "25 - Confirmação de Embarque"},
		{Valor: "27", Label: "27 - Confirmação de Embarque sem NF"},
		{Valor: "99", Label: "99 - Eventos de Manutenção"},
		{Valor: "40", Label: "40 - Início de Processo"},
		{Valor: "41", Label: "41 - Término de Processo"},
		{Valor: "44", Label: "44 - Processo Executado"},
	}
}

// leadingDigits extracts the numeric code from free-form input like
// "10 - Início de Produção".
var leadingDigits = regexp.MustCompile(`^\d+`)

// ParseEventCode resolves free-form operator input to an event number.
func ParseEventCode(input string) (int, bool) {
	match := leadingDigits.FindString(input)
	if match == "" {
		return 0, false
	}
	code, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return code, true
}

// factory builds one controller bound to a notifier.
type factory func(deps Deps, n notify.Notifier) Controller

var registry = map[int]factory{
	10: func(d Deps, n notify.Notifier) Controller { return NewCarga(d, n, 10) },
	13: NewDivisao,
	15: func(d Deps, n notify.Notifier) Controller { return NewCarga(d, n, 15) },
	18: NewInspecao,
	19: NewEtapa,
}

// Supported reports whether the event code has a form implemented.
func Supported(code int) bool {
	_, ok := registry[code]
	return ok
}

// New builds the controller for the given event code.
func New(code int, deps Deps, n notify.Notifier) (Controller, bool) {
	f, ok := registry[code]
	if !ok {
		return nil, false
	}
	return f(deps, n), true
}
