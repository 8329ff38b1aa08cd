package lookup

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"clt400tt-terminal/internal/colet"
	"clt400tt-terminal/internal/notify"
)

// CargaInfo is the load-centric division listing: every work-order line
// grouped under one load.
type CargaInfo struct {
	NumeroCarga int     `json:"numero_carga"`
	OSs         []Linha `json:"oss"`
}

// CargaService looks loads up by number.
type CargaService struct {
	c *colet.Client
}

// Search fetches the division lines of a load. The reference label follows
// the "Carga <n>" convention used across the forms.
func (s *CargaService) Search(ctx context.Context, numero string, n notify.Notifier) (*CargaInfo, Result) {
	numero = strings.TrimSpace(numero)
	if numero == "" {
		return nil, notFound("Informe o número da carga para pesquisar.")
	}

	var carga CargaInfo
	err := s.c.Get(ctx, "/cargas?numero_carga="+url.QueryEscape(numero), &carga)
	if err != nil {
		countLookup("carga", "error")
		mensagem := ErrorMessage(err, "Não foi possível consultar a carga.")
		n.Error(mensagem)
		return nil, notFound(mensagem)
	}
	if len(carga.OSs) == 0 {
		countLookup("carga", "not_found")
		return &carga, notFound("Nenhuma OS encontrada para a carga informada.")
	}

	countLookup("carga", "found")
	return &carga, found(fmt.Sprintf("Carga %d", carga.NumeroCarga))
}
