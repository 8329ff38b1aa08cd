package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"clt400tt-terminal/internal/colet"
	"clt400tt-terminal/internal/notify"
)

// fakeBackend serves canned JSON per path+query.
func fakeBackend(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path + "?" + r.URL.RawQuery
		body, ok := routes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"erro": "rota desconhecida: ` + key + `"}`))
			return
		}
		w.Write([]byte(body))
	}))
}

func servicesFor(url string) *Services {
	return NewServices(colet.NewClient(url, 5*time.Second, zerolog.Nop()))
}

func TestOperadorBlankCodeFailsLocally(t *testing.T) {
	// No server at all: a blank code must never reach the network.
	svc := servicesFor("http://127.0.0.1:1")

	op, res := svc.Operador.Search(context.Background(), "   ", notify.Discard{})
	assert.Nil(t, op)
	assert.Equal(t, "Informe o código do operador.", res.Err)
	assert.False(t, res.Found())
}

func TestOperadorFirstOfArray(t *testing.T) {
	server := fakeBackend(t, map[string]string{
		"/operadores?codigo_pessoa=42": `[{"codigo_pessoa": "42", "nome": "JOÃO DA SILVA"}, {"codigo_pessoa": "43", "nome": "OUTRO"}]`,
	})
	defer server.Close()

	op, res := servicesFor(server.URL).Operador.Search(context.Background(), "42", notify.Discard{})
	assert.True(t, res.Found())
	assert.Equal(t, "JOÃO DA SILVA", res.Description)
	assert.Equal(t, "42", op.CodigoPessoa)
}

func TestOperadorEmptyArrayIsNotFound(t *testing.T) {
	server := fakeBackend(t, map[string]string{
		"/operadores?codigo_pessoa=007": `[]`,
	})
	defer server.Close()

	op, res := servicesFor(server.URL).Operador.Search(context.Background(), "007", notify.Discard{})
	assert.Nil(t, op)
	assert.Equal(t, "Operador não encontrado.", res.Err)
}

func TestOperadorTransportErrorNotifies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"erro": "HTTP 400: Código de operador inválido"}`))
	}))
	defer server.Close()

	notices := notify.NewCollector()
	_, res := servicesFor(server.URL).Operador.Search(context.Background(), "abc", notices)

	// Allow-listed status: the server message wins, with the prefix stripped.
	assert.Equal(t, "Código de operador inválido", res.Err)
	drained := notices.Drain()
	assert.Len(t, drained, 1)
	assert.Equal(t, notify.LevelError, drained[0].Level)
	assert.Equal(t, "Código de operador inválido", drained[0].Mensagem)
}

func TestErrorMessageAllowList(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"allow-listed with message", &colet.APIError{Status: 404, ServerMessage: "OS inexistente"}, "OS inexistente"},
		{"allow-listed with prefix", &colet.APIError{Status: 400, ServerMessage: "HTTP 400: dado inválido"}, "dado inválido"},
		{"allow-listed without message", &colet.APIError{Status: 402}, "fallback"},
		{"server error", &colet.APIError{Status: 500, ServerMessage: "stack trace"}, "fallback"},
		{"plain error", assert.AnError, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage(tt.err, "fallback"))
		})
	}
}

func TestPostoArrayResponse(t *testing.T) {
	server := fakeBackend(t, map[string]string{
		"/postos?codigo_posto=FORNO1": `[{"codigo_posto": "FORNO1", "descricao": "FORNO A VÁCUO 1"}]`,
	})
	defer server.Close()

	posto, res := servicesFor(server.URL).Posto.Search(context.Background(), "FORNO1", notify.Discard{})
	assert.True(t, res.Found())
	assert.Equal(t, "FORNO A VÁCUO 1", res.Description)
	assert.Equal(t, "FORNO1", posto.CodigoPosto)
}

func TestCargaSearch(t *testing.T) {
	server := fakeBackend(t, map[string]string{
		"/cargas?numero_carga=77": `{"numero_carga": 77, "oss": [
			{"numero_os": 1234, "divisao": 1, "quantidade": 50},
			{"numero_os": 1235, "divisao": 1, "quantidade": 30}
		]}`,
	})
	defer server.Close()

	carga, res := servicesFor(server.URL).Carga.Search(context.Background(), "77", notify.Discard{})
	assert.True(t, res.Found())
	assert.Equal(t, "Carga 77", res.Description)
	assert.Len(t, carga.OSs, 2)
	assert.Equal(t, 1234, carga.OSs[0].NumeroOS)
}

func TestCargaEmpty(t *testing.T) {
	server := fakeBackend(t, map[string]string{
		"/cargas?numero_carga=99": `{"numero_carga": 99, "oss": []}`,
	})
	defer server.Close()

	_, res := servicesFor(server.URL).Carga.Search(context.Background(), "99", notify.Discard{})
	assert.Equal(t, "Nenhuma OS encontrada para a carga informada.", res.Err)
}

func TestOrdemCompletaStampsNumeroOS(t *testing.T) {
	server := fakeBackend(t, map[string]string{
		"/cargas?numero_os=1234": `{
			"numero_os": 1234, "quantidade_os": 80, "numero_carga": 5,
			"posto": "FORNO1", "descricao_posto": "FORNO A VÁCUO 1",
			"divisoes": [{"divisao": 1, "quantidade": 50}, {"divisao": 2, "quantidade": 30}]
		}`,
	})
	defer server.Close()

	ordem, res := servicesFor(server.URL).Ordem.SearchCompleta(context.Background(), "1234", notify.Discard{})
	assert.True(t, res.Found())
	assert.Equal(t, "OS 1234", res.Description)
	for _, d := range ordem.Divisoes {
		assert.Equal(t, 1234, d.NumeroOS)
	}
}

func TestOrdemCompletaNoDivisions(t *testing.T) {
	server := fakeBackend(t, map[string]string{
		"/cargas?numero_os=9": `{"numero_os": 9, "divisoes": []}`,
	})
	defer server.Close()

	ordem, res := servicesFor(server.URL).Ordem.SearchCompleta(context.Background(), "9", notify.Discard{})
	assert.NotNil(t, ordem)
	assert.Equal(t, "Nenhuma divisão encontrada para a OS informada.", res.Err)
}

func TestOrdemSaldoZeroIsNotFound(t *testing.T) {
	server := fakeBackend(t, map[string]string{
		"/ordens?numero_os=1234": `{"numero_os": 1234, "quantidade_os": 80, "ultima_divisao": 2, "saldo_divisoes": 0}`,
	})
	defer server.Close()

	notices := notify.NewCollector()
	saldo, res := servicesFor(server.URL).Ordem.SearchSaldo(context.Background(), "1234", notices)
	assert.Nil(t, saldo)
	assert.Equal(t, "OS não possui saldo disponível", res.Err)
	drained := notices.Drain()
	assert.Len(t, drained, 1)
	assert.Equal(t, "OS não possui saldo disponível", drained[0].Mensagem)
}

func TestInspecaoList(t *testing.T) {
	server := fakeBackend(t, map[string]string{
		"/servicos_inspecao?numero_os=1234": `[
			{"sequencial_servico": 1, "descricao_servico": "DUREZA"},
			{"sequencial_servico": 2, "descricao_servico": "METALOGRAFIA"}
		]`,
	})
	defer server.Close()

	servicos, res := servicesFor(server.URL).Inspecao.Search(context.Background(), "1234", notify.Discard{})
	assert.True(t, res.Found())
	assert.Equal(t, "OS 1234 - 2 serviço(s) encontrado(s)", res.Description)
	assert.Equal(t, "1 - DUREZA", servicos[0].Rotulo())
}

func TestInspecaoEmpty(t *testing.T) {
	server := fakeBackend(t, map[string]string{
		"/servicos_inspecao?numero_os=1": `[]`,
	})
	defer server.Close()

	_, res := servicesFor(server.URL).Inspecao.Search(context.Background(), "1", notify.Discard{})
	assert.Equal(t, "Nenhum serviço de inspeção encontrado para esta OS", res.Err)
}
