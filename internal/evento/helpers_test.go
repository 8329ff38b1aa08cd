package evento

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"clt400tt-terminal/internal/colet"
	"clt400tt-terminal/internal/lookup"
	"clt400tt-terminal/internal/settings"
)

// recordedRequest captures one backend call for assertions.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
	List   []map[string]any
}

// fakeColet is a scripted backend: GET responses by path+query, write
// endpoints answered with a generic success, every call recorded in order.
type fakeColet struct {
	t      *testing.T
	routes map[string]string

	mu       sync.Mutex
	requests []recordedRequest

	server *httptest.Server
}

func newFakeColet(t *testing.T, routes map[string]string) *fakeColet {
	t.Helper()
	f := &fakeColet{t: t, routes: routes}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeColet) handle(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
	if r.Body != nil {
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			if raw[0] == '[' {
				json.Unmarshal(raw, &rec.List)
			} else {
				json.Unmarshal(raw, &rec.Body)
			}
		}
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()

	if r.Method == http.MethodGet {
		key := r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}
		body, ok := f.routes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"erro": "rota desconhecida: ` + key + `"}`))
			return
		}
		w.Write([]byte(body))
		return
	}

	w.Write([]byte(`{"sucesso": true, "mensagem": "Lançamento efetuado"}`))
}

func (f *fakeColet) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// writes filters the recorded calls down to the non-GET ones.
func (f *fakeColet) writes() []recordedRequest {
	var out []recordedRequest
	for _, r := range f.recorded() {
		if r.Method != http.MethodGet {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeColet) deps() Deps {
	client := colet.NewClient(f.server.URL, 5*time.Second, zerolog.Nop())
	return Deps{
		Client:   client,
		Lookups:  lookup.NewServices(client),
		Settings: settings.NewCache(client, nil, zerolog.Nop()),
		Log:      zerolog.Nop(),
	}
}

// Canned responses shared across controller tests.
const (
	respOperador = `[{"codigo_pessoa": "42", "nome": "JOÃO DA SILVA"}]`
	respPosto    = `[{"codigo_posto": "FORNO1", "descricao": "FORNO A VÁCUO 1"}]`

	respCarga77 = `{"numero_carga": 77, "oss": [
		{"numero_os": 1234, "divisao": 1, "quantidade": 50},
		{"numero_os": 1235, "divisao": 1, "quantidade": 30}
	]}`

	respOrdem1234 = `{
		"numero_os": 1234, "quantidade_os": 80, "numero_carga": 5,
		"posto": "FORNO1", "descricao_posto": "FORNO A VÁCUO 1",
		"divisoes": [{"divisao": 1, "quantidade": 50}, {"divisao": 2, "quantidade": 30}]
	}`

	respParametros = `{"nome_empresa": "TÊMPERA AÇOS LTDA", "altera_data": true}`
)
