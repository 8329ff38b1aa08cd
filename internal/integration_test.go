package internal

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"clt400tt-terminal/config"
	"clt400tt-terminal/internal/api"
	"clt400tt-terminal/internal/colet"
	"clt400tt-terminal/internal/evento"
	"clt400tt-terminal/internal/lookup"
	"clt400tt-terminal/internal/session"
	"clt400tt-terminal/internal/settings"
)

// TestTerminalLifecycle walks one terminal session through the whole flow: the
// operator opens the load-start form with a pre-selected work order, hits the
// priority conflict, confirms it, adjusts a division quantity and saves.
func TestTerminalLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// --- Fake Colet backend ---

	var mu sync.Mutex
	var writes []string

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			mu.Lock()
			writes = append(writes, r.Method+" "+r.URL.Path)
			mu.Unlock()
			w.Write([]byte(`{"sucesso": true, "mensagem": "Lançamento efetuado"}`))
			return
		}

		switch r.URL.Path {
		case "/parametros":
			w.Write([]byte(`{"nome_empresa": "TÊMPERA AÇOS LTDA", "altera_data": true}`))
		case "/cargas":
			w.Write([]byte(`{
				"numero_os": 1234, "quantidade_os": 80, "numero_carga": 5,
				"posto": "FORNO1", "descricao_posto": "FORNO A VÁCUO 1",
				"cargas_prioritarias": "A carga 4 tem prioridade.",
				"divisoes": [
					{"divisao": 1, "quantidade": 50},
					{"divisao": 2, "quantidade": 30}
				]
			}`))
		case "/operadores":
			w.Write([]byte(`[{"codigo_pessoa": "42", "nome": "JOÃO DA SILVA"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer backend.Close()

	// --- Service wiring, as in main ---

	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	assert.NoError(t, err)
	store, err := settings.NewStore(testDB)
	assert.NoError(t, err)

	client := colet.NewClient(backend.URL, 5*time.Second, zerolog.Nop())
	deps := evento.Deps{
		Client:   client,
		Lookups:  lookup.NewServices(client),
		Settings: settings.NewCache(client, store, zerolog.Nop()),
		Log:      zerolog.Nop(),
	}
	sessions := session.NewManager(time.Minute, time.Minute)

	cfg := config.Default()
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	router := api.NewRouter(cfg, deps, sessions)

	call := func(method, path string, payload any) (int, map[string]any) {
		var body *bytes.Buffer
		if payload != nil {
			raw, err := json.Marshal(payload)
			assert.NoError(t, err)
			body = bytes.NewBuffer(raw)
		} else {
			body = bytes.NewBuffer(nil)
		}
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(method, path, body)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		var decoded map[string]any
		if w.Body.Len() > 0 {
			json.Unmarshal(w.Body.Bytes(), &decoded)
		}
		return w.Code, decoded
	}

	// --- 1. Company settings come from the backend and are persisted ---

	code, body := call("GET", "/api/parametros", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "TÊMPERA AÇOS LTDA", body["nome_empresa"])

	persisted, err := store.Load(t.Context())
	assert.NoError(t, err)
	assert.NotNil(t, persisted)
	assert.True(t, persisted.AlteraData)

	// --- 2. Open the load-start form with the pre-selected work order ---

	code, body = call("POST", "/api/sessoes", gin.H{"evento": "10 - Início de Produção", "numero_os": "1234"})
	assert.Equal(t, http.StatusCreated, code)
	id := body["id"].(string)
	estado := body["estado"].(map[string]any)
	assert.Equal(t, "idle", estado["fase"])
	assert.Equal(t, "1234", estado["campos"].(map[string]any)["num_os"])

	// --- 3. Searching the OS raises the priority conflict ---

	code, body = call("POST", "/api/sessoes/"+id+"/busca", gin.H{"campo": "num_os", "valor": "1234"})
	assert.Equal(t, http.StatusOK, code)
	estado = body["estado"].(map[string]any)
	assert.Equal(t, "pending_conflict", estado["fase"])
	assert.Equal(t, "A carga 4 tem prioridade.", estado["cargas_prioritarias"])

	// --- 4. Confirming applies the held-back result, posto auto-resolved ---

	code, body = call("POST", "/api/sessoes/"+id+"/conflito", gin.H{"confirmar": true})
	assert.Equal(t, http.StatusOK, code)
	estado = body["estado"].(map[string]any)
	assert.Equal(t, "found", estado["fase"])
	assert.Equal(t, "OS 1234", estado["referencia"])
	assert.Equal(t, "FORNO1", estado["campos"].(map[string]any)["posto"])
	assert.Len(t, estado["linhas"].([]any), 2)

	// --- 5. Operator lookup and a quantity adjustment ---

	code, _ = call("POST", "/api/sessoes/"+id+"/busca", gin.H{"campo": "operador", "valor": "42"})
	assert.Equal(t, http.StatusOK, code)

	code, body = call("PUT", "/api/sessoes/"+id+"/linhas", gin.H{"numero_os": 1234, "divisao": 1, "quantidade": "60"})
	assert.Equal(t, http.StatusOK, code)
	estado = body["estado"].(map[string]any)
	linha := estado["linhas"].([]any)[0].(map[string]any)
	assert.Equal(t, true, linha["ajustada"])
	assert.EqualValues(t, 60, linha["quantidade"])

	// --- 6. Manual timestamp, allowed by the company settings ---

	code, _ = call("POST", "/api/sessoes/"+id+"/horario", gin.H{"data_hora": "2026-08-31T14:30"})
	assert.Equal(t, http.StatusOK, code)

	// --- 7. Saving: the adjustment goes first, then one post per line ---

	code, body = call("POST", "/api/sessoes/"+id+"/salvar", nil)
	assert.Equal(t, http.StatusOK, code)

	notificacoes := body["notificacoes"].([]any)
	assert.Len(t, notificacoes, 1)
	notice := notificacoes[0].(map[string]any)
	assert.Equal(t, "sucesso", notice["tipo"])
	assert.Equal(t, "Lançamento efetuado", notice["mensagem"])

	mu.Lock()
	recorded := append([]string(nil), writes...)
	mu.Unlock()
	assert.Equal(t, []string{
		"PATCH /divisao",
		"POST /lancamentos",
		"POST /lancamentos",
	}, recorded)

	// The successful save cleared the adjustment flag.
	estado = body["estado"].(map[string]any)
	linha = estado["linhas"].([]any)[0].(map[string]any)
	assert.Equal(t, false, linha["ajustada"])
}
