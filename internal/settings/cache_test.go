package settings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"clt400tt-terminal/internal/colet"
)

func memoryStore(t *testing.T) Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)
	store, err := NewStore(db)
	assert.NoError(t, err)
	return store
}

func TestGetFetchesOnceForConcurrentCallers(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte(`{"nome_empresa": "TÊMPERA AÇOS LTDA", "altera_data": true}`))
	}))
	defer server.Close()

	client := colet.NewClient(server.URL, 5*time.Second, zerolog.Nop())
	cache := NewCache(client, nil, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := cache.Get(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "TÊMPERA AÇOS LTDA", p.NomeEmpresa)
			assert.True(t, p.AlteraData)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt64(&calls))
}

func TestGetPrefersPersistedCopy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend should not be hit when the store is populated")
	}))
	defer server.Close()

	store := memoryStore(t)
	assert.NoError(t, store.Save(context.Background(), &Parametros{NomeEmpresa: "EMPRESA", AlteraData: false}))

	client := colet.NewClient(server.URL, 5*time.Second, zerolog.Nop())
	cache := NewCache(client, store, zerolog.Nop())

	p, err := cache.Get(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "EMPRESA", p.NomeEmpresa)
}

func TestRefreshBypassesCaches(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write([]byte(`{"nome_empresa": "NOVA RAZÃO SOCIAL", "altera_data": false}`))
	}))
	defer server.Close()

	store := memoryStore(t)
	assert.NoError(t, store.Save(context.Background(), &Parametros{NomeEmpresa: "ANTIGA"}))

	client := colet.NewClient(server.URL, 5*time.Second, zerolog.Nop())
	cache := NewCache(client, store, zerolog.Nop())

	p, err := cache.Refresh(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "NOVA RAZÃO SOCIAL", p.NomeEmpresa)
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls))

	// The persisted copy was replaced too.
	persisted, err := store.Load(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "NOVA RAZÃO SOCIAL", persisted.NomeEmpresa)
}

func TestFetchFailureFallsBackToStore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	store := memoryStore(t)
	assert.NoError(t, store.Save(context.Background(), &Parametros{NomeEmpresa: "OFFLINE", AlteraData: true}))

	client := colet.NewClient(server.URL, 5*time.Second, zerolog.Nop())
	cache := NewCache(client, store, zerolog.Nop())

	p, err := cache.Refresh(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "OFFLINE", p.NomeEmpresa)
}

func TestInvalidateClearsBothTiers(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write([]byte(`{"nome_empresa": "EMPRESA", "altera_data": true}`))
	}))
	defer server.Close()

	store := memoryStore(t)
	client := colet.NewClient(server.URL, 5*time.Second, zerolog.Nop())
	cache := NewCache(client, store, zerolog.Nop())

	_, err := cache.Get(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, cache.Invalidate(context.Background()))

	persisted, err := store.Load(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, persisted)

	// The next Get has to go to the backend again.
	_, err = cache.Get(context.Background())
	assert.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt64(&calls))
}
