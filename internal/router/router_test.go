package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/todos/api/handler"
	"github.com/fastygo/todos/domain"
	"github.com/fastygo/todos/internal/infrastructure/kv"
	"github.com/fastygo/todos/internal/infrastructure/monitor"
	"github.com/fastygo/todos/internal/middleware"
	"github.com/fastygo/todos/internal/services/migration"
	"github.com/fastygo/todos/pkg/httpcontext"
	repokv "github.com/fastygo/todos/repository/kv"
	categoryUC "github.com/fastygo/todos/usecase/category"
	todoUC "github.com/fastygo/todos/usecase/todo"
)

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  interface{}     `json:"error"`
	Meta   json.RawMessage `json:"meta"`
}

type server struct {
	t       *testing.T
	handler fasthttp.RequestHandler
	alerts  []string
}

func newServer(t *testing.T, open kv.Opener, quota int64) *server {
	t.Helper()
	s := &server{t: t}
	adapter := kv.New(open, kv.Options{
		Driver:     "memory",
		QuotaBytes: quota,
		Alerter:    kv.AlertFunc(func(msg string) { s.alerts = append(s.alerts, msg) }),
	})
	store := repokv.NewStore(adapter)
	ctxAdapter := httpcontext.NewAdapter(time.Second)

	handlers := Handlers{
		Todo:     apiHandler.NewTodoHandler(todoUC.New(store.Todos(), store.Categories(), nil), ctxAdapter, nil),
		Category: apiHandler.NewCategoryHandler(categoryUC.New(store.Categories(), nil), ctxAdapter, nil),
		Health:   apiHandler.NewHealthHandler(monitor.New(adapter, migration.NewRunner(adapter, nil), nil), ctxAdapter, nil),
	}
	s.handler = Handler(New(handlers, middleware.Recover(nil)), middleware.AccessLog(nil))
	return s
}

func (s *server) do(method, uri, body string) (int, envelope) {
	s.t.Helper()
	var rc fasthttp.RequestCtx
	rc.Request.Header.SetMethod(method)
	rc.Request.SetRequestURI(uri)
	if body != "" {
		rc.Request.Header.SetContentType("application/json")
		rc.Request.SetBodyString(body)
	}
	s.handler(&rc)

	var env envelope
	if raw := rc.Response.Body(); len(raw) > 0 {
		require.NoError(s.t, json.Unmarshal(raw, &env), string(raw))
	}
	return rc.Response.StatusCode(), env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestTodoLifecycle(t *testing.T) {
	s := newServer(t, kv.NewMemory().Opener(), 0)

	status, env := s.do(http.MethodPost, "/api/v1/todos", `{"title":"  Buy milk ","priority":"high","deadline":"2025-04-01"}`)
	require.Equal(t, http.StatusCreated, status)
	created := decodeData[domain.Todo](t, env)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, domain.PriorityHigh, created.Priority)
	require.NotNil(t, created.Deadline)

	status, env = s.do(http.MethodGet, "/api/v1/todos/"+created.ID, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, created.Title, decodeData[domain.Todo](t, env).Title)

	status, env = s.do(http.MethodPatch, "/api/v1/todos/"+created.ID, `{"title":"Buy oat milk","deadline":""}`)
	require.Equal(t, http.StatusOK, status)
	updated := decodeData[domain.Todo](t, env)
	assert.Equal(t, "Buy oat milk", updated.Title)
	assert.Nil(t, updated.Deadline)

	status, env = s.do(http.MethodPost, "/api/v1/todos/"+created.ID+"/toggle", "")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decodeData[domain.Todo](t, env).Completed)

	status, env = s.do(http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, todoUC.Stats{Total: 1, Completed: 1}, decodeData[todoUC.Stats](t, env))

	status, env = s.do(http.MethodDelete, "/api/v1/todos/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, status)
	assert.Empty(t, env.Status, "204 carries no envelope")

	status, env = s.do(http.MethodGet, "/api/v1/todos/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestListTodos_FiltersAndMeta(t *testing.T) {
	s := newServer(t, kv.NewMemory().Opener(), 0)

	_, env := s.do(http.MethodPost, "/api/v1/categories", `{"name":"Work"}`)
	work := decodeData[domain.Category](t, env)

	for _, body := range []string{
		`{"title":"a","priority":"low","categoryId":"` + string(work.ID) + `"}`,
		`{"title":"b","priority":"high"}`,
		`{"title":"c"}`,
	} {
		status, _ := s.do(http.MethodPost, "/api/v1/todos", body)
		require.Equal(t, http.StatusCreated, status)
	}

	status, env := s.do(http.MethodGet, "/api/v1/todos?sort=priority", "")
	require.Equal(t, http.StatusOK, status)
	titles := func(todos []domain.Todo) []string {
		out := []string{}
		for _, todo := range todos {
			out = append(out, todo.Title)
		}
		return out
	}
	assert.Equal(t, []string{"b", "c", "a"}, titles(decodeData[[]domain.Todo](t, env)))

	var meta struct {
		Stats todoUC.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(env.Meta, &meta))
	assert.Equal(t, todoUC.Stats{Total: 3, Active: 3}, meta.Stats)

	_, env = s.do(http.MethodGet, "/api/v1/todos?category=uncategorized", "")
	assert.Equal(t, []string{"b", "c"}, titles(decodeData[[]domain.Todo](t, env)))

	_, env = s.do(http.MethodGet, "/api/v1/todos?category="+string(work.ID), "")
	assert.Equal(t, []string{"a"}, titles(decodeData[[]domain.Todo](t, env)))

	status, env = s.do(http.MethodGet, "/api/v1/todos?status=finished", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID", env.Code)
}

func TestCategoryEndpoints(t *testing.T) {
	s := newServer(t, kv.NewMemory().Opener(), 0)

	status, env := s.do(http.MethodPost, "/api/v1/categories", `{"name":"Home","color":"#0f0"}`)
	require.Equal(t, http.StatusCreated, status)
	home := decodeData[domain.Category](t, env)

	_, env = s.do(http.MethodPost, "/api/v1/todos", `{"title":"dishes","categoryId":"`+string(home.ID)+`"}`)
	todo := decodeData[domain.Todo](t, env)

	status, env = s.do(http.MethodPatch, "/api/v1/categories/"+string(home.ID), `{"name":"House"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "House", decodeData[domain.Category](t, env).Name)

	status, env = s.do(http.MethodGet, "/api/v1/categories", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeData[[]domain.Category](t, env), 1)

	status, _ = s.do(http.MethodDelete, "/api/v1/categories/"+string(home.ID), "")
	require.Equal(t, http.StatusNoContent, status)

	_, env = s.do(http.MethodGet, "/api/v1/todos/"+todo.ID, "")
	detached := decodeData[domain.Todo](t, env)
	assert.False(t, detached.HasCategory())

	status, _ = s.do(http.MethodGet, "/api/v1/categories/"+string(home.ID), "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestValidationErrors(t *testing.T) {
	s := newServer(t, kv.NewMemory().Opener(), 0)

	tests := []struct {
		name   string
		method string
		uri    string
		body   string
	}{
		{name: "malformed body", method: http.MethodPost, uri: "/api/v1/todos", body: `{`},
		{name: "empty title", method: http.MethodPost, uri: "/api/v1/todos", body: `{"title":"  "}`},
		{name: "long title", method: http.MethodPost, uri: "/api/v1/todos", body: `{"title":"` + strings.Repeat("x", 101) + `"}`},
		{name: "bad priority", method: http.MethodPost, uri: "/api/v1/todos", body: `{"title":"x","priority":"urgent"}`},
		{name: "bad deadline", method: http.MethodPost, uri: "/api/v1/todos", body: `{"title":"x","deadline":"tomorrow"}`},
		{name: "empty category name", method: http.MethodPost, uri: "/api/v1/categories", body: `{"name":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := s.do(tt.method, tt.uri, tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, "INVALID", env.Code)
		})
	}

	_, env := s.do(http.MethodGet, "/api/v1/todos", "")
	assert.Empty(t, decodeData[[]domain.Todo](t, env), "nothing was stored")
}

func TestStorageErrorsMapToStatus(t *testing.T) {
	offline := newServer(t, func(context.Context) (kv.Backend, error) {
		return nil, errors.New("disk missing")
	}, 0)
	status, env := offline.do(http.MethodPost, "/api/v1/todos", `{"title":"x"}`)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "STORAGE_UNAVAILABLE", env.Code)

	status, env = offline.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "DEGRADED", env.Code)

	full := newServer(t, kv.NewMemory().Opener(), 64)
	status, env = full.do(http.MethodPost, "/api/v1/todos", `{"title":"`+strings.Repeat("x", 90)+`"}`)
	assert.Equal(t, http.StatusInsufficientStorage, status)
	assert.Equal(t, "QUOTA_EXCEEDED", env.Code)
	assert.Equal(t, []string{kv.QuotaAlertMessage}, full.alerts)
}

func TestHealth(t *testing.T) {
	mem := kv.NewMemory()
	mem.Set("app_version", []byte(migration.CurrentVersion))
	s := newServer(t, mem.Opener(), 1024)

	status, env := s.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, status)
	health := decodeData[monitor.Status](t, env)
	assert.True(t, health.Available)
	assert.Equal(t, migration.CurrentVersion, health.SchemaVersion)
	assert.Equal(t, int64(1024), health.QuotaBytes)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	s := newServer(t, kv.NewMemory().Opener(), 0)

	tests := []struct {
		name   string
		method string
		uri    string
		status int
		code   string
	}{
		{name: "unknown path", method: http.MethodGet, uri: "/nope", status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "wrong method", method: http.MethodPut, uri: "/api/v1/todos", status: http.StatusMethodNotAllowed, code: "METHOD_NOT_ALLOWED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rc fasthttp.RequestCtx
			rc.Request.Header.SetMethod(tt.method)
			rc.Request.SetRequestURI(tt.uri)
			rc.Request.Header.Set(httpcontext.HeaderRequestID, "req-42")
			s.handler(&rc)

			assert.Equal(t, tt.status, rc.Response.StatusCode())
			assert.Equal(t, "req-42", string(rc.Response.Header.Peek(httpcontext.HeaderRequestID)))

			var env envelope
			require.NoError(t, json.Unmarshal(rc.Response.Body(), &env))
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, tt.code, env.Code)
		})
	}
}
