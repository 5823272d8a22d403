package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/studyhub/internal/application"
	"github.com/alem-hub/studyhub/internal/application/command"
	"github.com/alem-hub/studyhub/internal/application/query"
	"github.com/alem-hub/studyhub/internal/infrastructure/lock"
	"github.com/alem-hub/studyhub/internal/infrastructure/persistence/badger"
	"github.com/alem-hub/studyhub/internal/infrastructure/persistence/records"
	"github.com/alem-hub/studyhub/pkg/logger"
	"github.com/alem-hub/studyhub/pkg/timeutil"
)

type apiResponse struct {
	OK      bool            `json:"ok"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testAPI struct {
	t       *testing.T
	handler http.Handler
}

func newTestAPI(t *testing.T, cfg Config, health *HealthChecker) *testAPI {
	t.Helper()
	backend, err := badger.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	store := records.NewStore(backend)
	clock := timeutil.NewFixedClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	var seq atomic.Int64

	app := application.New(application.Options{
		Commands: command.Deps{
			Store:  store,
			Locker: lock.NewKeyed(),
			Clock:  clock,
			NewID: func(prefix string) string {
				return fmt.Sprintf("%s%04d", prefix, seq.Add(1))
			},
		},
		Queries: query.Deps{Store: store, Clock: clock},
	})
	srv := NewServer(cfg, app, health, logger.Nop())
	return &testAPI{t: t, handler: srv.Handler()}
}

func (a *testAPI) do(method, path, caller string, body any) (int, apiResponse) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set(HeaderCaller, caller)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var out apiResponse
	if rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (a *testAPI) register(id, level string, subjects ...string) {
	a.t.Helper()
	code, res := a.do(http.MethodPost, "/api/v1/users", id, obj{
		"username": id, "email": id + "@example.com", "subjects": subjects, "skill_level": level,
	})
	require.Equal(a.t, http.StatusCreated, code, res.Message)
}

func (a *testAPI) tokens(id string) uint64 {
	a.t.Helper()
	code, res := a.do(http.MethodGet, "/api/v1/users/"+id+"/tokens", "", nil)
	require.Equal(a.t, http.StatusOK, code)
	var out tokensResponse
	require.NoError(a.t, json.Unmarshal(res.Data, &out))
	return out.StudyTokens
}

type obj = map[string]any

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.EnableMetrics = false
	cfg.RateLimit = 0
	return cfg
}

func TestAPI_GroupFlow(t *testing.T) {
	api := newTestAPI(t, testConfig(), nil)

	code, res := api.do(http.MethodPost, "/api/v1/users", "alice", obj{
		"username": "alice", "email": "alice@example.com", "subjects": []string{"Math"}, "skill_level": "beginner",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, res.OK)
	assert.Equal(t, "User alice registered successfully with 100 study tokens!", res.Message)

	api.register("bob", "beginner", "Math")
	api.register("carol", "intermediate", "Math")

	code, res = api.do(http.MethodPost, "/api/v1/groups", "alice", obj{
		"name": "Calc", "subject": "Math", "skill_level": "beginner", "max_members": 2,
	})
	require.Equal(t, http.StatusCreated, code, res.Message)
	assert.Equal(t, `Study group "Calc" created successfully! You earned 50 study tokens.`, res.Message)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &created))
	require.NotEmpty(t, created.ID)

	code, res = api.do(http.MethodPost, "/api/v1/groups/"+created.ID+"/join", "bob", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, `Successfully joined study group "Calc"! You earned 25 study tokens.`, res.Message)

	code, res = api.do(http.MethodPost, "/api/v1/groups/"+created.ID+"/join", "carol", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, CodeConflict, res.Error)
	assert.Equal(t, "Study group is full", res.Message)

	assert.Equal(t, uint64(150), api.tokens("alice"))
	assert.Equal(t, uint64(125), api.tokens("bob"))
	assert.Equal(t, uint64(100), api.tokens("carol"))

	code, res = api.do(http.MethodGet, "/api/v1/groups?subject=Math", "", nil)
	require.Equal(t, http.StatusOK, code)
	var groups []map[string]any
	require.NoError(t, json.Unmarshal(res.Data, &groups))
	assert.Len(t, groups, 1)

	code, res = api.do(http.MethodGet, "/api/v1/stats", "", nil)
	require.Equal(t, http.StatusOK, code)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(res.Data, &stats))
	assert.EqualValues(t, 3, stats["total_users"])
	assert.EqualValues(t, 375, stats["total_tokens_distributed"])
}

func TestAPI_SessionFlow(t *testing.T) {
	api := newTestAPI(t, testConfig(), nil)
	api.register("alice", "beginner", "Math")
	api.register("bob", "beginner", "Math")

	_, res := api.do(http.MethodPost, "/api/v1/groups", "alice", obj{
		"name": "Calc", "subject": "Math", "skill_level": "beginner", "max_members": 5,
	})
	var g struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &g))

	code, res := api.do(http.MethodPost, "/api/v1/groups/"+g.ID+"/sessions", "bob", obj{
		"title": "Limits", "scheduled_at": "2026-03-03T10:00:00Z", "duration": 60,
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, CodeForbidden, res.Error)

	code, res = api.do(http.MethodPost, "/api/v1/groups/"+g.ID+"/sessions", "alice", obj{
		"title": "Limits", "scheduled_at": "2026-03-03T10:00:00Z", "duration": 60,
	})
	require.Equal(t, http.StatusCreated, code, res.Message)
	assert.Equal(t, `Study session "Limits" created successfully!`, res.Message)
	var sess struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &sess))

	code, res = api.do(http.MethodPost, "/api/v1/sessions/"+sess.ID+"/join", "bob", nil)
	require.Equal(t, http.StatusOK, code, res.Message)
	assert.Equal(t, `Successfully joined study session "Limits"!`, res.Message)

	code, _ = api.do(http.MethodPost, "/api/v1/sessions/"+sess.ID+"/join", "bob", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, res = api.do(http.MethodPost, "/api/v1/sessions/"+sess.ID+"/complete", "alice", obj{"notes": "done"})
	require.Equal(t, http.StatusOK, code, res.Message)
	assert.Equal(t, "Study session completed! All participants earned 40 study tokens.", res.Message)

	code, _ = api.do(http.MethodPost, "/api/v1/sessions/"+sess.ID+"/complete", "alice", nil)
	assert.Equal(t, http.StatusConflict, code)

	assert.Equal(t, uint64(190), api.tokens("alice"))
	assert.Equal(t, uint64(140), api.tokens("bob"))
}

func TestAPI_ResourcesAndTransfer(t *testing.T) {
	api := newTestAPI(t, testConfig(), nil)
	api.register("alice", "advanced", "Physics")
	api.register("bob", "advanced", "Physics")

	code, res := api.do(http.MethodPost, "/api/v1/resources", "alice", obj{
		"title": "Notes", "type": "document", "ipfs_hash": "Qm123",
	})
	require.Equal(t, http.StatusCreated, code, res.Message)
	assert.Equal(t, `Resource "Notes" uploaded successfully! You earned 30 study tokens.`, res.Message)
	var item struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &item))

	code, res = api.do(http.MethodPost, "/api/v1/resources/"+item.ID+"/download", "", nil)
	require.Equal(t, http.StatusOK, code, res.Message)
	assert.Equal(t, `Resource "Notes" downloaded successfully!`, res.Message)

	code, res = api.do(http.MethodGet, "/api/v1/resources?type=video", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(res.Data))

	code, res = api.do(http.MethodGet, "/api/v1/resources?type=podcast", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, CodeInvalidInput, res.Error)

	code, res = api.do(http.MethodPost, "/api/v1/tokens/transfer", "alice", obj{"to": "bob", "amount": 30})
	require.Equal(t, http.StatusOK, code, res.Message)
	assert.Equal(t, "Transferred 30 study tokens successfully!", res.Message)

	code, res = api.do(http.MethodPost, "/api/v1/tokens/transfer", "alice", obj{"to": "bob", "amount": 1000})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, CodeInsufficientFunds, res.Error)

	assert.Equal(t, uint64(100), api.tokens("alice"))
	assert.Equal(t, uint64(130), api.tokens("bob"))
}

func TestAPI_StreakMessages(t *testing.T) {
	api := newTestAPI(t, testConfig(), nil)
	api.register("alice", "beginner")

	var res apiResponse
	for i := 1; i <= 7; i++ {
		var code int
		code, res = api.do(http.MethodPost, "/api/v1/users/alice/streak", "alice", nil)
		require.Equal(t, http.StatusOK, code)
		if i == 1 {
			assert.Equal(t, "Study streak updated to 1 days!", res.Message)
		}
	}
	assert.Equal(t,
		"Study streak updated to 7 days! You earned 100 bonus tokens for your 7-day streak!",
		res.Message)

	var out streakResponse
	require.NoError(t, json.Unmarshal(res.Data, &out))
	assert.True(t, out.BonusEarned)
	assert.Equal(t, uint64(200), out.StudyTokens)

	code, res := api.do(http.MethodGet, "/api/v1/users/alice/achievements", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `["7-day study streak"]`, string(res.Data))
}

func TestAPI_ErrorMapping(t *testing.T) {
	api := newTestAPI(t, testConfig(), nil)
	api.register("alice", "beginner")

	tests := []struct {
		name   string
		method string
		path   string
		caller string
		body   any
		status int
		code   string
		msg    string
	}{
		{"missing caller", http.MethodPost, "/api/v1/groups", "",
			obj{"name": "G", "subject": "Math", "skill_level": "beginner", "max_members": 3},
			http.StatusUnauthorized, CodeUnauthenticated, ""},
		{"bad skill level", http.MethodPost, "/api/v1/users", "bob",
			obj{"username": "bob", "skill_level": "expert"},
			http.StatusBadRequest, CodeInvalidInput, "Invalid skill level. Must be: beginner, intermediate, or advanced"},
		{"missing username", http.MethodPost, "/api/v1/users", "bob",
			obj{"skill_level": "beginner"},
			http.StatusBadRequest, CodeInvalidInput, "username is required"},
		{"duplicate registration", http.MethodPost, "/api/v1/users", "alice",
			obj{"username": "alice", "skill_level": "beginner"},
			http.StatusConflict, CodeConflict, ""},
		{"unknown group", http.MethodPost, "/api/v1/groups/group_nope/join", "alice", nil,
			http.StatusNotFound, CodeNotFound, "Study group not found"},
		{"unknown profile", http.MethodGet, "/api/v1/users/zed", "", nil,
			http.StatusNotFound, CodeNotFound, ""},
		{"self transfer", http.MethodPost, "/api/v1/tokens/transfer", "alice",
			obj{"to": "alice", "amount": 5},
			http.StatusBadRequest, CodeInvalidInput, "cannot transfer tokens to yourself"},
		{"malformed body", http.MethodPost, "/api/v1/tokens/transfer", "alice", "not-an-object",
			http.StatusBadRequest, CodeInvalidInput, "malformed request body"},
		{"unknown route", http.MethodGet, "/api/v1/nope", "", nil,
			http.StatusNotFound, CodeNotFound, "route not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, res := api.do(tt.method, tt.path, tt.caller, tt.body)
			assert.Equal(t, tt.status, code)
			assert.False(t, res.OK)
			assert.Equal(t, tt.code, res.Error)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, res.Message)
			}
		})
	}
}

func TestAPI_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 1
	cfg.RateBurst = 2
	api := newTestAPI(t, cfg, nil)

	var last int
	var res apiResponse
	for i := 0; i < 3; i++ {
		last, res = api.do(http.MethodGet, "/api/v1/stats", "", nil)
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
	assert.Equal(t, CodeRateLimited, res.Error)

	// Probes are outside the limited group.
	code, _ := api.do(http.MethodGet, "/live", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAPI_Health(t *testing.T) {
	health := NewHealthChecker("test")
	health.AddCheck("store", func(context.Context) error { return nil })
	api := newTestAPI(t, testConfig(), health)

	code, _ := api.do(http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, code)

	health.AddCheck("redis", func(context.Context) error { return errors.New("connection refused") })
	code, _ = api.do(http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)

	status := health.Check(context.Background())
	assert.False(t, status.Healthy)
	assert.Equal(t, "Some checks failed: redis", status.Message)
	assert.True(t, status.Checks["store"].Healthy)
}
