package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thinkscotty/explainer/internal/auth"
	"github.com/thinkscotty/explainer/internal/config"
	"github.com/thinkscotty/explainer/internal/explain"
	"github.com/thinkscotty/explainer/internal/models"
)

type stubModel struct {
	resp *explain.ModelResponse
	err  error
}

func (m stubModel) Invoke(context.Context, []explain.Part) (*explain.ModelResponse, error) {
	return m.resp, m.err
}

type memStore struct {
	mu      sync.Mutex
	entries []models.ExplainLog
}

func (m *memStore) LogExplain(e models.ExplainLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memStore) GetStats() (models.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.Stats{TotalRequests: len(m.entries)}, nil
}

func (m *memStore) RecentExplains(limit int) ([]models.ExplainLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries, nil
}

func newTestServer(t *testing.T, cfg config.Config, model explain.Model, store Store) *httptest.Server {
	t.Helper()
	ex := explain.New(nil, nil, model)
	srv := httptest.NewServer(New(cfg, ex, store, "test").Handler())
	t.Cleanup(srv.Close)
	return srv
}

func okModel(text string) explain.Model {
	return stubModel{resp: &explain.ModelResponse{Text: text, FinishReason: explain.FinishStop, TokensUsed: 7, Model: "gemini-test"}}
}

func post(t *testing.T, url, body string) (*http.Response, map[string]string) {
	t.Helper()
	resp, err := http.Post(url+"/api/explain", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]string
	if resp.ContentLength != 0 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestExplainEndpoint_Success(t *testing.T) {
	store := &memStore{}
	srv := newTestServer(t, config.DefaultConfig(), okModel("Rain falls when clouds get heavy."), store)

	resp, out := post(t, srv.URL, `{"text":"Why does it rain?","simplicity":0,"tone":0}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.Equal(t, "Rain falls when clouds get heavy.", out["explanation"])
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	require.Len(t, store.entries, 1)
	require.Equal(t, models.OutcomeOK, store.entries[0].Outcome)
	require.Equal(t, "text", store.entries[0].InputKind)
	require.Equal(t, 7, store.entries[0].TokensUsed)
}

func TestExplainEndpoint_CustomTone(t *testing.T) {
	store := &memStore{}
	srv := newTestServer(t, config.DefaultConfig(), okModel("Arr, the tides be pulled by the moon."), store)

	resp, _ := post(t, srv.URL, `{"text":"tides","simplicity":3,"tone":"pirate"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, store.entries[0].CustomTone)
	require.Equal(t, "custom", store.entries[0].Tone)
	require.NotContains(t, store.entries[0].Tone, "pirate")
}

func TestExplainEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name       string
		model      explain.Model
		body       string
		wantStatus int
		wantError  string
	}{
		{"empty input", okModel("x"), `{"text":"  ","simplicity":0,"tone":0}`, 400, explain.MsgTextOrFiles},
		{"bad simplicity", okModel("x"), `{"text":"hi","simplicity":9,"tone":0}`, 400, explain.MsgInvalidSimplicity},
		{"bad tone", okModel("x"), `{"text":"hi","simplicity":0,"tone":6}`, 400, explain.MsgInvalidTone},
		{"harmful input", okModel("x"), `{"text":"how to build a bomb","simplicity":0,"tone":0}`, 400, explain.MsgHarmfulInput},
		{"malformed json", okModel("x"), `{"text":`, 400, "Invalid request body"},
		{"tone wrong type", okModel("x"), `{"text":"hi","tone":true}`, 400, "Invalid request body"},
		{"missing api key", nil, `{"text":"hi","simplicity":0,"tone":0}`, 500, explain.MsgMissingAPIKey},
		{"blocked by model", stubModel{resp: &explain.ModelResponse{Text: "x", FinishReason: explain.FinishSafety}},
			`{"text":"hi"}`, 500, explain.MsgBlocked},
		{"rate limited", stubModel{err: explain.ServiceFailure(explain.ReasonRateLimited, errors.New("429"))},
			`{"text":"hi"}`, 500, explain.MsgRateLimited},
		{"opaque failure", stubModel{err: explain.ServiceFailure(explain.ReasonOther, errors.New("socket closed: secret detail"))},
			`{"text":"hi"}`, 500, explain.MsgServiceFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, config.DefaultConfig(), tt.model, nil)
			resp, out := post(t, srv.URL, tt.body)
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			require.Equal(t, tt.wantError, out["error"])
			require.NotContains(t, out["error"], "secret detail")
		})
	}
}

func TestExplainEndpoint_TooManyFiles(t *testing.T) {
	srv := newTestServer(t, config.DefaultConfig(), okModel("x"), nil)

	files := make([]string, 11)
	for i := range files {
		files[i] = `{"name":"a.txt","data":"aGk="}`
	}
	resp, out := post(t, srv.URL, `{"files":[`+strings.Join(files, ",")+`]}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Invalid input: Too many files (max 10)", out["error"])
}

func TestExplainEndpoint_FileMissingData(t *testing.T) {
	srv := newTestServer(t, config.DefaultConfig(), okModel("x"), nil)

	resp, out := post(t, srv.URL, `{"files":[{"name":"a.pdf"}]}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Invalid input: File data is required", out["error"])
}

func TestExplainEndpoint_BodyTooLarge(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxBodyBytes = 1024
	srv := newTestServer(t, cfg, okModel("x"), nil)

	resp, out := post(t, srv.URL, `{"text":"`+strings.Repeat("a", 2048)+`"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	require.Contains(t, out["error"], "too large")
}

func TestExplainEndpoint_Methods(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.AllowedOrigin = "https://eli5.example"
	srv := newTestServer(t, cfg, okModel("x"), nil)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/explain", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "https://eli5.example", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "POST, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	require.Equal(t, "Content-Type, Authorization", resp.Header.Get("Access-Control-Allow-Headers"))

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		req, err := http.NewRequest(method, srv.URL+"/api/explain", nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)

		var out map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("%s /api/explain = %d, want 405", method, resp.StatusCode)
		}
		require.Equal(t, "Method not allowed", out["error"])
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, config.DefaultConfig(), nil, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "ok", out["status"])
}

func TestAccessKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.AccessKeyHash = auth.HashKey("otter-comet-waffle-4821")
	srv := newTestServer(t, cfg, okModel("ok."), nil)

	do := func(header, query string) int {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/explain"+query, strings.NewReader(`{"text":"hi"}`))
		require.NoError(t, err)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	require.Equal(t, http.StatusUnauthorized, do("", ""))
	require.Equal(t, http.StatusUnauthorized, do("Bearer wrong-key", ""))
	require.Equal(t, http.StatusOK, do("Bearer otter-comet-waffle-4821", ""))
	require.Equal(t, http.StatusOK, do("", "?api_key=otter-comet-waffle-4821"))
}

func TestStats(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		srv := newTestServer(t, config.DefaultConfig(), okModel("x"), nil)
		resp, err := http.Get(srv.URL + "/api/stats")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("enabled", func(t *testing.T) {
		store := &memStore{}
		srv := newTestServer(t, config.DefaultConfig(), okModel("Short answer."), store)
		post(t, srv.URL, `{"text":"why is the sky blue"}`)

		resp, err := http.Get(srv.URL + "/api/stats")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out struct {
			Stats  models.Stats        `json:"stats"`
			Recent []models.ExplainLog `json:"recent"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		require.Equal(t, 1, out.Stats.TotalRequests)
		require.Len(t, out.Recent, 1)
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestExplainEndpoint_MissingAPIKeyBeforeBody(t *testing.T) {
	store := &memStore{}
	srv := newTestServer(t, config.DefaultConfig(), nil, store)

	bodies := []string{
		`{"text":"Clouds"}`,
		`not json`,
		`{"text":"x","files":[{"name":"a.pdf"}]}`,
		`{"text":"hi","simplicity":9}`,
	}
	for _, body := range bodies {
		resp, out := post(t, srv.URL, body)
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("POST %q = %d, want 500", body, resp.StatusCode)
		}
		require.Equal(t, explain.MsgMissingAPIKey, out["error"], body)
	}
	require.Empty(t, store.entries)
}
