package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/logicalc/internal/logger"
	"github.com/Simplici0/logicalc/internal/metrics"
	"github.com/Simplici0/logicalc/internal/model"
	"github.com/Simplici0/logicalc/internal/seed"
	"github.com/Simplici0/logicalc/internal/simulation"
	"github.com/Simplici0/logicalc/internal/store/memstore"
)

type testEnv struct {
	srv     *server
	handler http.Handler
	repo    *memstore.Store
	cookie  *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	repo := memstore.New()
	for _, b := range seed.DefaultBranches {
		_, err := repo.CreateBranch(ctx, b)
		require.NoError(t, err)
	}
	for _, c := range seed.DefaultCarriers {
		_, err := repo.CreateCarrier(ctx, c)
		require.NoError(t, err)
	}
	require.NoError(t, repo.CreateUser(ctx, model.User{Username: "admin", FullName: "Administrador"}, "admin"))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	log := logger.NewTestLogger(t)
	srv := &server{
		repo: repo,
		sim: simulation.New(repo, repo, log, m, simulation.Config{
			Now: func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) },
		}),
		auth:     newAuthService(repo, "test-secret"),
		log:      log,
		metrics:  m,
		gatherer: reg,
	}

	return &testEnv{
		srv:     srv,
		handler: srv.routes(),
		repo:    repo,
		cookie:  &http.Cookie{Name: sessionCookieName, Value: srv.auth.createSessionValue("admin")},
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doForm(t *testing.T, path, form string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(e.cookie)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[errorBody](t, rec).Error.Code
}
