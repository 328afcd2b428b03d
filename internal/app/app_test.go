package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"activityPlanner/internal/app"
	"activityPlanner/internal/config"
	"activityPlanner/internal/handlers/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, repoType string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Port = "0"
	cfg.Server.RateLimit = 0
	cfg.Repository.Type = repoType
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "planner.db")
	cfg.SQLite.BackupPath = cfg.SQLite.Path + "_backup"
	return cfg
}

func request(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestApp_EndToEnd(t *testing.T) {
	for _, repoType := range []string{"inmemory", "sqlite"} {
		t.Run(repoType, func(t *testing.T) {
			a := app.New(testConfig(t, repoType))
			require.NoError(t, a.Init(context.Background()))
			t.Cleanup(a.Shutdown)
			h := a.Handler()

			assert.Equal(t, http.StatusOK, request(t, h, "GET", "/health", "").Code)

			w := request(t, h, "GET", "/activities", "")
			require.Equal(t, http.StatusOK, w.Code)
			var page dto.PageResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
			assert.True(t, page.Empty)

			w = request(t, h, "POST", "/activities", `{"name":"Gym","start":"2025-06-01 18:00:00","end":"2025-06-01 19:00:00","tags":"health"}`)
			require.Equal(t, http.StatusCreated, w.Code)
			var created map[string]int64
			require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
			id := created["id"]
			assert.Positive(t, id)

			assert.Equal(t, http.StatusNoContent, request(t, h, "POST", "/activities/"+strconv.FormatInt(id, 10)+"/flip", "").Code)
			assert.Equal(t, http.StatusNoContent, request(t, h, "PUT", "/activities/"+strconv.FormatInt(id, 10)+"/note", `{"note":"legs day"}`).Code)

			w = request(t, h, "GET", "/activities?status=completed&search=HEALTH", "")
			require.Equal(t, http.StatusOK, w.Code)
			require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
			require.Len(t, page.Items, 1)
			assert.Equal(t, "Gym", page.Items[0].Name)
			assert.Equal(t, "legs day", page.Items[0].Note)
			assert.Equal(t, "2025-06-01 18:00:00", page.Items[0].Start)
			assert.Equal(t, 1, page.NextOffset)

			w = request(t, h, "POST", "/activities", `{"name":"","start":"2025-06-01 18:00:00","end":"2025-06-01 19:00:00"}`)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			w = request(t, h, "GET", "/reminders", "")
			assert.JSONEq(t, `[]`, w.Body.String())
		})
	}
}

func TestApp_UnknownRepository(t *testing.T) {
	a := app.New(testConfig(t, "mongo"))
	assert.Error(t, a.Init(context.Background()))
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	a := app.New(testConfig(t, "inmemory"))
	require.NoError(t, a.Init(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return")
	}
}
