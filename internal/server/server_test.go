package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taqdeer/taqdeer-api/internal/database"
	"github.com/taqdeer/taqdeer-api/internal/database/dbtest"
	"github.com/taqdeer/taqdeer-api/pkg/config"
)

type stubLLM struct{ reply string }

func (s stubLLM) Complete(context.Context, string, string) (string, error) { return s.reply, nil }

const stubDua = `{"title":"Du'a for Rain","arabic":"اللَّهُمَّ صَيِّبًا نَافِعًا","transliteration":"Allahumma sayyiban nafi'a","translation":"O Allah, make it a beneficial rain","source":"Sahih al-Bukhari 1032 | Sahih"}`

func testConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		AllowedOrigins:  []string{"https://taqdeer.app"},
		RulingCacheSize: 4,
	}
}

func newTestServer(t *testing.T, db database.Service) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(db, stubLLM{reply: stubDua}, testConfig(), nil)
	ts := httptest.NewServer(s.handler)
	t.Cleanup(ts.Close)
	return s, ts
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestWelcomeRoutes(t *testing.T) {
	_, ts := newTestServer(t, database.Unavailable())

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	body := decode(t, resp)
	assert.Equal(t, "Welcome to Taqdeer API", body["message"])

	resp, err = http.Get(ts.URL + "/api")
	require.NoError(t, err)
	assert.Equal(t, "Taqdeer API is working!", decode(t, resp)["message"])
}

func TestHealthReportsStore(t *testing.T) {
	_, down := newTestServer(t, database.Unavailable())
	resp, err := http.Get(down.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"status": "ok", "store": "down"}, decode(t, resp))

	_, up := newTestServer(t, dbtest.SQLite(t, Models...))
	resp, err = http.Get(up.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, "up", decode(t, resp)["store"])
}

func TestGenerateCountsAndStatsReflectIt(t *testing.T) {
	s, ts := newTestServer(t, dbtest.SQLite(t, Models...))

	resp, err := http.Post(ts.URL+"/api/stats/visitor", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, true, decode(t, resp)["success"])

	resp, err = http.Post(ts.URL+"/api/dua/generate", "application/json", strings.NewReader(`{"query":"rain"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Du'a for Rain", decode(t, resp)["title"])
	require.NoError(t, s.Drain(context.Background()))

	resp, err = http.Get(ts.URL + "/api/stats")
	require.NoError(t, err)
	body := decode(t, resp)
	assert.EqualValues(t, 1, body["uniqueVisitors"])
	assert.EqualValues(t, 1, body["duasGenerated"])
	assert.EqualValues(t, 0, body["duasShared"])
}

func TestDegradedStore(t *testing.T) {
	s, ts := newTestServer(t, database.Unavailable())

	resp, err := http.Post(ts.URL+"/api/dua/generate", "application/json", strings.NewReader(`{"query":"rain"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	require.NoError(t, s.Drain(context.Background()))

	resp, err = http.Get(ts.URL + "/api/stats")
	require.NoError(t, err)
	assert.EqualValues(t, 0, decode(t, resp)["duasGenerated"])

	resp, err = http.Post(ts.URL+"/api/feedback", "application/json",
		strings.NewReader(`{"feedbackType":"other","comment":"c","duaData":{"title":"t"}}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	resp.Body.Close()
}

func TestReferenceRoute(t *testing.T) {
	_, ts := newTestServer(t, database.Unavailable())

	resp, err := http.Get(ts.URL + "/api/reference?source=" + "Sunan%20Abu%20Dawood%201517%20%7C%20Hasan")
	require.NoError(t, err)
	body := decode(t, resp)
	link := body["link"].(map[string]interface{})
	assert.Equal(t, "https://sunnah.com/abudawud:1517", link["url"])
	assert.Equal(t, "Hasan", body["grade"])
	assert.Equal(t, "primary", body["gradeTier"])
}

func TestCORS(t *testing.T) {
	_, ts := newTestServer(t, database.Unavailable())

	for origin, allowed := range map[string]bool{"https://taqdeer.app": true, "https://evil.example": false} {
		req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/dua/generate", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		if allowed {
			assert.Equal(t, origin, resp.Header.Get("Access-Control-Allow-Origin"))
		} else {
			assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	_, ts := newTestServer(t, database.Unavailable())
	resp, err := http.Get(ts.URL + "/api/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
