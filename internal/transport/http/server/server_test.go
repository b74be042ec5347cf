package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"taengine/internal/engine"
	"taengine/internal/gateway/database"
	"taengine/internal/metrics"
	"taengine/internal/store"
	"taengine/internal/transport/http/analysis"
)

func newServer(t *testing.T) (*Server, *database.AnalysisStore) {
	t.Helper()
	dir := t.TempDir()
	db, err := database.Open(filepath.Join(dir, "runs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	m := metrics.New(prometheus.NewRegistry())
	router := analysis.NewRouter(analysis.Options{
		Pool:     engine.NewPool(engine.Options{Metrics: m}, 2),
		Candles:  store.NewMemoryCandleStore(500),
		Recorder: db,
	})
	srv, err := New(Config{Analysis: router, ConfigPath: filepath.Join(dir, "taengine.yaml"), Metrics: m})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, db
}

func candlesJSON(n int) string {
	rows := make([]string, n)
	for i := 0; i < n; i++ {
		c := 100 + 10*math.Sin(float64(i)/5)
		rows[i] = fmt.Sprintf("[%d,%f,%f,%f,%f,%d]", 1_700_000_000_000+int64(i)*3_600_000, c, c+1, c-1, c, 1000)
	}
	return "[" + strings.Join(rows, ",") + "]"
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv, _ := newServer(t)
	body := fmt.Sprintf(`{"symbol":"btcusdt","interval":"1h","record":true,"candles":%s}`, candlesJSON(120))
	w := do(t, srv.Handler(), http.MethodPost, "/api/analysis", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, k := range []string{"run_id", "patterns", "periods", "signals", "integrity"} {
		if _, ok := resp[k]; !ok {
			t.Fatalf("response missing %s: %s", k, w.Body.String())
		}
	}
	if resp["symbol"] != "BTCUSDT" {
		t.Fatalf("symbol = %v", resp["symbol"])
	}
}

func TestAnalyzeMalformedCandles(t *testing.T) {
	srv, _ := newServer(t)
	cases := map[string]string{
		"short row":      `{"symbol":"BTC","interval":"1h","candles":[[1,2,3]]}`,
		"not numbers":    `{"symbol":"BTC","interval":"1h","candles":[["a","b"]]}`,
		"missing symbol": `{"interval":"1h","candles":[]}`,
		"time backwards": `{"symbol":"BTC","interval":"1h","candles":[[2000,1,1,1,1,1],[1000,1,1,1,1,1]]}`,
	}
	for name, body := range cases {
		if w := do(t, srv.Handler(), http.MethodPost, "/api/analysis", body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", name, w.Code)
		}
	}
}

func TestAnalyzeFromCandleStore(t *testing.T) {
	srv, _ := newServer(t)
	h := srv.Handler()
	w := do(t, h, http.MethodPut, "/api/candles/ETH/1h", fmt.Sprintf(`{"candles":%s}`, candlesJSON(60)))
	if w.Code != http.StatusOK {
		t.Fatalf("append status %d: %s", w.Code, w.Body.String())
	}
	w = do(t, h, http.MethodPost, "/api/analysis", `{"symbol":"eth","interval":"1h"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Candles int `json:"candles"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Candles != 60 {
		t.Fatalf("analysis used %d candles, want 60", resp.Candles)
	}
}

func TestKeysAndMetricsEndpoints(t *testing.T) {
	srv, _ := newServer(t)
	h := srv.Handler()
	w := do(t, h, http.MethodGet, "/api/analysis/keys", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"rsi"`) || !strings.Contains(w.Body.String(), `"thresholds"`) {
		t.Fatalf("keys: %d %s", w.Code, w.Body.String())
	}

	do(t, h, http.MethodPost, "/api/analysis", fmt.Sprintf(`{"symbol":"BTC","interval":"1h","candles":%s}`, candlesJSON(40)))
	w = do(t, h, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "taengine_cache_lookups_total") {
		t.Fatalf("metrics: %d %s", w.Code, w.Body.String())
	}
}

func TestRecentPatternsEndpoint(t *testing.T) {
	srv, _ := newServer(t)
	h := srv.Handler()
	if w := do(t, h, http.MethodGet, "/api/analysis/patterns", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("missing symbol: %d", w.Code)
	}
	do(t, h, http.MethodPost, "/api/analysis", fmt.Sprintf(`{"symbol":"SOL","interval":"1h","record":true,"candles":%s}`, candlesJSON(120)))
	w := do(t, h, http.MethodGet, "/api/analysis/patterns?symbol=sol&limit=5", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"patterns"`) {
		t.Fatalf("recent: %d %s", w.Code, w.Body.String())
	}
}

func TestConfigEndpoints(t *testing.T) {
	srv, _ := newServer(t)
	h := srv.Handler()
	w := do(t, h, http.MethodGet, "/api/config", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"default":true`) {
		t.Fatalf("get default: %d %s", w.Code, w.Body.String())
	}
	if w := do(t, h, http.MethodPut, "/api/config", `{"patterns":{"rsi":{"oversold":90}}}`); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid config accepted: %d %s", w.Code, w.Body.String())
	}
	if w := do(t, h, http.MethodPut, "/api/config", `{"http":{"addr":":9100"}}`); w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	w = do(t, h, http.MethodGet, "/api/config", "")
	if !strings.Contains(w.Body.String(), `":9100"`) || !strings.Contains(w.Body.String(), `"default":false`) {
		t.Fatalf("config not persisted: %s", w.Body.String())
	}
}
