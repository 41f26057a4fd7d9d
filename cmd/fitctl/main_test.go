package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "tok-1"

type backend struct {
	mu      sync.Mutex
	saved   map[string]any
	grocery []map[string]string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if r.URL.Path != "/auth/login" && r.Header.Get("Authorization") != "Bearer "+testToken {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"bad token"}`)
		return
	}

	switch {
	case r.URL.Path == "/auth/login":
		_, _ = io.WriteString(w, `{"access_token":"`+testToken+`"}`)
	case r.URL.Path == "/daily-log":
		_, _ = io.WriteString(w, `[
			{"date":"2024-01-01T00:00:00Z","weight":80,"activity":{"type":"walk","steps":6000,"duration":30},
			 "totals":{"calories":2400,"protein":90,"carbs":250,"fat":70,"fiber":20}},
			{"date":"2024-01-02","weight":{"value":79.5},"activity":{"type":"walk","steps":6000,"duration":40},
			 "totals":{"calories":2400,"protein":90,"carbs":250,"fat":70,"fiber":20}}
		]`)
	case r.URL.Path == "/goals" && r.Method == http.MethodGet:
		_, _ = io.WriteString(w, `{}`)
	case r.URL.Path == "/goals" && r.Method == http.MethodPut:
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &b.saved)
		_, _ = w.Write(raw)
	case r.URL.Path == "/grocery" && r.Method == http.MethodGet:
		status := r.URL.Query().Get("status")
		out := []map[string]string{}
		for _, it := range b.grocery {
			if it["status"] == status {
				out = append(out, it)
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	case r.URL.Path == "/grocery" && r.Method == http.MethodPost:
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		req["_id"] = "g1"
		b.grocery = append(b.grocery, req)
		_ = json.NewEncoder(w).Encode(req)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	root := newRootCmd()
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func newBackend(t *testing.T) (*backend, string) {
	t.Helper()
	b := &backend{}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return b, srv.URL
}

func TestRootHelp(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "trends")
	assert.Contains(t, out, "pantry")
}

func TestLoginPrintsToken(t *testing.T) {
	_, url := newBackend(t)

	out, err := run(t, "--api", url, "login", "--email", "a@b.co", "--password", "pw")
	require.NoError(t, err)
	assert.Equal(t, testToken+"\n", out)
}

func TestLoginRequiresCredentials(t *testing.T) {
	t.Setenv("FITTRACK_PASSWORD", "")
	_, url := newBackend(t)

	_, err := run(t, "--api", url, "login", "--email", "a@b.co")
	assert.Error(t, err)
}

func TestCommandsNeedToken(t *testing.T) {
	t.Setenv("FITTRACK_TOKEN", "")
	_, url := newBackend(t)

	_, err := run(t, "--api", url, "log")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
}

func TestLogNewestFirst(t *testing.T) {
	_, url := newBackend(t)

	out, err := run(t, "--api", url, "--token", testToken, "log")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "2024-01-02"))
	assert.Contains(t, lines[1], "79.5")

	out, err = run(t, "--api", url, "--token", testToken, "log", "--limit", "1")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)
}

func TestExportCSV(t *testing.T) {
	_, url := newBackend(t)

	out, err := run(t, "--api", url, "--token", testToken, "export")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "date,weight,measured_at,activity"))
	assert.True(t, strings.HasPrefix(lines[1], "2024-01-02,79.5"))
}

func TestTrends(t *testing.T) {
	_, url := newBackend(t)

	out, err := run(t, "--api", url, "--token", testToken, "trends", "--range", "7d")
	require.NoError(t, err)
	assert.Contains(t, out, "Range: 7d (2 days)")
	assert.Contains(t, out, "Weight change: -0.5 kg")
	assert.Contains(t, out, "Avg calories: 2400 kcal")

	_, err = run(t, "--api", url, "--token", testToken, "trends", "--range", "1y")
	assert.Error(t, err)
}

func TestSuggestListAndApply(t *testing.T) {
	b, url := newBackend(t)

	out, err := run(t, "--api", url, "--token", testToken, "suggest")
	require.NoError(t, err)
	assert.Contains(t, out, "calories-down")
	assert.Contains(t, out, "protein-up")

	out, err = run(t, "--api", url, "--token", testToken, "suggest", "calories-down")
	require.NoError(t, err)
	assert.Contains(t, out, "Goals saved.")

	b.mu.Lock()
	defer b.mu.Unlock()
	macros, ok := b.saved["macros"].(map[string]any)
	require.True(t, ok)
	calories, ok := macros["calories"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2100.0, calories["max"])
}

func TestSuggestUnknownKey(t *testing.T) {
	_, url := newBackend(t)

	_, err := run(t, "--api", url, "--token", testToken, "suggest", "nope")
	assert.Error(t, err)
}

func TestPantryAdd(t *testing.T) {
	_, url := newBackend(t)

	out, err := run(t, "--api", url, "--token", testToken, "pantry", "add", "rolled", "oats")
	require.NoError(t, err)
	assert.Contains(t, out, "rolled oats")
	assert.Contains(t, out, "to_buy")
}

func TestInvalidTimezone(t *testing.T) {
	_, url := newBackend(t)

	_, err := run(t, "--api", url, "--token", testToken, "--tz", "Mars/Base", "today")
	assert.Error(t, err)
}
