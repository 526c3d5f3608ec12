package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

// isolateEnv points every rpick path at a temp dir and clears the
// environment overrides so the developer's own config never leaks in.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_RUNTIME_DIR", filepath.Join(dir, "run"))
	for _, k := range []string{"RP_ENDPOINT", "RP_PROJECT", "RP_TOKEN", "RPICK_DEBUG", "RPICK_LOG_LEVEL", "NO_COLOR"} {
		t.Setenv(k, "")
	}
	return dir
}

// resetGlobals restores every flag-backed package variable after the test.
func resetGlobals(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		cfgFile = ""
		debugFlag = false
		endpointFlag = ""
		projectFlag = ""
		colorMode = "auto"
		widgetFlags = pickFlags{}
		filterFlags = pickFlags{}
		recentSource = ""
		recentLimit = 20
		recentAll = false
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
}

// execRoot runs rpick with args and returns what it wrote to stdout and
// stderr.
func execRoot(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetGlobals(t)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

// apiPage is the JSON envelope of a list response.
type apiPage struct {
	Content []map[string]any `json:"content"`
	Page    map[string]int   `json:"page"`
}

// newAPIServer serves routes keyed by "METHOD path" and records each
// request's method, path and query.
func newAPIServer(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *[]string) {
	t.Helper()
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, strings.TrimSpace(r.Method+" "+r.URL.Path+" "+r.URL.RawQuery))
		h, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func writeAPIJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
