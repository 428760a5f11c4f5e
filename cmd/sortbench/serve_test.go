package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/exascience/parsort/config"
	"github.com/exascience/parsort/device"
	"github.com/exascience/parsort/history"
)

func newTestServer(t *testing.T) (*server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.Elements = 5000
	cfg.HistoryBackend = history.Memory
	device.SetDefault(cfg.Device, cfg.DeviceOptions())
	store := history.NewMemory()
	logger := log.New(io.Discard, "", 0)
	s := &server{cfg: cfg, store: store, runner: newRunner(&cfg, store, logger), logger: logger}
	ts := httptest.NewServer(s.router())
	t.Cleanup(ts.Close)
	return s, ts
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestServeRuns(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/runs", "application/json", strings.NewReader(`{"elements": 3000, "seed": 5}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /runs status = %d", resp.StatusCode)
	}
	var run history.Run
	decode(t, resp, &run)
	if run.Elements != 3000 || run.Seed != 5 || !run.Match {
		t.Errorf("run = %+v", run)
	}

	resp, err = http.Get(ts.URL + "/runs/" + strconv.FormatUint(run.ID, 10))
	if err != nil {
		t.Fatal(err)
	}
	var got history.Run
	decode(t, resp, &got)
	if got.ID != run.ID || got.Status != run.Status {
		t.Errorf("GET run = %+v", got)
	}

	resp, err = http.Get(ts.URL + "/runs")
	if err != nil {
		t.Fatal(err)
	}
	var runs []history.Run
	decode(t, resp, &runs)
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Errorf("GET /runs = %+v", runs)
	}
}

func TestServeErrors(t *testing.T) {
	_, ts := newTestServer(t)
	tests := []struct {
		method, path, body string
		status             int
	}{
		{"GET", "/runs/12", "", http.StatusNotFound},
		{"GET", "/runs/abc", "", http.StatusNotFound},
		{"GET", "/runs?limit=x", "", http.StatusBadRequest},
		{"POST", "/runs", `{"elements": -1}`, http.StatusBadRequest},
		{"POST", "/runs", `{"trials": 0}`, http.StatusBadRequest},
		{"POST", "/runs", `{`, http.StatusBadRequest},
		{"DELETE", "/runs", "", http.StatusMethodNotAllowed},
	}
	for _, test := range tests {
		req, err := http.NewRequest(test.method, ts.URL+test.path, bytes.NewBufferString(test.body))
		if err != nil {
			t.Fatal(err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != test.status {
			t.Errorf("%s %s: status %d, want %d", test.method, test.path, resp.StatusCode, test.status)
		}
	}
}

func TestServeMetrics(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/runs", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"parsort_sort_duration_seconds", "parsort_sort_elements"} {
		if !bytes.Contains(body, []byte(name)) {
			t.Errorf("/metrics does not expose %s", name)
		}
	}
}

func TestProbeCommand(t *testing.T) {
	cfg := config.Default()
	cmd := newRootCommand(&cfg)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"probe", "--device", "none"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	if !strings.Contains(text, "soft") || !strings.Contains(text, "* none") {
		t.Errorf("probe output:\n%s", text)
	}
	if !strings.Contains(text, "Default backend: none\n") {
		t.Errorf("output does not name the default backend:\n%s", text)
	}
}

func TestRunCommand(t *testing.T) {
	cfg := config.Default()
	cmd := newRootCommand(&cfg)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"run", "-n", "2000", "--trials", "2", "--history-backend", "none", "--device", "none"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	if !strings.Contains(text, "device unavailable: ") || !strings.Contains(text, "Outputs match") {
		t.Errorf("run output:\n%s", text)
	}
}
