package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/partsengine/internal/config"
	"github.com/matzehuels/partsengine/pkg/pipeline"
)

// catalogStub serves a fixed jlcsearch-style catalog and counts requests.
type catalogStub struct {
	*httptest.Server
	calls atomic.Int32
}

func newCatalogStub(t *testing.T) *catalogStub {
	t.Helper()
	s := &catalogStub{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		switch r.URL.Path {
		case "/resistors/list":
			_, _ = io.WriteString(w, `{"resistors":[{"lcsc":1},{"lcsc":2,"is_basic":true},{"lcsc":3},{"lcsc":4}]}`)
		case "/leds/list":
			_, _ = io.WriteString(w, `{"leds":[]}`)
		default:
			http.Error(w, "down", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

// setupEnv isolates the CLI from the user's config and points it at url.
func setupEnv(t *testing.T, url string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(config.EnvCatalogURL, url)
	for _, env := range []string{config.EnvCacheBackend, config.EnvRedisURL, config.EnvMongoURI, config.EnvServerAddr, config.EnvConcurrency} {
		t.Setenv(env, "")
	}
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	var out, errOut bytes.Buffer
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFindJSON(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub.URL)

	out, err := execute(t, "", "find",
		"--component", `{"ftype":"simple_resistor","resistance":"1k"}`,
		"--footprint", "0603", "--json")
	if err != nil {
		t.Fatalf("find error: %v", err)
	}
	if got, want := strings.TrimSpace(out), `{"jlcpcb":["C2","C1","C3"]}`; got != want {
		t.Errorf("output = %s, want %s", got, want)
	}
}

func TestFindText(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub.URL)

	tests := []struct {
		name      string
		component string
		want      string
	}{
		{"resolved", `{"ftype":"simple_resistor","resistance":1000}`, "C2 C1 C3"},
		{"empty", `{"ftype":"simple_led"}`, "No parts found for simple_led"},
		{"unknown", `{"ftype":"simple_battery"}`, "No catalog category for simple_battery"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", "find", "--component", tt.component)
			if err != nil {
				t.Fatalf("find error: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output %q does not contain %q", out, tt.want)
			}
		})
	}
}

func TestFindFromStdinAndFile(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub.URL)
	const comp = `{"ftype":"simple_resistor","resistance":1000}`

	out, err := execute(t, comp, "find", "--component", "-", "--json")
	if err != nil || !strings.Contains(out, "C2") {
		t.Errorf("stdin: out=%q err=%v", out, err)
	}

	path := filepath.Join(t.TempDir(), "r.json")
	if err := os.WriteFile(path, []byte(comp), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = execute(t, "", "find", "--component", "@"+path, "--json")
	if err != nil || !strings.Contains(out, "C2") {
		t.Errorf("file: out=%q err=%v", out, err)
	}
}

func TestFindCatalogFailure(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub.URL)

	_, err := execute(t, "", "find", "--component", `{"ftype":"simple_chip"}`, "--json")
	if err == nil || !strings.Contains(err.Error(), "CATALOG_UNAVAILABLE") {
		t.Errorf("find error = %v, want CATALOG_UNAVAILABLE", err)
	}
}

func TestFindInvalidComponent(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub.URL)

	_, err := execute(t, "", "find", "--component", `[1,2]`)
	if err == nil || !strings.Contains(err.Error(), "INVALID_COMPONENT") {
		t.Errorf("find error = %v, want INVALID_COMPONENT", err)
	}
	if stub.calls.Load() != 0 {
		t.Errorf("catalog called %d times, want 0", stub.calls.Load())
	}
}

func TestFindDryRun(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub.URL)

	out, err := execute(t, "", "find",
		"--component", `{"ftype":"simple_pin_header","pin_count":8,"gender":"male"}`,
		"--footprint", "2x4_p2.54", "--dry-run", "--json")
	if err != nil {
		t.Fatalf("find error: %v", err)
	}

	var got planJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	want := planJSON{
		Category:  "headers",
		Params:    map[string]string{"num_pins": "8", "gender": "male", "pitch": "2.54"},
		Signature: "headers?gender=male&json=true&num_pins=8&pitch=2.54",
		Package:   "2x4_p2.54",
		Matched:   true,
		Routed:    true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
	if stub.calls.Load() != 0 {
		t.Errorf("dry run reached the catalog %d times", stub.calls.Load())
	}
}

func TestBatch(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub.URL)

	dir := t.TempDir()
	in := filepath.Join(dir, "bom.json")
	outPath := filepath.Join(dir, "parts.json")
	bom := `[
		{"id":"R1","sourceComponent":{"ftype":"simple_resistor","resistance":1000},"footprinterString":"0603"},
		{"id":"D1","sourceComponent":{"ftype":"simple_led"},"footprinterString":"0603"},
		{"id":"B1","sourceComponent":{"ftype":"simple_battery"}}
	]`
	if err := os.WriteFile(in, []byte(bom), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "", "batch", in, "-o", outPath)
	if err != nil {
		t.Fatalf("batch error: %v", err)
	}
	for _, want := range []string{"R1", "C2, C1, C3", "D1", "empty", "B1", "unknown", "3 items"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	var result pipeline.Result
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if result.Stats.Resolved != 1 || result.Stats.Empty != 1 || result.Stats.Unknown != 1 {
		t.Errorf("stats = %+v", result.Stats)
	}
}

func TestBatchFailuresExitNonZero(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub.URL)

	bom := `[{"id":"U1","sourceComponent":{"ftype":"simple_chip"}},{"id":"R1","sourceComponent":{"ftype":"simple_resistor","resistance":1}}]`
	out, err := execute(t, bom, "batch", "-", "--json")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 items failed") {
		t.Fatalf("batch error = %v", err)
	}

	var result pipeline.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if result.Outcomes[0].Status != pipeline.StatusFailed || result.Outcomes[1].Status != pipeline.StatusResolved {
		t.Errorf("outcomes = %+v", result.Outcomes)
	}
}

func TestBatchRejectsNonArray(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub.URL)

	_, err := execute(t, `{"id":"x"}`, "batch", "-")
	if err == nil || !strings.Contains(err.Error(), "INVALID_FORMAT") {
		t.Errorf("batch error = %v, want INVALID_FORMAT", err)
	}
}

func TestNormalize(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")

	out, err := execute(t, "", "normalize", "0603cap", "kicad:Resistor_SMD:R_0402_1005Metric", "kicad:Foo:Bar")
	if err != nil {
		t.Fatalf("normalize error: %v", err)
	}
	want := "0603\n0402\nkicad:Foo:Bar\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestNormalizeJSON(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")

	out, err := execute(t, "", "normalize", "--json", "kicad:Foo:Bar")
	if err != nil {
		t.Fatalf("normalize error: %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	want := []map[string]any{{"raw": "kicad:Foo:Bar", "package": "kicad:Foo:Bar", "notation": "kicad", "matched": false}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCategories(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")

	out, err := execute(t, "", "categories")
	if err != nil {
		t.Fatalf("categories error: %v", err)
	}
	for _, want := range []string{"simple_resistor", "resistors", "simple_pin_header", "headers", "simple_fuse", "fuses"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	setupEnv(t, "http://127.0.0.1:1")

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"--no-cache", "-v", "cache", "path"})
	root.SetOut(io.Discard)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Config.Cache.Backend != config.BackendNone {
		t.Errorf("backend = %q, want none", c.Config.Cache.Backend)
	}
	if c.Config.Catalog.BaseURL != "http://127.0.0.1:1" {
		t.Errorf("base url = %q", c.Config.Catalog.BaseURL)
	}

	_, err := execute(t, "", "--cache-backend", "floppy", "cache", "path")
	if err == nil || !strings.Contains(err.Error(), "INVALID_CONFIG") {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestConfigFlag(t *testing.T) {
	setupEnv(t, "")
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "[catalog]\nbase_url = \"http://catalog.internal\"\n[batch]\nconcurrency = 9\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"--config", path, "cache", "path"})
	root.SetOut(io.Discard)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Config.Catalog.BaseURL != "http://catalog.internal" || c.Config.Batch.Concurrency != 9 {
		t.Errorf("config = %+v", c.Config)
	}
}

func TestFileCacheAcrossRuns(t *testing.T) {
	stub := newCatalogStub(t)
	setupEnv(t, stub.URL)

	args := []string{"--cache-backend", "file", "find", "--component", `{"ftype":"simple_resistor","resistance":1000}`, "--json"}
	for i := 0; i < 2; i++ {
		if _, err := execute(t, "", args...); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if n := stub.calls.Load(); n != 1 {
		t.Errorf("catalog calls = %d, want 1 (second run served from file cache)", n)
	}

	out, err := execute(t, "", "--cache-backend", "file", "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 1 cached entries") {
		t.Errorf("clear output = %q", out)
	}
}
