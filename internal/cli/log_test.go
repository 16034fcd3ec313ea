package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/partsengine/pkg/component"
	"github.com/matzehuels/partsengine/pkg/engine"
	"github.com/matzehuels/partsengine/pkg/pipeline"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name       string
		level      log.Level
		logFunc    func(*log.Logger)
		wantLog    bool
		wantCaller bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("catalog ready") }, true, false},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("catalog ready") }, false, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("catalog ready") }, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))

			if got := buf.Len() > 0; got != tt.wantLog {
				t.Fatalf("got log output = %v, want %v", got, tt.wantLog)
			}
			if got := strings.Contains(buf.String(), "log_test.go"); got != tt.wantCaller {
				t.Errorf("caller reported = %v, want %v: %s", got, tt.wantCaller, buf.String())
			}
		})
	}
}

func TestSetLogLevelReportsCallerAtDebug(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.SetLogLevel(LogDebug)
	c.Logger.Debug("verbose")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("debug output should report the caller: %s", buf.String())
	}
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name string
		req  engine.Request
		want []string
		not  []string
	}{
		{
			name: "with footprint",
			req:  engine.Request{SourceComponent: component.Resistor{}, FootprinterString: "0603"},
			want: []string{"ftype=simple_resistor", "footprint=0603"},
		},
		{
			name: "without footprint",
			req:  engine.Request{SourceComponent: component.LED{}},
			want: []string{"ftype=simple_led"},
			not:  []string{"footprint="},
		},
		{
			name: "no component",
			req:  engine.Request{},
			want: []string{"ftype=unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			requestLogger(newLogger(&buf, log.InfoLevel), tt.req).Info("resolving")

			out := buf.String()
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q: %s", s, out)
				}
			}
			for _, s := range tt.not {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q: %s", s, out)
				}
			}
		})
	}
}

func TestBatchProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newBatchProgress(newLogger(&buf, log.DebugLevel))

	prog.observe(pipeline.Outcome{ID: "R1", Status: pipeline.StatusResolved,
		Parts: engine.SupplierPartNumbers{engine.SupplierJLCPCB: {"C25804"}}})
	prog.observe(pipeline.Outcome{ID: "C1", Status: pipeline.StatusEmpty})
	prog.observe(pipeline.Outcome{ID: "B1", Status: pipeline.StatusUnknown})
	prog.observe(pipeline.Outcome{ID: "D1", Status: pipeline.StatusFailed, Err: errors.New("catalog down")})
	prog.done()

	want := pipeline.Stats{Total: 4, Resolved: 1, Empty: 1, Unknown: 1, Failed: 1}
	if prog.stats != want {
		t.Errorf("stats = %+v, want %+v", prog.stats, want)
	}

	out := buf.String()
	for _, s := range []string{
		"id=R1", "C25804",
		"item failed", "catalog down",
		"Resolved 4 items: 1 resolved, 1 empty, 1 unknown, 1 failed",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
}

func TestBatchProgressQuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	prog := newBatchProgress(newLogger(&buf, log.InfoLevel))
	prog.observe(pipeline.Outcome{ID: "R1", Status: pipeline.StatusResolved})

	if buf.Len() != 0 {
		t.Errorf("per-item logs should be debug only: %s", buf.String())
	}
	prog.done()
	if !strings.Contains(buf.String(), "Resolved 1 items") {
		t.Errorf("done should log at info: %s", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext should fall back to log.Default()")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
}
