package main

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/atomicstack/eman/internal/app"
	"github.com/atomicstack/eman/internal/bpf"
	"github.com/atomicstack/eman/internal/config"
	"github.com/atomicstack/eman/internal/testutil"
)

func TestCheckAccessReportsEachKind(t *testing.T) {
	k := testutil.NewFakeKernel()
	k.AddMap(bpf.MapRecord{ID: 4})
	k.FailNextID(bpf.KindProgram, errors.New("operation not permitted"))

	checks := checkAccess(k)
	if len(checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(checks))
	}
	if checks[0].Kind != bpf.KindMap.String() || checks[0].Empty || checks[0].Error != "" {
		t.Fatalf("map check should succeed, got %+v", checks[0])
	}
	if checks[1].Kind != bpf.KindProgram.String() || checks[1].Error != "operation not permitted" {
		t.Fatalf("program check should carry the error, got %+v", checks[1])
	}
	if k.OpenHandles() != 0 || k.Opened() != 0 {
		t.Fatalf("checking access must not open objects")
	}
}

func TestCheckAccessEmptyKernel(t *testing.T) {
	for _, p := range checkAccess(testutil.NewFakeKernel()) {
		if !p.Empty || p.Error != "" {
			t.Fatalf("expected empty check, got %+v", p)
		}
	}
}

func TestDetectTerminalReportsSomething(t *testing.T) {
	info := detectTerminal()
	if info.Source == "" && info.Error == "" {
		t.Fatalf("expected a source or an error, got %+v", info)
	}
}

func TestStartupTracePayload(t *testing.T) {
	cfg := config.Config{
		App: app.Config{
			Interval:   2 * time.Second,
			Width:      80,
			Height:     24,
			ShowFooter: true,
			Root:       app.RootPrograms,
			Selection:  app.SelectionID,
		},
		Logging: config.Logging{
			FilePath: "trace.log",
			Trace:    true,
		},
		Flags: map[string]string{
			"interval":  "2s",
			"root":      "programs",
			"selection": "id",
			"trace":     "true",
			"logFile":   "trace.log",
		},
		Args: []string{"--root", "programs", "--selection", "id"},
	}

	payload := startupTracePayload(cfg, testutil.NewFakeKernel())

	flags, ok := payload["flags"].(map[string]string)
	if !ok {
		t.Fatalf("expected flags map in payload")
	}
	if flags["root"] != "programs" || flags["logFile"] != "trace.log" {
		t.Fatalf("flags not carried: %v", flags)
	}
	if payload["euid"] != os.Geteuid() {
		t.Fatalf("expected euid %d, got %v", os.Geteuid(), payload["euid"])
	}
	if checks, ok := payload["access"].([]accessCheck); !ok || len(checks) != 2 {
		t.Fatalf("expected access checks, got %v", payload["access"])
	}
	if _, ok := payload["terminal"].(terminalSize); !ok {
		t.Fatalf("expected terminal size in payload")
	}
	if got, ok := payload["config"].(config.Config); !ok || got.App != cfg.App {
		t.Fatalf("expected app config %#v, got %#v", cfg.App, payload["config"])
	}
}
