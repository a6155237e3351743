package main

import (
	"fmt"
	"os"
	"time"

	"github.com/atomicstack/eman/internal/app"
	"github.com/atomicstack/eman/internal/bpf"
	"github.com/atomicstack/eman/internal/config"
	"github.com/atomicstack/eman/internal/logging"
	"github.com/atomicstack/eman/internal/logging/events"
	"golang.org/x/term"
)

func main() {
	cfg := config.MustLoad()
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	logging.Configure(cfg.Logging.FilePath)
	logging.SetTraceEnabled(cfg.Logging.Trace)

	events.App.Start(startupTracePayload(cfg, bpf.NewKernel()))

	err := app.Run(cfg.App)
	events.App.Stop(err)
	if err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// startupTracePayload records the options, the privileges the browser runs
// under and whether the kernel lets it enumerate each object kind.
func startupTracePayload(cfg config.Config, kernel bpf.Kernel) map[string]interface{} {
	payload := map[string]interface{}{
		"argv":     cfg.Args,
		"flags":    cfg.Flags,
		"config":   cfg,
		"euid":     os.Geteuid(),
		"access":   checkAccess(kernel),
		"terminal": detectTerminal(),
	}
	if boot := bpf.BootTime(); !boot.IsZero() {
		payload["bootTime"] = boot.Format(time.RFC3339)
	}
	if exe, err := os.Executable(); err == nil {
		payload["executable"] = exe
	}
	return payload
}

// accessCheck is the result of asking for the first ID of one kind. Error is
// usually EPERM when the process lacks CAP_BPF.
type accessCheck struct {
	Kind  string `json:"kind"`
	Empty bool   `json:"empty,omitempty"`
	Error string `json:"error,omitempty"`
}

func checkAccess(k bpf.Kernel) []accessCheck {
	kinds := []bpf.Kind{bpf.KindMap, bpf.KindProgram}
	checks := make([]accessCheck, 0, len(kinds))
	for _, kind := range kinds {
		p := accessCheck{Kind: kind.String()}
		_, ok, err := k.NextID(kind, 0)
		switch {
		case err != nil:
			p.Error = err.Error()
		case !ok:
			p.Empty = true
		}
		checks = append(checks, p)
	}
	return checks
}

type terminalSize struct {
	Source string `json:"source,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Error  string `json:"error,omitempty"`
}

// detectTerminal sizes the first standard descriptor that is a terminal.
func detectTerminal() terminalSize {
	for _, f := range []*os.File{os.Stdout, os.Stdin, os.Stderr} {
		fd := int(f.Fd())
		if !term.IsTerminal(fd) {
			continue
		}
		width, height, err := term.GetSize(fd)
		if err != nil {
			return terminalSize{Source: f.Name(), Error: err.Error()}
		}
		return terminalSize{Source: f.Name(), Width: width, Height: height}
	}
	return terminalSize{Error: "no terminal on stdin, stdout or stderr"}
}
