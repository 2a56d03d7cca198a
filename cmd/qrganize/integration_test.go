package main

import (
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/chintak/qrganize/internal/tuitest"
)

func TestPanelIdleScreen(t *testing.T) {
	t.Parallel()

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)

	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "-no-alt-screen"},
		Dir:     cmdDir,
		Env: []string{
			"QRGANIZE_PROVIDER=ollama",
			"QRGANIZE_API_URL=http://localhost:1",
			"QRGANIZE_CACHE_DIR=" + t.TempDir(),
		},
		Width:  100,
		Height: 32,
		Steps: []tuitest.Step{
			{Delay: time.Second},
			{Input: []byte("q")},
		},
		Timeout:        5 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}

	if _, ok := rec.FinalFrame(); !ok {
		t.Fatalf("no frames captured")
	}
	for _, want := range []string{
		"Qrganize",
		"Summarize and interrogate any article.",
		"Press s to summarize, q to quit.",
	} {
		if !rec.ContainsPlain(want) {
			t.Fatalf("no frame contains %q", want)
		}
	}
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	tmp := t.TempDir()
	name := "qrganize-integration"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(tmp, name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
