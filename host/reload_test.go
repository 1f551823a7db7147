package host

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func writeVarsConfig(t *testing.T, path, value string) {
	t.Helper()
	content := fmt.Sprintf("vars:\n  API_HOST: %s\n", value)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestReloaderSwapsEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindlike.yaml")
	writeVarsConfig(t, path, "old.example.com")

	r, err := NewReloader(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewReloader: %v", err)
	}
	r.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	old := r.Environment()
	if v, _ := old.Text("API_HOST"); v != "old.example.com" {
		t.Fatalf("initial environment: API_HOST = %q", v)
	}

	// Give the watcher a moment to establish before rewriting.
	time.Sleep(100 * time.Millisecond)
	writeVarsConfig(t, path, "new.example.com")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if v, err := r.Environment().Text("API_HOST"); err == nil && v == "new.example.com" {
			// Old environment is untouched: in-flight invocations keep
			// the bindings they resolved.
			if v, _ := old.Text("API_HOST"); v != "old.example.com" {
				t.Errorf("previous environment mutated: %q", v)
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Run: %v", err)
			}
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatal("environment was not reloaded within the deadline")
}

func TestReloaderKeepsEnvironmentOnBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindlike.yaml")
	writeVarsConfig(t, path, "stable.example.com")

	r, err := NewReloader(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewReloader: %v", err)
	}

	if err := os.WriteFile(path, []byte("vars: [not, a, map]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	r.reload()

	if v, err := r.Environment().Text("API_HOST"); err != nil || v != "stable.example.com" {
		t.Errorf("previous environment should survive a bad config, got %q, %v", v, err)
	}
}

func TestReloaderInitialFailureIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := NewReloader(path, zerolog.Nop()); err == nil {
		t.Error("a missing config at startup should fail, not serve an empty environment")
	}
}
