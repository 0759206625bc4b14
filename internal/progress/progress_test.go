package progress

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewSpinnerDisabledByEnv(t *testing.T) {
	t.Setenv("SALESDASH_NO_PROGRESS", "1")
	if NewSpinner("test").Enabled {
		t.Error("expected spinner to be disabled with SALESDASH_NO_PROGRESS=1")
	}
}

func TestNewSpinnerDisabledByJSON(t *testing.T) {
	t.Setenv("SALESDASH_JSON", "true")
	if NewSpinner("test").Enabled {
		t.Error("expected spinner to be disabled with SALESDASH_JSON=true")
	}
}

func TestIsTTYOnFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if isTTY(f) {
		t.Error("a regular file is not a terminal")
	}
}

func TestSpinnerStartStopDisabled(t *testing.T) {
	var buf syncBuffer
	s := &Spinner{Label: "test", Enabled: false, out: &buf, done: make(chan struct{})}
	s.Start()
	s.Stop("done")
	if buf.String() != "" {
		t.Errorf("disabled spinner wrote %q", buf.String())
	}
}

func TestSpinnerStartStop(t *testing.T) {
	var buf syncBuffer
	s := &Spinner{Label: "Rendering", Enabled: true, out: &buf, done: make(chan struct{})}
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop("complete")

	out := buf.String()
	if !strings.Contains(out, "Rendering") {
		t.Errorf("expected spinner frames with the label, got %q", out)
	}
	if !strings.HasSuffix(out, "✓ complete\n") {
		t.Errorf("expected the result line last, got %q", out)
	}
}

func TestSpinnerStopTwice(t *testing.T) {
	s := &Spinner{Label: "test", Enabled: true, out: &syncBuffer{}, done: make(chan struct{})}
	s.Start()
	s.Stop("")
	s.Stop("")
}

func TestSpinnerUpdate(t *testing.T) {
	s := &Spinner{Label: "initial", Enabled: false, done: make(chan struct{})}
	s.Update("updated")
	if s.Label != "updated" {
		t.Errorf("expected label 'updated', got %q", s.Label)
	}
}
